package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"societies/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	roles, err := h.roles.List(r.Context(), r.URL.Query().Get("name"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	respondJSON(w, http.StatusOK, role)
}

type roleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if count, err := h.roles.CountByName(r.Context(), req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check role name")
		return
	} else if count > 0 {
		respondError(w, http.StatusBadRequest, "role name already exists")
		return
	}
	role := models.Role{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.roles.Create(r.Context(), tx, role)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "role name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create role")
		return
	}
	created, err := h.roles.GetByID(r.Context(), role.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, role)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type rolePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	var patch rolePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if patch.Name != nil && *patch.Name != role.Name {
		if count, err := h.roles.CountByName(r.Context(), *patch.Name); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check role name")
			return
		} else if count > 0 {
			respondError(w, http.StatusBadRequest, "role name already exists")
			return
		}
		role.Name = *patch.Name
	}
	if patch.Description != nil {
		role.Description = patch.Description
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.roles.Update(r.Context(), tx, role)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	updated, err := h.roles.GetByID(r.Context(), role.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, role)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.roles.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	if count, err := h.users.CountByRole(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check role usage")
		return
	} else if count > 0 {
		respondError(w, http.StatusBadRequest, "role is assigned to users and cannot be deleted")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.roles.ClearPermissions(r.Context(), tx, id); err != nil {
			return err
		}
		return h.roles.Delete(r.Context(), tx, id)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.roles.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	permissions, err := h.roles.ListPermissions(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	respondJSON(w, http.StatusOK, permissions)
}

type rolePermissionRequest struct {
	PermissionID string `json:"permission_id"`
}

func (h *Handler) AddRolePermission(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")
	if _, err := h.roles.GetByID(r.Context(), roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	var req rolePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.PermissionID == "" {
		respondError(w, http.StatusBadRequest, "permission_id is required")
		return
	}
	if _, err := h.permissions.GetByID(r.Context(), req.PermissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "permission not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load permission")
		return
	}
	assigned, err := h.roles.HasRolePermission(r.Context(), roleID, req.PermissionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check permission")
		return
	}
	if assigned {
		respondError(w, http.StatusBadRequest, "permission already assigned to role")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.roles.GrantPermission(r.Context(), tx, uuid.NewString(), roleID, req.PermissionID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "permission already assigned to role")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to grant permission")
		return
	}
	permissions, err := h.roles.ListPermissions(r.Context(), roleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	respondJSON(w, http.StatusOK, permissions)
}

type rolePermissionsReplaceRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

// ReplaceRolePermissions swaps the role's whole permission set in one
// transaction so readers never observe a half-updated role.
func (h *Handler) ReplaceRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")
	if _, err := h.roles.GetByID(r.Context(), roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	var req rolePermissionsReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.PermissionIDs) > 0 {
		count, err := h.permissions.CountByIDs(r.Context(), req.PermissionIDs)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check permissions")
			return
		}
		if count != len(req.PermissionIDs) {
			respondError(w, http.StatusBadRequest, "one or more permissions do not exist")
			return
		}
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.roles.ClearPermissions(r.Context(), tx, roleID); err != nil {
			return err
		}
		for _, permissionID := range req.PermissionIDs {
			if err := h.roles.GrantPermission(r.Context(), tx, uuid.NewString(), roleID, permissionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to replace permissions")
		return
	}
	permissions, err := h.roles.ListPermissions(r.Context(), roleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	respondJSON(w, http.StatusOK, permissions)
}

func (h *Handler) RemoveRolePermission(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")
	permissionID := chi.URLParam(r, "permissionID")
	if _, err := h.roles.GetByID(r.Context(), roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "role not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	var removed int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		removed, err = h.roles.RevokePermission(r.Context(), tx, roleID, permissionID)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to revoke permission")
		return
	}
	if removed == 0 {
		respondError(w, http.StatusNotFound, "permission is not assigned to the role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
