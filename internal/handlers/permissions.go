package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"societies/internal/models"
	"societies/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.PermissionFilter{
		Name:         r.URL.Query().Get("name"),
		ResourceType: r.URL.Query().Get("resource_type"),
		Action:       r.URL.Query().Get("action"),
	}
	permissions, err := h.permissions.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	respondJSON(w, http.StatusOK, permissions)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	permission, err := h.permissions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "permission not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load permission")
		return
	}
	respondJSON(w, http.StatusOK, permission)
}

type permissionRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ResourceType string  `json:"resource_type"`
	Action       string  `json:"action"`
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.ResourceType == "" || req.Action == "" {
		respondError(w, http.StatusBadRequest, "name, resource_type and action are required")
		return
	}
	if count, err := h.permissions.CountByName(r.Context(), req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check permission name")
		return
	} else if count > 0 {
		respondError(w, http.StatusBadRequest, "permission name already exists")
		return
	}
	permission := models.Permission{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		ResourceType: req.ResourceType,
		Action:       req.Action,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.permissions.Create(r.Context(), tx, permission)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "permission name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create permission")
		return
	}
	created, err := h.permissions.GetByID(r.Context(), permission.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, permission)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type permissionPatch struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ResourceType *string `json:"resource_type"`
	Action       *string `json:"action"`
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	permission, err := h.permissions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "permission not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load permission")
		return
	}
	var patch permissionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if patch.Name != nil && *patch.Name != permission.Name {
		if count, err := h.permissions.CountByName(r.Context(), *patch.Name); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check permission name")
			return
		} else if count > 0 {
			respondError(w, http.StatusBadRequest, "permission name already exists")
			return
		}
		permission.Name = *patch.Name
	}
	if patch.Description != nil {
		permission.Description = patch.Description
	}
	if patch.ResourceType != nil {
		permission.ResourceType = *patch.ResourceType
	}
	if patch.Action != nil {
		permission.Action = *patch.Action
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.permissions.Update(r.Context(), tx, permission)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update permission")
		return
	}
	updated, err := h.permissions.GetByID(r.Context(), permission.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, permission)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.permissions.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "permission not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load permission")
		return
	}
	if count, err := h.permissions.CountRoleBindings(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check permission usage")
		return
	} else if count > 0 {
		respondError(w, http.StatusBadRequest, "permission is assigned to roles and cannot be deleted")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.permissions.Delete(r.Context(), tx, id)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete permission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPermissionResourceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.permissions.DistinctResourceTypes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list resource types")
		return
	}
	respondJSON(w, http.StatusOK, types)
}

func (h *Handler) ListPermissionActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.permissions.DistinctActions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list actions")
		return
	}
	respondJSON(w, http.StatusOK, actions)
}
