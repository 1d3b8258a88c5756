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

func (h *Handler) ListSocietyAdmins(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.SocietyAdminFilter{
		UserID:         r.URL.Query().Get("user_id"),
		SocietyID:      r.URL.Query().Get("society_id"),
		IsPrimaryAdmin: parseBoolParam(r, "is_primary_admin"),
	}
	admins, err := h.societyAdmins.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list society admins")
		return
	}
	respondJSON(w, http.StatusOK, admins)
}

func (h *Handler) GetSocietyAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.societyAdmins.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society admin not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society admin")
		return
	}
	respondJSON(w, http.StatusOK, admin)
}

type societyAdminRequest struct {
	UserID         string `json:"user_id"`
	SocietyID      string `json:"society_id"`
	IsPrimaryAdmin bool   `json:"is_primary_admin"`
}

// CreateSocietyAdmin binds a user to a society. Promoting the new binding to
// primary demotes the previous primary in the same transaction, so the
// society never ends up with two primaries even under concurrent requests.
func (h *Handler) CreateSocietyAdmin(w http.ResponseWriter, r *http.Request) {
	var req societyAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.SocietyID == "" {
		respondError(w, http.StatusBadRequest, "user_id and society_id are required")
		return
	}
	if _, err := h.users.GetByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if _, err := h.societies.GetByID(r.Context(), req.SocietyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	if count, err := h.societyAdmins.CountBinding(r.Context(), req.UserID, req.SocietyID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check society admin")
		return
	} else if count > 0 {
		respondError(w, http.StatusBadRequest, "user is already an admin of this society")
		return
	}
	admin := models.SocietyAdmin{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		SocietyID:      req.SocietyID,
		IsPrimaryAdmin: req.IsPrimaryAdmin,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if admin.IsPrimaryAdmin {
			if err := h.societyAdmins.DemotePrimary(r.Context(), tx, admin.SocietyID, admin.ID); err != nil {
				return err
			}
		}
		return h.societyAdmins.Create(r.Context(), tx, admin)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "user is already an admin of this society")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create society admin")
		return
	}
	created, err := h.societyAdmins.GetByID(r.Context(), admin.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, admin)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type societyAdminPatch struct {
	IsPrimaryAdmin *bool `json:"is_primary_admin"`
}

func (h *Handler) UpdateSocietyAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.societyAdmins.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society admin not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society admin")
		return
	}
	var patch societyAdminPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if patch.IsPrimaryAdmin != nil {
		admin.IsPrimaryAdmin = *patch.IsPrimaryAdmin
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if admin.IsPrimaryAdmin {
			if err := h.societyAdmins.DemotePrimary(r.Context(), tx, admin.SocietyID, admin.ID); err != nil {
				return err
			}
		}
		return h.societyAdmins.Update(r.Context(), tx, admin)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update society admin")
		return
	}
	updated, err := h.societyAdmins.GetByID(r.Context(), admin.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, admin)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSocietyAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societyAdmins.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society admin not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society admin")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societyAdmins.Delete(r.Context(), tx, id)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete society admin")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSocietyAdministrators(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	administrators, err := h.societyAdmins.ListAdministrators(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list administrators")
		return
	}
	respondJSON(w, http.StatusOK, administrators)
}
