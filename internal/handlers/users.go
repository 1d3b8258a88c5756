package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"societies/internal/auth"
	"societies/internal/models"
	"societies/internal/store"
	"societies/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.UserFilter{
		Username: r.URL.Query().Get("username"),
		Email:    r.URL.Query().Get("email"),
		IsActive: parseBoolParam(r, "is_active"),
		RoleID:   r.URL.Query().Get("role_id"),
	}
	users, err := h.users.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list users"})
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type userCreateRequest struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	RoleID     string  `json:"role_id"`
	ResidentID *string `json:"resident_id"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	missing := []string{}
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.FullName == "" {
		missing = append(missing, "full_name")
	}
	if req.RoleID == "" {
		missing = append(missing, "role_id")
	}
	if len(missing) > 0 {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "VALIDATION_ERROR",
			Message: "missing required fields",
			Fields:  missing,
		})
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "username"})
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "email"})
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "password"})
		return
	}
	if count, err := h.users.CountByUsername(r.Context(), req.Username); err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check username"})
		return
	} else if count > 0 {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "DUPLICATE_USERNAME",
			Message: "username already registered",
			Field:   "username",
		})
		return
	}
	if count, err := h.users.CountByEmail(r.Context(), req.Email); err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check email"})
		return
	} else if count > 0 {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "DUPLICATE_EMAIL",
			Message: "email already registered",
			Field:   "email",
		})
		return
	}
	if _, err := h.roles.GetByID(r.Context(), req.RoleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_ROLE",
				Message: "role does not exist",
				Field:   "role_id",
			})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check role"})
		return
	}
	if req.ResidentID != nil {
		if _, err := h.residents.GetByID(r.Context(), *req.ResidentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondAPIError(w, http.StatusBadRequest, apiError{
					Code:    "INVALID_RESIDENT",
					Message: "resident does not exist",
					Field:   "resident_id",
				})
				return
			}
			respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check resident"})
			return
		}
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to secure password"})
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FullName:     req.FullName,
		RoleID:       req.RoleID,
		ResidentID:   req.ResidentID,
		IsActive:     true,
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.Create(r.Context(), tx, user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "DUPLICATE_USERNAME",
				Message: "username or email already registered",
			})
			return
		}
		respondDatabaseError(w)
		return
	}
	created, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, user)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type userPatch struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	FullName   *string `json:"full_name"`
	RoleID     *string `json:"role_id"`
	ResidentID *string `json:"resident_id"`
	IsActive   *bool   `json:"is_active"`
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	var patch userPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if patch.Username != nil && *patch.Username != user.Username {
		if err := validator.ValidateUsername(*patch.Username); err != nil {
			respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "username"})
			return
		}
		if count, err := h.users.CountByUsername(r.Context(), *patch.Username); err != nil {
			respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check username"})
			return
		} else if count > 0 {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "DUPLICATE_USERNAME",
				Message: "username already registered",
				Field:   "username",
			})
			return
		}
		user.Username = *patch.Username
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if err := validator.ValidateEmail(*patch.Email); err != nil {
			respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "email"})
			return
		}
		if count, err := h.users.CountByEmail(r.Context(), *patch.Email); err != nil {
			respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check email"})
			return
		} else if count > 0 {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "DUPLICATE_EMAIL",
				Message: "email already registered",
				Field:   "email",
			})
			return
		}
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.RoleID != nil && *patch.RoleID != user.RoleID {
		if _, err := h.roles.GetByID(r.Context(), *patch.RoleID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondAPIError(w, http.StatusBadRequest, apiError{
					Code:    "INVALID_ROLE",
					Message: "role does not exist",
					Field:   "role_id",
				})
				return
			}
			respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check role"})
			return
		}
		user.RoleID = *patch.RoleID
	}
	if patch.ResidentID != nil {
		if _, err := h.residents.GetByID(r.Context(), *patch.ResidentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondAPIError(w, http.StatusBadRequest, apiError{
					Code:    "INVALID_RESIDENT",
					Message: "resident does not exist",
					Field:   "resident_id",
				})
				return
			}
			respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check resident"})
			return
		}
		user.ResidentID = patch.ResidentID
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.Update(r.Context(), tx, user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "DUPLICATE_USERNAME",
				Message: "username or email already registered",
			})
			return
		}
		respondDatabaseError(w)
		return
	}
	updated, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, user)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteUser deactivates the account; user rows are never removed so the
// audit trail of who did what stays intact.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.SetActive(r.Context(), tx, id, false)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: err.Error(), Field: "new_password"})
		return
	}
	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to secure password"})
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.SetPasswordHash(r.Context(), tx, id, passwordHash)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password reset"})
}

func (h *Handler) ToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	var active bool
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		active, err = h.users.ToggleActive(r.Context(), tx, id)
		return err
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "is_active": active})
}

func (h *Handler) UpdateUserLastLogin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	now := time.Now().UTC()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.TouchLastLogin(r.Context(), tx, id, now)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "last_login": now})
}

func (h *Handler) ListAdministeredSocieties(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "user not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load user"})
		return
	}
	societies, err := h.societyAdmins.ListAdministeredSocieties(r.Context(), id)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list societies"})
		return
	}
	respondJSON(w, http.StatusOK, societies)
}
