package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"societies/internal/auth"
	"societies/internal/middleware"
	"societies/internal/models"
	"societies/internal/validator"

	"github.com/jmoiron/sqlx"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token is the form-encoded OAuth2 password grant kept for API clients; the
// web UI uses Login below.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	user, ok := h.authenticate(w, r, username, password)
	if !ok {
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.Username, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        loginUser `json:"user"`
}

// Login accepts a username or an email in the username field.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, ok := h.authenticate(w, r, req.Username, req.Password)
	if !ok {
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.Username, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	firstName, lastName := splitFullName(user.FullName)
	roleName := ""
	if role, err := h.roles.GetByID(r.Context(), user.RoleID); err == nil {
		roleName = role.Name
	}
	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: loginUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: firstName,
			LastName:  lastName,
			Role:      roleName,
		},
	})
}

// authenticate resolves and verifies the credentials, writing the error
// response itself on failure. The 401 is identical for unknown accounts and
// wrong passwords so the endpoint does not leak which usernames exist.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, identifier, password string) (models.User, bool) {
	user, err := h.users.GetByIdentifier(r.Context(), identifier)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "incorrect username or password")
		return models.User{}, false
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		respondError(w, http.StatusUnauthorized, "incorrect username or password")
		return models.User{}, false
	}
	if !user.IsActive {
		respondError(w, http.StatusBadRequest, "inactive user")
		return models.User{}, false
	}
	now := time.Now().UTC()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.TouchLastLogin(r.Context(), tx, user.ID, now)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return models.User{}, false
	}
	return user, true
}

func splitFullName(fullName string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(fullName), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		respondError(w, http.StatusBadRequest, "incorrect password")
		return
	}
	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.SetPasswordHash(r.Context(), tx, user.ID, passwordHash)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// MyPermissions lists the permissions of the caller's role.
func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}
	permissions, err := h.roles.ListPermissions(r.Context(), user.RoleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	respondJSON(w, http.StatusOK, permissions)
}
