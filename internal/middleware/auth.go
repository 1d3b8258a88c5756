package middleware

import (
	"context"
	"net/http"
	"strings"

	"societies/internal/auth"
	"societies/internal/models"
)

type contextKey string

const userKey contextKey = "current_user"

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// ContextWithUser is exported for handler tests.
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// Auth validates the bearer token, loads the subject user and rejects
// inactive accounts. The user travels in the request context from here on.
func Auth(secret string, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			username, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "could not validate credentials", http.StatusUnauthorized)
				return
			}
			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				http.Error(w, "could not validate credentials", http.StatusUnauthorized)
				return
			}
			if !user.IsActive {
				http.Error(w, "inactive user", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}
