package middleware

import (
	"context"
	"net/http"

	"societies/internal/models"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, user models.User, resourceType, action string) (bool, error)
}

// RequirePermission guards a route with an exact (resourceType, action)
// permission check. Runs after Auth.
func RequirePermission(checker PermissionChecker, resourceType, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			allowed, err := checker.HasPermission(r.Context(), user, resourceType, action)
			if err != nil {
				http.Error(w, "unable to verify permissions", http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, "permission denied: "+action+" "+resourceType, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
