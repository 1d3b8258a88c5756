package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"societies/internal/auth"
	"societies/internal/models"
)

type stubUserLoader struct {
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
}

func (s stubUserLoader) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

type stubChecker struct {
	hasPermissionFn func(ctx context.Context, user models.User, resourceType, action string) (bool, error)
}

func (s stubChecker) HasPermission(ctx context.Context, user models.User, resourceType, action string) (bool, error) {
	return s.hasPermissionFn(ctx, user, resourceType, action)
}

func okHandler(t *testing.T, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthLoadsUserIntoContext(t *testing.T) {
	token, err := auth.GenerateToken("secret", "alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	loader := stubUserLoader{
		getByUsernameFn: func(_ context.Context, username string) (models.User, error) {
			return models.User{ID: "u1", Username: username, IsActive: true}, nil
		},
	}
	var seen models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		seen = user
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	Auth("secret", loader)(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if seen.Username != "alice" {
		t.Fatalf("expected alice, got %q", seen.Username)
	}
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	loader := stubUserLoader{
		getByUsernameFn: func(context.Context, string) (models.User, error) {
			return models.User{}, sql.ErrNoRows
		},
	}
	cases := map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"garbage": "Bearer not-a-token",
	}
	for name, header := range cases {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		Auth("secret", loader)(okHandler(t, &called)).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rr.Code)
		}
		if called {
			t.Fatalf("%s: next handler must not run", name)
		}
	}
}

func TestAuthRejectsInactiveUser(t *testing.T) {
	token, err := auth.GenerateToken("secret", "alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	loader := stubUserLoader{
		getByUsernameFn: func(context.Context, string) (models.User, error) {
			return models.User{ID: "u1", Username: "alice", IsActive: false}, nil
		},
	}
	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	Auth("secret", loader)(okHandler(t, &called)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if called {
		t.Fatal("next handler must not run")
	}
}

func TestRequirePermissionDenies(t *testing.T) {
	checker := stubChecker{
		hasPermissionFn: func(context.Context, models.User, string, string) (bool, error) {
			return false, nil
		},
	}
	called := false
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), models.User{ID: "u1"}))
	rr := httptest.NewRecorder()
	RequirePermission(checker, "societies", "delete")(okHandler(t, &called)).ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if called {
		t.Fatal("next handler must not run")
	}
}

func TestRequirePermissionAllows(t *testing.T) {
	checker := stubChecker{
		hasPermissionFn: func(_ context.Context, _ models.User, resourceType, action string) (bool, error) {
			return resourceType == "societies" && action == "create", nil
		},
	}
	called := false
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), models.User{ID: "u1"}))
	rr := httptest.NewRecorder()
	RequirePermission(checker, "societies", "create")(okHandler(t, &called)).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !called {
		t.Fatal("expected next handler to run")
	}
}

func TestRequirePermissionWithoutUser(t *testing.T) {
	checker := stubChecker{
		hasPermissionFn: func(context.Context, models.User, string, string) (bool, error) {
			t.Fatal("checker must not run without a user")
			return false, nil
		},
	}
	called := false
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	RequirePermission(checker, "societies", "create")(okHandler(t, &called)).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
