package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"societies/internal/models"
	"societies/internal/store"
)

func TestCreateUserReportsMissingFields(t *testing.T) {
	handler := newTestHandler(testDeps{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"username":"alice"}`))
	rr := httptest.NewRecorder()
	handler.CreateUser(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if len(apiErr.Fields) != 4 {
		t.Fatalf("expected four missing fields, got %v", apiErr.Fields)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			countByUsernameFn: func(context.Context, string) (int, error) { return 1, nil },
		},
	})
	body := `{"username":"alice","password":"secret-pass-1","email":"alice@example.com","full_name":"Alice A","role_id":"role-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateUser(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "DUPLICATE_USERNAME" || apiErr.Field != "username" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	handler := newTestHandler(testDeps{
		roles: stubRoleStore{
			getByIDFn: func(context.Context, string) (models.Role, error) {
				return models.Role{}, sql.ErrNoRows
			},
		},
	})
	body := `{"username":"alice","password":"secret-pass-1","email":"alice@example.com","full_name":"Alice A","role_id":"ghost"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateUser(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "INVALID_ROLE" {
		t.Fatalf("expected INVALID_ROLE, got %s", apiErr.Code)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	var created models.User
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, user models.User) error {
				created = user
				return nil
			},
			getByIDFn: func(context.Context, string) (models.User, error) { return created, nil },
		},
	})
	body := `{"username":"alice","password":"secret-pass-1","email":"alice@example.com","full_name":"Alice A","role_id":"role-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateUser(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created.PasswordHash == "" || created.PasswordHash == "secret-pass-1" {
		t.Fatal("expected password to be hashed")
	}
	if strings.Contains(rr.Body.String(), "secret-pass-1") || strings.Contains(rr.Body.String(), created.PasswordHash) {
		t.Fatal("response must not leak credentials")
	}
}

func TestDeleteUserDeactivatesInsteadOfRemoving(t *testing.T) {
	deactivated := ""
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			setActiveFn: func(_ context.Context, _ store.Execer, userID string, active bool) error {
				if active {
					t.Fatal("expected deactivation")
				}
				deactivated = userID
				return nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/users/user-1", nil), "id", "user-1")
	rr := httptest.NewRecorder()
	handler.DeleteUser(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
	if deactivated != "user-1" {
		t.Fatalf("expected user-1 deactivated, got %q", deactivated)
	}
}

func TestToggleUserActive(t *testing.T) {
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			toggleActiveFn: func(context.Context, store.Tx, string) (bool, error) { return false, nil },
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/users/user-1/toggle-active", nil), "id", "user-1")
	rr := httptest.NewRecorder()
	handler.ToggleUserActive(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["is_active"] != false {
		t.Fatalf("expected is_active false, got %v", resp["is_active"])
	}
}
