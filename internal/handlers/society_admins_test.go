package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"societies/internal/models"
	"societies/internal/store"
)

func TestCreateSocietyAdminDemotesPreviousPrimary(t *testing.T) {
	demotedSociety := ""
	var created models.SocietyAdmin
	handler := newTestHandler(testDeps{
		societyAdmins: stubSocietyAdminStore{
			demotePrimaryFn: func(_ context.Context, _ store.Execer, societyID, exceptID string) error {
				demotedSociety = societyID
				if exceptID == "" {
					t.Fatal("expected the new binding to be spared")
				}
				return nil
			},
			createFn: func(_ context.Context, _ store.Execer, admin models.SocietyAdmin) error {
				if demotedSociety != admin.SocietyID {
					t.Fatal("expected demotion before create in the same transaction")
				}
				created = admin
				return nil
			},
			getByIDFn: func(context.Context, string) (models.SocietyAdmin, error) { return created, nil },
		},
	})

	body := `{"user_id":"user-1","society_id":"soc-1","is_primary_admin":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-admins", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyAdmin(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !created.IsPrimaryAdmin {
		t.Fatal("expected binding created as primary")
	}
}

func TestCreateSocietyAdminWithoutPrimaryDoesNotDemote(t *testing.T) {
	handler := newTestHandler(testDeps{
		societyAdmins: stubSocietyAdminStore{
			demotePrimaryFn: func(context.Context, store.Execer, string, string) error {
				t.Fatal("unexpected demotion for a non-primary binding")
				return nil
			},
		},
	})
	body := `{"user_id":"user-1","society_id":"soc-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-admins", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyAdmin(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateSocietyAdminRejectsDuplicateBinding(t *testing.T) {
	handler := newTestHandler(testDeps{
		societyAdmins: stubSocietyAdminStore{
			countBindingFn: func(context.Context, string, string) (int, error) { return 1, nil },
		},
	})
	body := `{"user_id":"user-1","society_id":"soc-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-admins", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyAdmin(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateSocietyAdminPromotionDemotesOthers(t *testing.T) {
	demoted := false
	handler := newTestHandler(testDeps{
		societyAdmins: stubSocietyAdminStore{
			getByIDFn: func(_ context.Context, id string) (models.SocietyAdmin, error) {
				return models.SocietyAdmin{ID: id, UserID: "user-1", SocietyID: "soc-1"}, nil
			},
			demotePrimaryFn: func(_ context.Context, _ store.Execer, societyID, exceptID string) error {
				if societyID != "soc-1" || exceptID != "sa-1" {
					t.Fatalf("unexpected demotion args %s %s", societyID, exceptID)
				}
				demoted = true
				return nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/society-admins/sa-1",
		strings.NewReader(`{"is_primary_admin":true}`)), "id", "sa-1")
	rr := httptest.NewRecorder()
	handler.UpdateSocietyAdmin(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !demoted {
		t.Fatal("expected previous primary demoted")
	}
}
