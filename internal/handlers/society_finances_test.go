package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"societies/internal/models"
	"societies/internal/store"

	"github.com/shopspring/decimal"
)

func TestCreateSocietyFinanceRecurringNeedsFrequency(t *testing.T) {
	handler := newTestHandler(testDeps{})
	body := `{"society_id":"soc-1","category":"security","amount":500,"recurring":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyFinance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "INVALID_RECURRING_FREQUENCY" {
		t.Fatalf("expected INVALID_RECURRING_FREQUENCY, got %s", apiErr.Code)
	}
}

func TestCreateSocietyFinanceRecurringNeedsNextDueDate(t *testing.T) {
	handler := newTestHandler(testDeps{})
	body := `{"society_id":"soc-1","category":"security","amount":500,"recurring":true,"recurring_frequency":"monthly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyFinance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "MISSING_NEXT_DUE_DATE" {
		t.Fatalf("expected MISSING_NEXT_DUE_DATE, got %s", apiErr.Code)
	}
}

func TestCreateSocietyFinanceRejectsBogusFrequency(t *testing.T) {
	handler := newTestHandler(testDeps{})
	body := `{"society_id":"soc-1","category":"security","amount":500,"recurring":true,"recurring_frequency":"fortnightly","next_due_date":"2025-08-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyFinance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateSocietyFinanceRecurringComplete(t *testing.T) {
	var created models.SocietyFinance
	handler := newTestHandler(testDeps{
		societyFinances: stubSocietyFinanceStore{
			createFn: func(_ context.Context, _ store.Execer, finance models.SocietyFinance) error {
				created = finance
				return nil
			},
			getByIDFn: func(context.Context, string) (models.SocietyFinance, error) { return created, nil },
		},
	})
	body := `{"society_id":"soc-1","category":"security","amount":500,"recurring":true,"recurring_frequency":"monthly","next_due_date":"2025-08-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/society-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateSocietyFinance(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created.RecurringFrequency == nil || *created.RecurringFrequency != "monthly" {
		t.Fatalf("unexpected frequency: %+v", created.RecurringFrequency)
	}
}

func TestUpdateSocietyFinanceEnablingRecurrenceRevalidates(t *testing.T) {
	handler := newTestHandler(testDeps{
		societyFinances: stubSocietyFinanceStore{
			getByIDFn: func(_ context.Context, id string) (models.SocietyFinance, error) {
				return models.SocietyFinance{
					ID:        id,
					SocietyID: "soc-1",
					Category:  "security",
					Amount:    decimal.RequireFromString("500"),
					IsActive:  true,
				}, nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/society-finances/fin-1",
		strings.NewReader(`{"recurring":true}`)), "id", "fin-1")
	rr := httptest.NewRecorder()
	handler.UpdateSocietyFinance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateSocietyFinanceKeepsInheritedRecurrence(t *testing.T) {
	frequency := "monthly"
	next := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	var updated models.SocietyFinance
	handler := newTestHandler(testDeps{
		societyFinances: stubSocietyFinanceStore{
			getByIDFn: func(_ context.Context, id string) (models.SocietyFinance, error) {
				if updated.ID != "" {
					return updated, nil
				}
				return models.SocietyFinance{
					ID:                 id,
					SocietyID:          "soc-1",
					Category:           "security",
					Amount:             decimal.RequireFromString("500"),
					Recurring:          true,
					RecurringFrequency: &frequency,
					NextDueDate:        &next,
					IsActive:           true,
				}, nil
			},
			updateFn: func(_ context.Context, _ store.Execer, finance models.SocietyFinance) error {
				updated = finance
				return nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/society-finances/fin-1",
		strings.NewReader(`{"amount":750}`)), "id", "fin-1")
	rr := httptest.NewRecorder()
	handler.UpdateSocietyFinance(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !updated.Recurring || updated.RecurringFrequency == nil {
		t.Fatalf("expected recurrence preserved, got %+v", updated)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("750")) {
		t.Fatalf("expected amount updated, got %s", updated.Amount)
	}
}

func TestSocietyFinanceSummaryTotals(t *testing.T) {
	handler := newTestHandler(testDeps{
		societyFinances: stubSocietyFinanceStore{
			summarizeFn: func(context.Context, string, *time.Time, *time.Time, string) ([]store.CategoryTotal, error) {
				return []store.CategoryTotal{
					{Category: "housekeeping", Amount: decimal.RequireFromString("150"), Count: 1},
					{Category: "security", Amount: decimal.RequireFromString("500"), Count: 2},
				}, nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/societies/soc-1/finance-summary", nil), "id", "soc-1")
	rr := httptest.NewRecorder()
	handler.SocietyFinanceSummary(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var summary societyFinanceSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalAmount != "650.00" || summary.TotalCount != 3 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if len(summary.Categories) != 2 || summary.Categories[1].Amount != "500.00" {
		t.Fatalf("unexpected categories: %+v", summary.Categories)
	}
}
