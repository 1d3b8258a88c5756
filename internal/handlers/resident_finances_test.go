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

func TestCreateResidentFinanceRejectsUnknownType(t *testing.T) {
	handler := newTestHandler(testDeps{})
	body := `{"resident_id":"res-1","transaction_type":"bribe","amount":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resident-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateResidentFinance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "INVALID_TRANSACTION_TYPE" {
		t.Fatalf("expected INVALID_TRANSACTION_TYPE, got %s", apiErr.Code)
	}
}

func TestCreateResidentFinanceDefaults(t *testing.T) {
	var created models.ResidentFinance
	handler := newTestHandler(testDeps{
		residentFinances: stubResidentFinanceStore{
			createFn: func(_ context.Context, _ store.Execer, finance models.ResidentFinance) error {
				created = finance
				return nil
			},
			getByIDFn: func(context.Context, string) (models.ResidentFinance, error) { return created, nil },
		},
	})
	body := `{"resident_id":"res-1","transaction_type":"maintenance","amount":"1500.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resident-finances", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.CreateResidentFinance(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created.PaymentStatus != "pending" || created.Currency != "INR" || !created.IsActive {
		t.Fatalf("unexpected defaults: %+v", created)
	}
}

func TestDeleteResidentFinanceDeactivates(t *testing.T) {
	deactivated := ""
	handler := newTestHandler(testDeps{
		residentFinances: stubResidentFinanceStore{
			deactivateFn: func(_ context.Context, _ store.Execer, id string) error {
				deactivated = id
				return nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/resident-finances/fin-1", nil), "id", "fin-1")
	rr := httptest.NewRecorder()
	handler.DeleteResidentFinance(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
	if deactivated != "fin-1" {
		t.Fatalf("expected fin-1 deactivated, got %q", deactivated)
	}
}

func TestListResidentFinancesDefaultsToActiveRows(t *testing.T) {
	handler := newTestHandler(testDeps{
		residentFinances: stubResidentFinanceStore{
			listFn: func(_ context.Context, filter store.ResidentFinanceFilter, _, _ int) ([]models.ResidentFinance, error) {
				if filter.IsActive == nil || !*filter.IsActive {
					t.Fatalf("expected default is_active=true filter, got %+v", filter.IsActive)
				}
				return nil, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resident-finances", nil)
	rr := httptest.NewRecorder()
	handler.ListResidentFinances(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestResidentFinanceSummary(t *testing.T) {
	desc := "Monthly maintenance"
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	handler := newTestHandler(testDeps{
		residentFinances: stubResidentFinanceStore{
			sumByTypesFn: func(_ context.Context, _ string, types []string, _, _ *time.Time) (decimal.Decimal, error) {
				if contains(types, "payment") {
					return decimal.RequireFromString("400"), nil
				}
				return decimal.RequireFromString("1000"), nil
			},
			listRecentFn: func(_ context.Context, _ string, _, _ *time.Time, limit int) ([]models.ResidentFinance, error) {
				if limit != 5 {
					t.Fatalf("expected limit 5, got %d", limit)
				}
				return []models.ResidentFinance{
					{
						ID:              "fin-1",
						TransactionType: "maintenance",
						Amount:          decimal.RequireFromString("1000"),
						PaymentStatus:   "pending",
						Description:     &desc,
						DueDate:         &due,
					},
					{
						ID:              "fin-2",
						TransactionType: "special_charge",
						Amount:          decimal.RequireFromString("400"),
						PaymentStatus:   "paid",
					},
				}, nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/residents/res-1/finance-summary", nil), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.ResidentFinanceSummary(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var summary residentFinanceSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Dues != "1000.00" || summary.Payments != "400.00" || summary.Balance != "600.00" {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if len(summary.RecentTransactions) != 2 {
		t.Fatalf("expected two recent transactions, got %d", len(summary.RecentTransactions))
	}
	if summary.RecentTransactions[0].Title != "Monthly maintenance" {
		t.Fatalf("expected description as title, got %q", summary.RecentTransactions[0].Title)
	}
	if summary.RecentTransactions[1].Title != "Special Charge" {
		t.Fatalf("expected humanized type as title, got %q", summary.RecentTransactions[1].Title)
	}
	if summary.RecentTransactions[0].Type != "due" || summary.RecentTransactions[0].Status != "pending" {
		t.Fatalf("unexpected due entry: %+v", summary.RecentTransactions[0])
	}
}

func TestResidentFinanceSummaryOmitsStatusForPayments(t *testing.T) {
	handler := newTestHandler(testDeps{
		residentFinances: stubResidentFinanceStore{
			listRecentFn: func(context.Context, string, *time.Time, *time.Time, int) ([]models.ResidentFinance, error) {
				return []models.ResidentFinance{
					{ID: "fin-1", TransactionType: "payment", Amount: decimal.RequireFromString("400"), PaymentStatus: "paid"},
				}, nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/residents/res-1/finance-summary", nil), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.ResidentFinanceSummary(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var summary residentFinanceSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.RecentTransactions[0].Type != "payment" || summary.RecentTransactions[0].Status != "" {
		t.Fatalf("unexpected payment entry: %+v", summary.RecentTransactions[0])
	}
}
