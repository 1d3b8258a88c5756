package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"societies/internal/models"
)

func TestSocietyFinanceSummarizeByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSocietyFinanceStore(db)

	rows := sqlmock.NewRows([]string{"category", "total_amount", "count"}).
		AddRow("housekeeping", "150.00", 1).
		AddRow("security", "500.00", 2)
	mock.ExpectQuery(`SELECT category, COALESCE\(SUM\(amount\), 0\) AS total_amount`).
		WillReturnRows(rows)

	totals, err := store.SummarizeByCategory(context.Background(), "soc-1", nil, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Category != "housekeeping" || totals[0].Amount.StringFixed(2) != "150.00" || totals[0].Count != 1 {
		t.Fatalf("unexpected first row: %#v", totals[0])
	}
	if totals[1].Category != "security" || totals[1].Amount.StringFixed(2) != "500.00" || totals[1].Count != 2 {
		t.Fatalf("unexpected second row: %#v", totals[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSocietyFinanceSummarizeByCategoryAppliesFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	store := NewSocietyFinanceStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "expense_date >= $2") {
				t.Fatalf("expected start filter, got: %s", query)
			}
			if !strings.Contains(query, "expense_date <= $3") {
				t.Fatalf("expected end filter, got: %s", query)
			}
			if !strings.Contains(query, "expense_type = $4") {
				t.Fatalf("expected expense type filter, got: %s", query)
			}
			if !strings.Contains(query, "GROUP BY category") {
				t.Fatalf("expected grouping, got: %s", query)
			}
			if len(args) != 4 || args[0] != "soc-1" || args[3] != "regular" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.SummarizeByCategory(context.Background(), "soc-1", &start, &end, "regular"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSocietyFinanceDistinctCategories(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSocietyFinanceStore(db)

	mock.ExpectQuery(`SELECT DISTINCT category FROM society_finances`).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("housekeeping").AddRow("security"))

	categories, err := store.DistinctCategories(context.Background(), "soc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 2 || categories[0] != "housekeeping" {
		t.Fatalf("unexpected categories: %#v", categories)
	}
}

func TestSocietyFinanceListBuildsFilters(t *testing.T) {
	store := NewSocietyFinanceStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "society_id = $1") {
				t.Fatalf("expected society filter, got: %s", query)
			}
			if !strings.Contains(query, "payment_status = $2") {
				t.Fatalf("expected status filter, got: %s", query)
			}
			if !strings.Contains(query, "is_active = $3") {
				t.Fatalf("expected active filter, got: %s", query)
			}
			if !strings.Contains(query, "ORDER BY expense_date DESC") {
				t.Fatalf("expected newest-first ordering, got: %s", query)
			}
			if !strings.Contains(query, "LIMIT $4 OFFSET $5") {
				t.Fatalf("expected pagination placeholders, got: %s", query)
			}
			return nil
		},
	})
	active := true
	filter := SocietyFinanceFilter{SocietyID: "soc-1", PaymentStatus: "pending", IsActive: &active}
	if _, err := store.List(context.Background(), filter, 100, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSocietyFinanceCreateBindsAllColumns(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO society_finances") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 18 {
				t.Fatalf("expected 18 args, got %d", len(args))
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewSocietyFinanceStore(stubDB{})
	finance := models.SocietyFinance{ID: "fin-1", SocietyID: "soc-1", ExpenseType: "regular", Category: "security", Currency: "INR", PaymentStatus: "pending", IsActive: true}
	if err := store.Create(context.Background(), execer, finance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
