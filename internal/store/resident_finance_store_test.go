package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"societies/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestResidentFinanceSumByTypes(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewResidentFinanceStore(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1000.00"))

	sum, err := store.SumByTypes(context.Background(), "res-1", DueTransactionTypes, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StringFixed(2) != "1000.00" {
		t.Fatalf("unexpected sum: %s", sum)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestResidentFinanceSumByTypesEmptyLedger(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewResidentFinanceStore(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))

	sum, err := store.SumByTypes(context.Background(), "res-1", PaymentTransactionTypes, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.IsZero() {
		t.Fatalf("expected zero, got %s", sum)
	}
}

func TestResidentFinanceDeactivate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET is_active = FALSE") {
				t.Fatalf("expected soft delete, got: %s", query)
			}
			if strings.Contains(query, "DELETE FROM") {
				t.Fatalf("ledger rows must not be removed: %s", query)
			}
			if args[0] != "fin-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewResidentFinanceStore(stubDB{})
	if err := store.Deactivate(ctx, execer, "fin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResidentFinanceListFiltersByDueDateRange(t *testing.T) {
	ctx := context.Background()
	store := NewResidentFinanceStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "resident_id = $1") {
				t.Fatalf("expected resident filter, got: %s", query)
			}
			if !strings.Contains(query, "ORDER BY created_at DESC") {
				t.Fatalf("expected newest-first ordering, got: %s", query)
			}
			return nil
		},
	})
	if _, err := store.List(ctx, ResidentFinanceFilter{ResidentID: "res-1"}, 100, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResidentFinanceCreateBindsAllColumns(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO resident_finances") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 13 {
				t.Fatalf("expected 13 args, got %d", len(args))
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewResidentFinanceStore(stubDB{})
	finance := models.ResidentFinance{ID: "fin-1", ResidentID: "res-1", TransactionType: "maintenance", Currency: "INR", PaymentStatus: "pending", IsActive: true}
	if err := store.Create(ctx, execer, finance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
