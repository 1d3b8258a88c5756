package store

import (
	"context"
	"time"

	"societies/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ResidentFinanceStore struct {
	db DB
}

func NewResidentFinanceStore(db DB) *ResidentFinanceStore {
	return &ResidentFinanceStore{db: db}
}

const residentFinanceColumns = `id, resident_id, transaction_type, amount, currency, due_date, payment_date,
	       payment_method, payment_status, description, invoice_number, receipt_number, is_active,
	       created_at, updated_at`

// Transaction types that count toward a resident's dues; payments and refunds
// count toward the other side of the ledger.
var (
	DueTransactionTypes     = []string{"maintenance", "penalty", "special_charge"}
	PaymentTransactionTypes = []string{"payment", "refund"}
)

type ResidentFinanceFilter struct {
	ResidentID      string
	TransactionType string
	PaymentStatus   string
	StartDate       *time.Time
	EndDate         *time.Time
	IsActive        *bool
}

func (s *ResidentFinanceStore) List(ctx context.Context, filter ResidentFinanceFilter, limit, offset int) ([]models.ResidentFinance, error) {
	query := `SELECT ` + residentFinanceColumns + ` FROM resident_finances WHERE 1=1`
	args := []any{}
	if filter.ResidentID != "" {
		args = append(args, filter.ResidentID)
		query += ` AND resident_id = ` + placeholder(len(args))
	}
	if filter.TransactionType != "" {
		args = append(args, filter.TransactionType)
		query += ` AND transaction_type = ` + placeholder(len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += ` AND payment_status = ` + placeholder(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += ` AND due_date >= ` + placeholder(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += ` AND due_date <= ` + placeholder(len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ` + placeholder(len(args))
	}
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	finances := []models.ResidentFinance{}
	err := s.db.SelectContext(ctx, &finances, query, args...)
	return finances, err
}

func (s *ResidentFinanceStore) GetByID(ctx context.Context, id string) (models.ResidentFinance, error) {
	var finance models.ResidentFinance
	err := s.db.GetContext(ctx, &finance, `SELECT `+residentFinanceColumns+` FROM resident_finances WHERE id = $1`, id)
	return finance, err
}

func (s *ResidentFinanceStore) Create(ctx context.Context, tx Execer, finance models.ResidentFinance) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO resident_finances (id, resident_id, transaction_type, amount, currency, due_date,
		                               payment_date, payment_method, payment_status, description,
		                               invoice_number, receipt_number, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, finance.ID, finance.ResidentID, finance.TransactionType, finance.Amount, finance.Currency,
		finance.DueDate, finance.PaymentDate, finance.PaymentMethod, finance.PaymentStatus,
		finance.Description, finance.InvoiceNumber, finance.ReceiptNumber, finance.IsActive)
	return err
}

func (s *ResidentFinanceStore) Update(ctx context.Context, tx Execer, finance models.ResidentFinance) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE resident_finances
		SET transaction_type = $2, amount = $3, currency = $4, due_date = $5, payment_date = $6,
		    payment_method = $7, payment_status = $8, description = $9, invoice_number = $10,
		    receipt_number = $11, is_active = $12, updated_at = NOW()
		WHERE id = $1
	`, finance.ID, finance.TransactionType, finance.Amount, finance.Currency, finance.DueDate,
		finance.PaymentDate, finance.PaymentMethod, finance.PaymentStatus, finance.Description,
		finance.InvoiceNumber, finance.ReceiptNumber, finance.IsActive)
	return err
}

// Deactivate is the only delete: ledger rows are flagged, never removed.
func (s *ResidentFinanceStore) Deactivate(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE resident_finances SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	return err
}

// SumByTypes totals active rows of the given transaction types within the
// optional due-date range. NULL sums come back as zero.
func (s *ResidentFinanceStore) SumByTypes(ctx context.Context, residentID string, types []string, start, end *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM resident_finances
		WHERE resident_id = $1 AND is_active = TRUE AND transaction_type = ANY($2)
	`
	args := []any{residentID, pq.Array(types)}
	if start != nil {
		args = append(args, *start)
		query += ` AND due_date >= ` + placeholder(len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += ` AND due_date <= ` + placeholder(len(args))
	}
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, query, args...)
	return sum, err
}

func (s *ResidentFinanceStore) ListRecent(ctx context.Context, residentID string, start, end *time.Time, limit int) ([]models.ResidentFinance, error) {
	query := `
		SELECT ` + residentFinanceColumns + `
		FROM resident_finances
		WHERE resident_id = $1 AND is_active = TRUE
	`
	args := []any{residentID}
	if start != nil {
		args = append(args, *start)
		query += ` AND due_date >= ` + placeholder(len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += ` AND due_date <= ` + placeholder(len(args))
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args))
	finances := []models.ResidentFinance{}
	err := s.db.SelectContext(ctx, &finances, query, args...)
	return finances, err
}
