package store

import (
	"context"
	"time"

	"societies/internal/models"

	"github.com/shopspring/decimal"
)

type SocietyFinanceStore struct {
	db DB
}

func NewSocietyFinanceStore(db DB) *SocietyFinanceStore {
	return &SocietyFinanceStore{db: db}
}

const societyFinanceColumns = `id, society_id, expense_type, category, vendor_name, expense_date, amount,
	       currency, payment_status, payment_date, payment_method, invoice_number, receipt_number,
	       description, recurring, recurring_frequency, next_due_date, is_active, created_at, updated_at`

type SocietyFinanceFilter struct {
	SocietyID     string
	ExpenseType   string
	Category      string
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
}

func (s *SocietyFinanceStore) List(ctx context.Context, filter SocietyFinanceFilter, limit, offset int) ([]models.SocietyFinance, error) {
	query := `SELECT ` + societyFinanceColumns + ` FROM society_finances WHERE 1=1`
	args := []any{}
	if filter.SocietyID != "" {
		args = append(args, filter.SocietyID)
		query += ` AND society_id = ` + placeholder(len(args))
	}
	if filter.ExpenseType != "" {
		args = append(args, filter.ExpenseType)
		query += ` AND expense_type = ` + placeholder(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = ` + placeholder(len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += ` AND payment_status = ` + placeholder(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += ` AND expense_date >= ` + placeholder(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += ` AND expense_date <= ` + placeholder(len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ` + placeholder(len(args))
	}
	query += ` ORDER BY expense_date DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	finances := []models.SocietyFinance{}
	err := s.db.SelectContext(ctx, &finances, query, args...)
	return finances, err
}

func (s *SocietyFinanceStore) GetByID(ctx context.Context, id string) (models.SocietyFinance, error) {
	var finance models.SocietyFinance
	err := s.db.GetContext(ctx, &finance, `SELECT `+societyFinanceColumns+` FROM society_finances WHERE id = $1`, id)
	return finance, err
}

func (s *SocietyFinanceStore) Create(ctx context.Context, tx Execer, finance models.SocietyFinance) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO society_finances (id, society_id, expense_type, category, vendor_name, expense_date,
		                              amount, currency, payment_status, payment_date, payment_method,
		                              invoice_number, receipt_number, description, recurring,
		                              recurring_frequency, next_due_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, finance.ID, finance.SocietyID, finance.ExpenseType, finance.Category, finance.VendorName,
		finance.ExpenseDate, finance.Amount, finance.Currency, finance.PaymentStatus, finance.PaymentDate,
		finance.PaymentMethod, finance.InvoiceNumber, finance.ReceiptNumber, finance.Description,
		finance.Recurring, finance.RecurringFrequency, finance.NextDueDate, finance.IsActive)
	return err
}

func (s *SocietyFinanceStore) Update(ctx context.Context, tx Execer, finance models.SocietyFinance) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE society_finances
		SET expense_type = $2, category = $3, vendor_name = $4, expense_date = $5, amount = $6,
		    currency = $7, payment_status = $8, payment_date = $9, payment_method = $10,
		    invoice_number = $11, receipt_number = $12, description = $13, recurring = $14,
		    recurring_frequency = $15, next_due_date = $16, is_active = $17, updated_at = NOW()
		WHERE id = $1
	`, finance.ID, finance.ExpenseType, finance.Category, finance.VendorName, finance.ExpenseDate,
		finance.Amount, finance.Currency, finance.PaymentStatus, finance.PaymentDate, finance.PaymentMethod,
		finance.InvoiceNumber, finance.ReceiptNumber, finance.Description, finance.Recurring,
		finance.RecurringFrequency, finance.NextDueDate, finance.IsActive)
	return err
}

func (s *SocietyFinanceStore) Deactivate(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE society_finances SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	return err
}

func (s *SocietyFinanceStore) DistinctCategories(ctx context.Context, societyID string) ([]string, error) {
	categories := []string{}
	err := s.db.SelectContext(ctx, &categories, `
		SELECT DISTINCT category FROM society_finances
		WHERE society_id = $1 AND is_active = TRUE
		ORDER BY category
	`, societyID)
	return categories, err
}

type CategoryTotal struct {
	Category string          `db:"category"`
	Amount   decimal.Decimal `db:"total_amount"`
	Count    int             `db:"count"`
}

// SummarizeByCategory groups active expenses by category within the optional
// date-range and expense-type filters.
func (s *SocietyFinanceStore) SummarizeByCategory(ctx context.Context, societyID string, start, end *time.Time, expenseType string) ([]CategoryTotal, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0) AS total_amount, COUNT(DISTINCT id) AS count
		FROM society_finances
		WHERE society_id = $1 AND is_active = TRUE
	`
	args := []any{societyID}
	if start != nil {
		args = append(args, *start)
		query += ` AND expense_date >= ` + placeholder(len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += ` AND expense_date <= ` + placeholder(len(args))
	}
	if expenseType != "" {
		args = append(args, expenseType)
		query += ` AND expense_type = ` + placeholder(len(args))
	}
	query += ` GROUP BY category ORDER BY category`
	totals := []CategoryTotal{}
	err := s.db.SelectContext(ctx, &totals, query, args...)
	return totals, err
}
