package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"societies/internal/models"
	"societies/internal/store"
	"societies/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var expenseTypes = []string{"regular", "adhoc"}

var societyPaymentStatuses = []string{"pending", "paid", "overdue", "partially_paid"}

var recurringFrequencies = []string{"daily", "weekly", "monthly", "quarterly", "biannually", "annually"}

func (h *Handler) ListSocietyFinances(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.SocietyFinanceFilter{
		SocietyID:     r.URL.Query().Get("society_id"),
		ExpenseType:   r.URL.Query().Get("expense_type"),
		Category:      r.URL.Query().Get("category"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		StartDate:     parseDateParam(r, "start_date"),
		EndDate:       parseDateParam(r, "end_date"),
		IsActive:      activeFilter(r),
	}
	finances, err := h.societyFinances.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list expenses"})
		return
	}
	respondJSON(w, http.StatusOK, finances)
}

func (h *Handler) GetSocietyFinance(w http.ResponseWriter, r *http.Request) {
	finance, err := h.societyFinances.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "expense not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load expense"})
		return
	}
	respondJSON(w, http.StatusOK, finance)
}

// validateRecurrence enforces the recurrence invariant on the final state of
// a row: a recurring expense needs a valid frequency and a next due date.
func validateRecurrence(finance models.SocietyFinance) *apiError {
	if !finance.Recurring {
		return nil
	}
	if finance.RecurringFrequency == nil || *finance.RecurringFrequency == "" {
		return &apiError{
			Code:    "INVALID_RECURRING_FREQUENCY",
			Message: "recurring_frequency is required for recurring expenses",
			Field:   "recurring_frequency",
		}
	}
	if !contains(recurringFrequencies, *finance.RecurringFrequency) {
		return &apiError{
			Code:    "INVALID_RECURRING_FREQUENCY",
			Message: "recurring_frequency must be one of: " + strings.Join(recurringFrequencies, ", "),
			Field:   "recurring_frequency",
		}
	}
	if finance.NextDueDate == nil {
		return &apiError{
			Code:    "MISSING_NEXT_DUE_DATE",
			Message: "next_due_date is required for recurring expenses",
			Field:   "next_due_date",
		}
	}
	return nil
}

type societyFinanceRequest struct {
	SocietyID          string          `json:"society_id"`
	ExpenseType        string          `json:"expense_type"`
	Category           string          `json:"category"`
	VendorName         *string         `json:"vendor_name"`
	ExpenseDate        time.Time       `json:"expense_date"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentDate        *time.Time      `json:"payment_date"`
	PaymentMethod      *string         `json:"payment_method"`
	InvoiceNumber      *string         `json:"invoice_number"`
	ReceiptNumber      *string         `json:"receipt_number"`
	Description        *string         `json:"description"`
	Recurring          bool            `json:"recurring"`
	RecurringFrequency *string         `json:"recurring_frequency"`
	NextDueDate        *time.Time      `json:"next_due_date"`
}

func (h *Handler) CreateSocietyFinance(w http.ResponseWriter, r *http.Request) {
	var req societyFinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if req.SocietyID == "" || req.Category == "" {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "VALIDATION_ERROR",
			Message: "society_id and category are required",
		})
		return
	}
	if req.ExpenseType == "" {
		req.ExpenseType = "regular"
	}
	if !contains(expenseTypes, req.ExpenseType) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "INVALID_EXPENSE_TYPE",
			Message: "expense_type must be one of: " + strings.Join(expenseTypes, ", "),
			Field:   "expense_type",
		})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "VALIDATION_ERROR",
			Message: "amount must be greater than zero",
			Field:   "amount",
		})
		return
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = "pending"
	}
	if !contains(societyPaymentStatuses, req.PaymentStatus) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "INVALID_PAYMENT_STATUS",
			Message: "payment_status must be one of: " + strings.Join(societyPaymentStatuses, ", "),
			Field:   "payment_status",
		})
		return
	}
	if _, err := h.societies.GetByID(r.Context(), req.SocietyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_SOCIETY",
				Message: "society does not exist",
				Field:   "society_id",
			})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check society"})
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	if req.ExpenseDate.IsZero() {
		req.ExpenseDate = time.Now().UTC()
	}
	finance := models.SocietyFinance{
		ID:                 uuid.NewString(),
		SocietyID:          req.SocietyID,
		ExpenseType:        req.ExpenseType,
		Category:           req.Category,
		VendorName:         req.VendorName,
		ExpenseDate:        req.ExpenseDate,
		Amount:             req.Amount,
		Currency:           req.Currency,
		PaymentStatus:      req.PaymentStatus,
		PaymentDate:        req.PaymentDate,
		PaymentMethod:      req.PaymentMethod,
		InvoiceNumber:      req.InvoiceNumber,
		ReceiptNumber:      req.ReceiptNumber,
		Description:        req.Description,
		Recurring:          req.Recurring,
		RecurringFrequency: req.RecurringFrequency,
		NextDueDate:        req.NextDueDate,
		IsActive:           true,
	}
	if apiErr := validateRecurrence(finance); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, *apiErr)
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societyFinances.Create(r.Context(), tx, finance)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
		Kind:      "society_finance",
		SocietyID: finance.SocietyID,
		RecordID:  finance.ID,
		Action:    "created",
		Amount:    finance.Amount.StringFixed(2),
		Category:  finance.Category,
	})
	created, err := h.societyFinances.GetByID(r.Context(), finance.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, finance)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type societyFinancePatch struct {
	ExpenseType        *string          `json:"expense_type"`
	Category           *string          `json:"category"`
	VendorName         *string          `json:"vendor_name"`
	ExpenseDate        *time.Time       `json:"expense_date"`
	Amount             *decimal.Decimal `json:"amount"`
	Currency           *string          `json:"currency"`
	PaymentStatus      *string          `json:"payment_status"`
	PaymentDate        *time.Time       `json:"payment_date"`
	PaymentMethod      *string          `json:"payment_method"`
	InvoiceNumber      *string          `json:"invoice_number"`
	ReceiptNumber      *string          `json:"receipt_number"`
	Description        *string          `json:"description"`
	Recurring          *bool            `json:"recurring"`
	RecurringFrequency *string          `json:"recurring_frequency"`
	NextDueDate        *time.Time       `json:"next_due_date"`
}

// UpdateSocietyFinance patches the row and re-validates recurrence on the
// merged result, so turning recurrence on without a frequency fails even
// when the frequency field is absent from the request.
func (h *Handler) UpdateSocietyFinance(w http.ResponseWriter, r *http.Request) {
	finance, err := h.societyFinances.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "expense not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load expense"})
		return
	}
	var patch societyFinancePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if patch.ExpenseType != nil {
		if !contains(expenseTypes, *patch.ExpenseType) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_EXPENSE_TYPE",
				Message: "expense_type must be one of: " + strings.Join(expenseTypes, ", "),
				Field:   "expense_type",
			})
			return
		}
		finance.ExpenseType = *patch.ExpenseType
	}
	if patch.Category != nil {
		finance.Category = *patch.Category
	}
	if patch.VendorName != nil {
		finance.VendorName = patch.VendorName
	}
	if patch.ExpenseDate != nil {
		finance.ExpenseDate = *patch.ExpenseDate
	}
	if patch.Amount != nil {
		if patch.Amount.LessThanOrEqual(decimal.Zero) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "VALIDATION_ERROR",
				Message: "amount must be greater than zero",
				Field:   "amount",
			})
			return
		}
		finance.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		finance.Currency = *patch.Currency
	}
	if patch.PaymentStatus != nil {
		if !contains(societyPaymentStatuses, *patch.PaymentStatus) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_PAYMENT_STATUS",
				Message: "payment_status must be one of: " + strings.Join(societyPaymentStatuses, ", "),
				Field:   "payment_status",
			})
			return
		}
		finance.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentDate != nil {
		finance.PaymentDate = patch.PaymentDate
	}
	if patch.PaymentMethod != nil {
		finance.PaymentMethod = patch.PaymentMethod
	}
	if patch.InvoiceNumber != nil {
		finance.InvoiceNumber = patch.InvoiceNumber
	}
	if patch.ReceiptNumber != nil {
		finance.ReceiptNumber = patch.ReceiptNumber
	}
	if patch.Description != nil {
		finance.Description = patch.Description
	}
	if patch.Recurring != nil {
		finance.Recurring = *patch.Recurring
	}
	if patch.RecurringFrequency != nil {
		finance.RecurringFrequency = patch.RecurringFrequency
	}
	if patch.NextDueDate != nil {
		finance.NextDueDate = patch.NextDueDate
	}
	if apiErr := validateRecurrence(finance); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, *apiErr)
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societyFinances.Update(r.Context(), tx, finance)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
		Kind:      "society_finance",
		SocietyID: finance.SocietyID,
		RecordID:  finance.ID,
		Action:    "updated",
		Amount:    finance.Amount.StringFixed(2),
		Category:  finance.Category,
	})
	updated, err := h.societyFinances.GetByID(r.Context(), finance.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, finance)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSocietyFinance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	finance, err := h.societyFinances.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "expense not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load expense"})
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societyFinances.Deactivate(r.Context(), tx, id)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
		Kind:      "society_finance",
		SocietyID: finance.SocietyID,
		RecordID:  id,
		Action:    "deleted",
		Amount:    finance.Amount.StringFixed(2),
		Category:  finance.Category,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSocietyLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "society not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load society"})
		return
	}
	limit, offset := parsePagination(r)
	filter := store.SocietyFinanceFilter{
		SocietyID:     id,
		ExpenseType:   r.URL.Query().Get("expense_type"),
		Category:      r.URL.Query().Get("category"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		StartDate:     parseDateParam(r, "start_date"),
		EndDate:       parseDateParam(r, "end_date"),
		IsActive:      activeFilter(r),
	}
	finances, err := h.societyFinances.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list expenses"})
		return
	}
	respondJSON(w, http.StatusOK, finances)
}

func (h *Handler) ListSocietyFinanceCategories(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "society not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load society"})
		return
	}
	categories, err := h.societyFinances.DistinctCategories(r.Context(), id)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list categories"})
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

type categorySummary struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Count    int    `json:"count"`
}

type societyFinanceSummary struct {
	SocietyID   string            `json:"society_id"`
	Categories  []categorySummary `json:"categories"`
	TotalAmount string            `json:"total_amount"`
	TotalCount  int               `json:"total_count"`
}

// SocietyFinanceSummary groups active expenses by category and totals them.
func (h *Handler) SocietyFinanceSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "society not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load society"})
		return
	}
	expenseType := r.URL.Query().Get("expense_type")
	if expenseType != "" && !contains(expenseTypes, expenseType) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "INVALID_EXPENSE_TYPE",
			Message: "expense_type must be one of: " + strings.Join(expenseTypes, ", "),
			Field:   "expense_type",
		})
		return
	}
	totals, err := h.societyFinances.SummarizeByCategory(r.Context(), id,
		parseDateParam(r, "start_date"), parseDateParam(r, "end_date"), expenseType)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to summarize expenses"})
		return
	}
	categories := make([]categorySummary, 0, len(totals))
	totalAmount := decimal.Zero
	totalCount := 0
	for _, total := range totals {
		categories = append(categories, categorySummary{
			Category: total.Category,
			Amount:   total.Amount.StringFixed(2),
			Count:    total.Count,
		})
		totalAmount = totalAmount.Add(total.Amount)
		totalCount += total.Count
	}
	respondJSON(w, http.StatusOK, societyFinanceSummary{
		SocietyID:   id,
		Categories:  categories,
		TotalAmount: totalAmount.StringFixed(2),
		TotalCount:  totalCount,
	})
}
