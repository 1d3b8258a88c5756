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

var residentTransactionTypes = []string{"maintenance", "penalty", "special_charge", "payment", "refund"}

var residentPaymentStatuses = []string{"pending", "paid", "overdue"}

func (h *Handler) ListResidentFinances(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.ResidentFinanceFilter{
		ResidentID:      r.URL.Query().Get("resident_id"),
		TransactionType: r.URL.Query().Get("transaction_type"),
		PaymentStatus:   r.URL.Query().Get("payment_status"),
		StartDate:       parseDateParam(r, "start_date"),
		EndDate:         parseDateParam(r, "end_date"),
		IsActive:        activeFilter(r),
	}
	finances, err := h.residentFinances.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list finance records"})
		return
	}
	respondJSON(w, http.StatusOK, finances)
}

func (h *Handler) GetResidentFinance(w http.ResponseWriter, r *http.Request) {
	finance, err := h.residentFinances.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "finance record not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load finance record"})
		return
	}
	respondJSON(w, http.StatusOK, finance)
}

type residentFinanceRequest struct {
	ResidentID      string          `json:"resident_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	DueDate         *time.Time      `json:"due_date"`
	PaymentDate     *time.Time      `json:"payment_date"`
	PaymentMethod   *string         `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	Description     *string         `json:"description"`
	InvoiceNumber   *string         `json:"invoice_number"`
	ReceiptNumber   *string         `json:"receipt_number"`
}

func (h *Handler) CreateResidentFinance(w http.ResponseWriter, r *http.Request) {
	var req residentFinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if req.ResidentID == "" || req.TransactionType == "" {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "VALIDATION_ERROR",
			Message: "resident_id and transaction_type are required",
		})
		return
	}
	if !contains(residentTransactionTypes, req.TransactionType) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "INVALID_TRANSACTION_TYPE",
			Message: "transaction_type must be one of: " + strings.Join(residentTransactionTypes, ", "),
			Field:   "transaction_type",
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
	if !contains(residentPaymentStatuses, req.PaymentStatus) {
		respondAPIError(w, http.StatusBadRequest, apiError{
			Code:    "INVALID_PAYMENT_STATUS",
			Message: "payment_status must be one of: " + strings.Join(residentPaymentStatuses, ", "),
			Field:   "payment_status",
		})
		return
	}
	resident, err := h.residents.GetByID(r.Context(), req.ResidentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_RESIDENT",
				Message: "resident does not exist",
				Field:   "resident_id",
			})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to check resident"})
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	finance := models.ResidentFinance{
		ID:              uuid.NewString(),
		ResidentID:      req.ResidentID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Currency:        req.Currency,
		DueDate:         req.DueDate,
		PaymentDate:     req.PaymentDate,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentStatus,
		Description:     req.Description,
		InvoiceNumber:   req.InvoiceNumber,
		ReceiptNumber:   req.ReceiptNumber,
		IsActive:        true,
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residentFinances.Create(r.Context(), tx, finance)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
		Kind:      "resident_finance",
		SocietyID: resident.SocietyID,
		RecordID:  finance.ID,
		Action:    "created",
		Amount:    finance.Amount.StringFixed(2),
	})
	created, err := h.residentFinances.GetByID(r.Context(), finance.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, finance)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type residentFinancePatch struct {
	TransactionType *string          `json:"transaction_type"`
	Amount          *decimal.Decimal `json:"amount"`
	Currency        *string          `json:"currency"`
	DueDate         *time.Time       `json:"due_date"`
	PaymentDate     *time.Time       `json:"payment_date"`
	PaymentMethod   *string          `json:"payment_method"`
	PaymentStatus   *string          `json:"payment_status"`
	Description     *string          `json:"description"`
	InvoiceNumber   *string          `json:"invoice_number"`
	ReceiptNumber   *string          `json:"receipt_number"`
}

func (h *Handler) UpdateResidentFinance(w http.ResponseWriter, r *http.Request) {
	finance, err := h.residentFinances.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "finance record not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load finance record"})
		return
	}
	var patch residentFinancePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondAPIError(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: "invalid payload"})
		return
	}
	if patch.TransactionType != nil {
		if !contains(residentTransactionTypes, *patch.TransactionType) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_TRANSACTION_TYPE",
				Message: "transaction_type must be one of: " + strings.Join(residentTransactionTypes, ", "),
				Field:   "transaction_type",
			})
			return
		}
		finance.TransactionType = *patch.TransactionType
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
	if patch.DueDate != nil {
		finance.DueDate = patch.DueDate
	}
	if patch.PaymentDate != nil {
		finance.PaymentDate = patch.PaymentDate
	}
	if patch.PaymentMethod != nil {
		finance.PaymentMethod = patch.PaymentMethod
	}
	if patch.PaymentStatus != nil {
		if !contains(residentPaymentStatuses, *patch.PaymentStatus) {
			respondAPIError(w, http.StatusBadRequest, apiError{
				Code:    "INVALID_PAYMENT_STATUS",
				Message: "payment_status must be one of: " + strings.Join(residentPaymentStatuses, ", "),
				Field:   "payment_status",
			})
			return
		}
		finance.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Description != nil {
		finance.Description = patch.Description
	}
	if patch.InvoiceNumber != nil {
		finance.InvoiceNumber = patch.InvoiceNumber
	}
	if patch.ReceiptNumber != nil {
		finance.ReceiptNumber = patch.ReceiptNumber
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residentFinances.Update(r.Context(), tx, finance)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	if resident, err := h.residents.GetByID(r.Context(), finance.ResidentID); err == nil {
		h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
			Kind:      "resident_finance",
			SocietyID: resident.SocietyID,
			RecordID:  finance.ID,
			Action:    "updated",
			Amount:    finance.Amount.StringFixed(2),
		})
	}
	updated, err := h.residentFinances.GetByID(r.Context(), finance.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, finance)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteResidentFinance deactivates the record; ledger rows stay queryable
// by ID for receipts and audits.
func (h *Handler) DeleteResidentFinance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	finance, err := h.residentFinances.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "finance record not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load finance record"})
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residentFinances.Deactivate(r.Context(), tx, id)
	})
	if err != nil {
		respondDatabaseError(w)
		return
	}
	if resident, err := h.residents.GetByID(r.Context(), finance.ResidentID); err == nil {
		h.hub.BroadcastFinanceEvent(websocket.FinanceEvent{
			Kind:      "resident_finance",
			SocietyID: resident.SocietyID,
			RecordID:  id,
			Action:    "deleted",
			Amount:    finance.Amount.StringFixed(2),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListResidentLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.residents.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "resident not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load resident"})
		return
	}
	limit, offset := parsePagination(r)
	filter := store.ResidentFinanceFilter{
		ResidentID:      id,
		TransactionType: r.URL.Query().Get("transaction_type"),
		PaymentStatus:   r.URL.Query().Get("payment_status"),
		StartDate:       parseDateParam(r, "start_date"),
		EndDate:         parseDateParam(r, "end_date"),
		IsActive:        activeFilter(r),
	}
	finances, err := h.residentFinances.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list finance records"})
		return
	}
	respondJSON(w, http.StatusOK, finances)
}

type summaryTransaction struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Amount string     `json:"amount"`
	Date   *time.Time `json:"date"`
	Type   string     `json:"type"`
	Status string     `json:"status,omitempty"`
}

type residentFinanceSummary struct {
	ResidentID         string               `json:"resident_id"`
	Dues               string               `json:"dues"`
	Payments           string               `json:"payments"`
	Balance            string               `json:"balance"`
	RecentTransactions []summaryTransaction `json:"recent_transactions"`
}

// ResidentFinanceSummary reports dues, payments and outstanding balance for
// the resident plus the five most recent ledger entries.
func (h *Handler) ResidentFinanceSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.residents.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondAPIError(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "resident not found"})
			return
		}
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to load resident"})
		return
	}
	start := parseDateParam(r, "start_date")
	end := parseDateParam(r, "end_date")
	dues, err := h.residentFinances.SumByTypes(r.Context(), id, store.DueTransactionTypes, start, end)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to total dues"})
		return
	}
	payments, err := h.residentFinances.SumByTypes(r.Context(), id, store.PaymentTransactionTypes, start, end)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to total payments"})
		return
	}
	recent, err := h.residentFinances.ListRecent(r.Context(), id, start, end, 5)
	if err != nil {
		respondAPIError(w, http.StatusInternalServerError, apiError{Code: "DATABASE_ERROR", Message: "failed to list recent transactions"})
		return
	}
	transactions := make([]summaryTransaction, 0, len(recent))
	for _, finance := range recent {
		title := humanize(finance.TransactionType)
		if finance.Description != nil && *finance.Description != "" {
			title = *finance.Description
		}
		date := finance.DueDate
		if date == nil {
			created := finance.CreatedAt
			date = &created
		}
		entryType := "due"
		status := finance.PaymentStatus
		if contains(store.PaymentTransactionTypes, finance.TransactionType) {
			entryType = "payment"
			status = ""
		}
		transactions = append(transactions, summaryTransaction{
			ID:     finance.ID,
			Title:  title,
			Amount: finance.Amount.StringFixed(2),
			Date:   date,
			Type:   entryType,
			Status: status,
		})
	}
	respondJSON(w, http.StatusOK, residentFinanceSummary{
		ResidentID:         id,
		Dues:               dues.StringFixed(2),
		Payments:           payments.StringFixed(2),
		Balance:            dues.Sub(payments).StringFixed(2),
		RecentTransactions: transactions,
	})
}

// humanize turns an enum value like "special_charge" into "Special Charge".
func humanize(value string) string {
	words := strings.Split(strings.ReplaceAll(value, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
