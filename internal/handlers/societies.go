package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"societies/internal/models"
	"societies/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListSocieties(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	societies, err := h.societies.List(r.Context(), r.URL.Query().Get("name"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list societies")
		return
	}
	respondJSON(w, http.StatusOK, societies)
}

func (h *Handler) GetSociety(w http.ResponseWriter, r *http.Request) {
	society, err := h.societies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	respondJSON(w, http.StatusOK, society)
}

type societyRequest struct {
	Name               string     `json:"name"`
	Address            string     `json:"address"`
	City               string     `json:"city"`
	State              string     `json:"state"`
	Zipcode            string     `json:"zipcode"`
	Country            string     `json:"country"`
	ContactEmail       *string    `json:"contact_email"`
	ContactPhone       *string    `json:"contact_phone"`
	RegistrationNumber *string    `json:"registration_number"`
	RegistrationDate   *time.Time `json:"registration_date"`
	TotalUnits         int        `json:"total_units"`
}

func (h *Handler) CreateSociety(w http.ResponseWriter, r *http.Request) {
	var req societyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Address == "" || req.City == "" {
		respondError(w, http.StatusBadRequest, "name, address and city are required")
		return
	}
	if req.TotalUnits < 0 {
		respondError(w, http.StatusBadRequest, "total_units must not be negative")
		return
	}
	society := models.Society{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		Zipcode:            req.Zipcode,
		Country:            req.Country,
		ContactEmail:       req.ContactEmail,
		ContactPhone:       req.ContactPhone,
		RegistrationNumber: req.RegistrationNumber,
		RegistrationDate:   req.RegistrationDate,
		TotalUnits:         req.TotalUnits,
		IsActive:           true,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societies.Create(r.Context(), tx, society)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create society")
		return
	}
	created, err := h.societies.GetByID(r.Context(), society.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, society)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type societyPatch struct {
	Name               *string    `json:"name"`
	Address            *string    `json:"address"`
	City               *string    `json:"city"`
	State              *string    `json:"state"`
	Zipcode            *string    `json:"zipcode"`
	Country            *string    `json:"country"`
	ContactEmail       *string    `json:"contact_email"`
	ContactPhone       *string    `json:"contact_phone"`
	RegistrationNumber *string    `json:"registration_number"`
	RegistrationDate   *time.Time `json:"registration_date"`
	TotalUnits         *int       `json:"total_units"`
	IsActive           *bool      `json:"is_active"`
}

func (h *Handler) UpdateSociety(w http.ResponseWriter, r *http.Request) {
	society, err := h.societies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	var patch societyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if patch.Name != nil {
		society.Name = *patch.Name
	}
	if patch.Address != nil {
		society.Address = *patch.Address
	}
	if patch.City != nil {
		society.City = *patch.City
	}
	if patch.State != nil {
		society.State = *patch.State
	}
	if patch.Zipcode != nil {
		society.Zipcode = *patch.Zipcode
	}
	if patch.Country != nil {
		society.Country = *patch.Country
	}
	if patch.ContactEmail != nil {
		society.ContactEmail = patch.ContactEmail
	}
	if patch.ContactPhone != nil {
		society.ContactPhone = patch.ContactPhone
	}
	if patch.RegistrationNumber != nil {
		society.RegistrationNumber = patch.RegistrationNumber
	}
	if patch.RegistrationDate != nil {
		society.RegistrationDate = patch.RegistrationDate
	}
	if patch.TotalUnits != nil {
		if *patch.TotalUnits < 0 {
			respondError(w, http.StatusBadRequest, "total_units must not be negative")
			return
		}
		society.TotalUnits = *patch.TotalUnits
	}
	if patch.IsActive != nil {
		society.IsActive = *patch.IsActive
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societies.Update(r.Context(), tx, society)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update society")
		return
	}
	updated, err := h.societies.GetByID(r.Context(), society.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, society)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSociety(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.societies.Delete(r.Context(), tx, id)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete society")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSocietyResidents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.societies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	limit, offset := parsePagination(r)
	residents, err := h.residents.List(r.Context(), store.ResidentFilter{SocietyID: id}, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list residents")
		return
	}
	respondJSON(w, http.StatusOK, residents)
}
