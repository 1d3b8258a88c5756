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
	"go.uber.org/zap"
)

func (h *Handler) ListResidents(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := store.ResidentFilter{
		SocietyID:  r.URL.Query().Get("society_id"),
		Name:       r.URL.Query().Get("name"),
		UnitNumber: r.URL.Query().Get("unit_number"),
	}
	residents, err := h.residents.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list residents")
		return
	}
	respondJSON(w, http.StatusOK, residents)
}

func (h *Handler) GetResident(w http.ResponseWriter, r *http.Request) {
	resident, err := h.residents.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "resident not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load resident")
		return
	}
	respondJSON(w, http.StatusOK, resident)
}

type residentRequest struct {
	SocietyID         string     `json:"society_id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             *string    `json:"email"`
	Phone             *string    `json:"phone"`
	UnitNumber        string     `json:"unit_number"`
	IsOwner           bool       `json:"is_owner"`
	IsCommitteeMember bool       `json:"is_committee_member"`
	CommitteeRole     *string    `json:"committee_role"`
	MoveInDate        *time.Time `json:"move_in_date"`
	MoveOutDate       *time.Time `json:"move_out_date"`
}

func (h *Handler) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req residentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.SocietyID == "" || req.FirstName == "" || req.LastName == "" || req.UnitNumber == "" {
		respondError(w, http.StatusBadRequest, "society_id, first_name, last_name and unit_number are required")
		return
	}
	if _, err := h.societies.GetByID(r.Context(), req.SocietyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, "society not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load society")
		return
	}
	// Shared units are legal; log them so operators can spot typos.
	if count, err := h.residents.CountByUnit(r.Context(), req.SocietyID, req.UnitNumber); err == nil && count > 0 {
		h.logger.Warn("unit already occupied",
			zap.String("society_id", req.SocietyID),
			zap.String("unit_number", req.UnitNumber),
			zap.Int("existing_residents", count))
	}
	resident := models.Resident{
		ID:                uuid.NewString(),
		SocietyID:         req.SocietyID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		UnitNumber:        req.UnitNumber,
		IsOwner:           req.IsOwner,
		IsCommitteeMember: req.IsCommitteeMember,
		CommitteeRole:     req.CommitteeRole,
		MoveInDate:        req.MoveInDate,
		MoveOutDate:       req.MoveOutDate,
		IsActive:          true,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residents.Create(r.Context(), tx, resident)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create resident")
		return
	}
	created, err := h.residents.GetByID(r.Context(), resident.ID)
	if err != nil {
		respondJSON(w, http.StatusCreated, resident)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type residentPatch struct {
	SocietyID         *string    `json:"society_id"`
	FirstName         *string    `json:"first_name"`
	LastName          *string    `json:"last_name"`
	Email             *string    `json:"email"`
	Phone             *string    `json:"phone"`
	UnitNumber        *string    `json:"unit_number"`
	IsOwner           *bool      `json:"is_owner"`
	IsCommitteeMember *bool      `json:"is_committee_member"`
	CommitteeRole     *string    `json:"committee_role"`
	MoveInDate        *time.Time `json:"move_in_date"`
	MoveOutDate       *time.Time `json:"move_out_date"`
	IsActive          *bool      `json:"is_active"`
}

func (h *Handler) UpdateResident(w http.ResponseWriter, r *http.Request) {
	resident, err := h.residents.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "resident not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load resident")
		return
	}
	var patch residentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	origSocietyID, origUnitNumber := resident.SocietyID, resident.UnitNumber
	if patch.SocietyID != nil && *patch.SocietyID != resident.SocietyID {
		if _, err := h.societies.GetByID(r.Context(), *patch.SocietyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusBadRequest, "society not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to load society")
			return
		}
		resident.SocietyID = *patch.SocietyID
	}
	if patch.FirstName != nil {
		resident.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		resident.LastName = *patch.LastName
	}
	if patch.Email != nil {
		resident.Email = patch.Email
	}
	if patch.Phone != nil {
		resident.Phone = patch.Phone
	}
	if patch.UnitNumber != nil {
		resident.UnitNumber = *patch.UnitNumber
	}
	if patch.IsOwner != nil {
		resident.IsOwner = *patch.IsOwner
	}
	if patch.IsCommitteeMember != nil {
		resident.IsCommitteeMember = *patch.IsCommitteeMember
	}
	if patch.CommitteeRole != nil {
		resident.CommitteeRole = patch.CommitteeRole
	}
	if patch.MoveInDate != nil {
		resident.MoveInDate = patch.MoveInDate
	}
	if patch.MoveOutDate != nil {
		resident.MoveOutDate = patch.MoveOutDate
	}
	if patch.IsActive != nil {
		resident.IsActive = *patch.IsActive
	}
	if resident.SocietyID != origSocietyID || resident.UnitNumber != origUnitNumber {
		if count, err := h.residents.CountByUnit(r.Context(), resident.SocietyID, resident.UnitNumber); err == nil && count > 0 {
			h.logger.Warn("unit already occupied",
				zap.String("society_id", resident.SocietyID),
				zap.String("unit_number", resident.UnitNumber),
				zap.Int("existing_residents", count))
		}
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residents.Update(r.Context(), tx, resident)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update resident")
		return
	}
	updated, err := h.residents.GetByID(r.Context(), resident.ID)
	if err != nil {
		respondJSON(w, http.StatusOK, resident)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteResident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.residents.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "resident not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load resident")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.residents.Delete(r.Context(), tx, id)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete resident")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
