package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lib/pq"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// apiError is the structured error body used by the user and finance
// endpoints; older endpoint families respond with a plain error string.
type apiError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func respondAPIError(w http.ResponseWriter, status int, apiErr apiError) {
	respondJSON(w, status, apiErr)
}

func respondDatabaseError(w http.ResponseWriter) {
	respondAPIError(w, http.StatusBadRequest, apiError{
		Code:    "DATABASE_ERROR",
		Message: "database error: the write could not be committed",
	})
}

func isUniqueViolation(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return false
}

// parsePagination reads skip/limit query parameters, defaulting to 0/100.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 100
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func parseDateParam(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseBoolParam(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// activeFilter returns the is_active list filter for finance entities, which
// defaults to true unless the caller says otherwise.
func activeFilter(r *http.Request) *bool {
	if value := parseBoolParam(r, "is_active"); value != nil {
		return value
	}
	active := true
	return &active
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
