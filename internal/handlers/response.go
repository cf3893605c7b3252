package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"divine-deck/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors to status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSlideNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrDeckNotFound),
		errors.Is(err, services.ErrSetupNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("Request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
