package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"divine-deck/internal/services"
)

// SetupHandler handles HTTP requests for saved mass setups
type SetupHandler struct {
	presenter *services.Presenter
	setups    *services.SetupStore
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(presenter *services.Presenter, setups *services.SetupStore) *SetupHandler {
	return &SetupHandler{
		presenter: presenter,
		setups:    setups,
	}
}

// SaveSetupRequest names the current queue snapshot
type SaveSetupRequest struct {
	Name string `json:"name"`
}

// ListSetups returns every saved setup, oldest first
// GET /api/setups
func (h *SetupHandler) ListSetups(w http.ResponseWriter, r *http.Request) {
	setups, err := h.setups.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setups)
}

// GetSetup returns one setup
// GET /api/setups/{id}
func (h *SetupHandler) GetSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.setups.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

// SaveSetup stores the current queue under a name
// POST /api/setups
func (h *SetupHandler) SaveSetup(w http.ResponseWriter, r *http.Request) {
	var req SaveSetupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	setup, err := h.presenter.SaveSetup(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, setup)
}

// LoadSetup replaces the live queue with a saved setup
// POST /api/setups/{id}/load
func (h *SetupHandler) LoadSetup(w http.ResponseWriter, r *http.Request) {
	if _, err := h.presenter.LoadSetup(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// DeleteSetup removes a saved setup
// DELETE /api/setups/{id}
func (h *SetupHandler) DeleteSetup(w http.ResponseWriter, r *http.Request) {
	if err := h.setups.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
