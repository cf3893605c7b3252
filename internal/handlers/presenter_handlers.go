package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"divine-deck/internal/models"
	"divine-deck/internal/services"
)

// PresenterHandler handles queue, cursor and timer requests
type PresenterHandler struct {
	presenter *services.Presenter
}

// NewPresenterHandler creates a new presenter handler
func NewPresenterHandler(presenter *services.Presenter) *PresenterHandler {
	return &PresenterHandler{
		presenter: presenter,
	}
}

// EnqueueRequest adds one library slide, a whole section, or an ad hoc slide
type EnqueueRequest struct {
	SlideID   string        `json:"slideId,omitempty"`
	SectionID string        `json:"sectionId,omitempty"`
	Slide     *models.Slide `json:"slide,omitempty"`
}

// EnqueueResponse lists the queueIds that were created
type EnqueueResponse struct {
	QueueIDs []string `json:"queueIds"`
}

// BulkRemoveRequest lists entries to delete
type BulkRemoveRequest struct {
	QueueIDs []string `json:"queueIds"`
}

// BulkRemoveResponse reports how many entries were removed
type BulkRemoveResponse struct {
	Removed int `json:"removed"`
}

// MoveRequest swaps the entry at Index with its neighbor
type MoveRequest struct {
	Index     int                `json:"index"`
	Direction services.Direction `json:"direction"`
}

// PositionRequest moves an entry to Position
type PositionRequest struct {
	Position int `json:"position"`
}

// CursorRequest selects the entry at Index
type CursorRequest struct {
	Index int `json:"index"`
}

// GetState returns queue, cursor, preview and timer
// GET /api/state
func (h *PresenterHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// Enqueue appends to the queue
// POST /api/queue
func (h *PresenterHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var ids []string
	switch {
	case req.SlideID != "":
		id, err := h.presenter.EnqueueSlide(req.SlideID)
		if err != nil {
			writeError(w, err)
			return
		}
		ids = []string{id}
	case req.SectionID != "":
		var err error
		ids, err = h.presenter.EnqueueSection(req.SectionID)
		if err != nil {
			writeError(w, err)
			return
		}
	case req.Slide != nil:
		ids = []string{h.presenter.Enqueue(*req.Slide)}
	default:
		http.Error(w, "slideId, sectionId or slide is required", http.StatusBadRequest)
		return
	}

	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusCreated, EnqueueResponse{QueueIDs: ids})
}

// RemoveEntry deletes one queue entry. Unknown ids are not an error.
// DELETE /api/queue/{queueId}
func (h *PresenterHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	h.presenter.Remove(mux.Vars(r)["queueId"])
	w.WriteHeader(http.StatusNoContent)
}

// BulkRemove deletes several queue entries
// POST /api/queue/bulk-delete
func (h *PresenterHandler) BulkRemove(w http.ResponseWriter, r *http.Request) {
	var req BulkRemoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, BulkRemoveResponse{Removed: h.presenter.BulkRemove(req.QueueIDs)})
}

// MoveAdjacent swaps an entry with its neighbor
// POST /api/queue/move
func (h *PresenterHandler) MoveAdjacent(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Direction != services.DirectionUp && req.Direction != services.DirectionDown {
		http.Error(w, "direction must be up or down", http.StatusBadRequest)
		return
	}
	h.presenter.MoveAdjacent(req.Index, req.Direction)
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// MoveTo moves an entry to a position
// PUT /api/queue/{queueId}/position
func (h *PresenterHandler) MoveTo(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.presenter.MoveTo(mux.Vars(r)["queueId"], req.Position)
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// SetCursor selects an entry by index
// PUT /api/cursor
func (h *PresenterHandler) SetCursor(w http.ResponseWriter, r *http.Request) {
	var req CursorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.presenter.SetCursor(req.Index)
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// Next advances the cursor
// POST /api/cursor/next
func (h *PresenterHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.presenter.Next()
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// Prev steps the cursor back
// POST /api/cursor/prev
func (h *PresenterHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.presenter.Prev()
	writeJSON(w, http.StatusOK, h.presenter.State())
}

// Timer starts, pauses or resets the service timer
// POST /api/timer/{action}
func (h *PresenterHandler) Timer(w http.ResponseWriter, r *http.Request) {
	timer := h.presenter.Timer()
	switch mux.Vars(r)["action"] {
	case "start":
		timer.Start()
	case "pause":
		timer.Pause()
	case "reset":
		timer.Reset()
	default:
		http.Error(w, "unknown timer action", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.State())
}
