package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"divine-deck/internal/models"
	"divine-deck/internal/services"
)

// LibraryHandler handles HTTP requests for decks, sections and slides
type LibraryHandler struct {
	library   *services.LibraryStore
	presenter *services.Presenter
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library *services.LibraryStore, presenter *services.Presenter) *LibraryHandler {
	return &LibraryHandler{
		library:   library,
		presenter: presenter,
	}
}

// UpdateSlideRequest carries the fields of an edit. Omitted fields keep
// their current value. Contents are applied after the layout change.
type UpdateSlideRequest struct {
	Title      *string           `json:"title,omitempty"`
	LayoutType models.LayoutType `json:"layoutType,omitempty"`
	Contents   []string          `json:"contents,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Hidden     *bool             `json:"hidden,omitempty"`
}

// TitleRequest names a section
type TitleRequest struct {
	Title string `json:"title"`
}

// ListDecks returns every deck; hidden slides are included with ?hidden=1
// GET /api/decks
func (h *LibraryHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("hidden") == "1"
	writeJSON(w, http.StatusOK, h.library.Decks(includeHidden))
}

// ListVerses returns the verse collection
// GET /api/verses
func (h *LibraryHandler) ListVerses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Verses())
}

// Search matches section titles, slides and verses
// GET /api/search?q=
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.library.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []services.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// UpdateSlide commits an edit to the library and every queued copy
// PUT /api/slides/{slideId}
func (h *LibraryHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	slideID := mux.Vars(r)["slideId"]

	var req UpdateSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LayoutType != "" && !req.LayoutType.Valid() {
		http.Error(w, "unknown layoutType", http.StatusBadRequest)
		return
	}

	base, err := h.currentSlide(slideID)
	if err != nil {
		writeError(w, err)
		return
	}

	draft := models.NewDraft(base)
	if req.LayoutType != "" {
		draft.SetLayout(req.LayoutType)
	}
	for i, text := range req.Contents {
		draft.SetContent(i, text)
	}
	if req.Title != nil {
		draft.SetTitle(*req.Title)
	}
	if req.Notes != nil {
		draft.SetNotes(*req.Notes)
	}
	if req.Hidden != nil {
		draft.SetHidden(*req.Hidden)
	}

	committed, err := h.presenter.UpdateSlide(draft.Slide())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, committed)
}

// currentSlide finds the slide being edited, falling back to ad hoc queued slides
func (h *LibraryHandler) currentSlide(slideID string) (models.Slide, error) {
	slide, err := h.library.FindSlide(slideID)
	if !errors.Is(err, services.ErrSlideNotFound) {
		return slide, err
	}
	for _, entry := range h.presenter.State().Queue {
		if entry.ID == slideID {
			return entry.Slide, nil
		}
	}
	return models.Slide{}, err
}

// AddSection appends a section to a deck
// POST /api/decks/{deckId}/sections
func (h *LibraryHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	section, err := h.library.AddSection(mux.Vars(r)["deckId"], req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

// RenameSection changes a section title
// PUT /api/sections/{sectionId}
func (h *LibraryHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	sectionID := mux.Vars(r)["sectionId"]
	if err := h.library.RenameSection(sectionID, req.Title); err != nil {
		writeError(w, err)
		return
	}

	section, err := h.library.FindSection(sectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// AddSlide appends a slide to a section
// POST /api/sections/{sectionId}/slides
func (h *LibraryHandler) AddSlide(w http.ResponseWriter, r *http.Request) {
	var slide models.Slide
	if !decodeJSON(w, r, &slide) {
		return
	}
	if slide.LayoutType != "" && !slide.LayoutType.Valid() {
		http.Error(w, "unknown layoutType", http.StatusBadRequest)
		return
	}

	added, err := h.library.AddSlide(mux.Vars(r)["sectionId"], slide)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}
