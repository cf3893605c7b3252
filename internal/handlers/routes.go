package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes wires every handler onto a router
func SetupRoutes(presenter *PresenterHandler, library *LibraryHandler, setups *SetupHandler, ws *WebSocketHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws/display", ws.HandleDisplay)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api.HandleFunc("/state", presenter.GetState).Methods(http.MethodGet)
	api.HandleFunc("/queue", presenter.Enqueue).Methods(http.MethodPost)
	api.HandleFunc("/queue/bulk-delete", presenter.BulkRemove).Methods(http.MethodPost)
	api.HandleFunc("/queue/move", presenter.MoveAdjacent).Methods(http.MethodPost)
	api.HandleFunc("/queue/{queueId}", presenter.RemoveEntry).Methods(http.MethodDelete)
	api.HandleFunc("/queue/{queueId}/position", presenter.MoveTo).Methods(http.MethodPut)
	api.HandleFunc("/cursor", presenter.SetCursor).Methods(http.MethodPut)
	api.HandleFunc("/cursor/next", presenter.Next).Methods(http.MethodPost)
	api.HandleFunc("/cursor/prev", presenter.Prev).Methods(http.MethodPost)
	api.HandleFunc("/timer/{action}", presenter.Timer).Methods(http.MethodPost)

	api.HandleFunc("/decks", library.ListDecks).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckId}/sections", library.AddSection).Methods(http.MethodPost)
	api.HandleFunc("/sections/{sectionId}", library.RenameSection).Methods(http.MethodPut)
	api.HandleFunc("/sections/{sectionId}/slides", library.AddSlide).Methods(http.MethodPost)
	api.HandleFunc("/slides/{slideId}", library.UpdateSlide).Methods(http.MethodPut)
	api.HandleFunc("/verses", library.ListVerses).Methods(http.MethodGet)
	api.HandleFunc("/search", library.Search).Methods(http.MethodGet)

	api.HandleFunc("/setups", setups.ListSetups).Methods(http.MethodGet)
	api.HandleFunc("/setups", setups.SaveSetup).Methods(http.MethodPost)
	api.HandleFunc("/setups/{id}", setups.GetSetup).Methods(http.MethodGet)
	api.HandleFunc("/setups/{id}", setups.DeleteSetup).Methods(http.MethodDelete)
	api.HandleFunc("/setups/{id}/load", setups.LoadSetup).Methods(http.MethodPost)

	return r
}
