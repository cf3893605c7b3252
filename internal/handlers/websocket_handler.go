package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"divine-deck/internal/services"
)

// WebSocketHandler upgrades display connections
type WebSocketHandler struct {
	wsService *services.WebSocketService
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(wsService *services.WebSocketService) *WebSocketHandler {
	return &WebSocketHandler{
		wsService: wsService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// displays are projector browsers on the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleDisplay serves one display for the lifetime of its socket
// GET /ws/display
func (h *WebSocketHandler) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	h.wsService.Serve(conn)
}
