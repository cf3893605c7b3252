package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"divine-deck/internal/models"
)

// WebSocketOptions tunes display connections
type WebSocketOptions struct {
	WriteWait    time.Duration
	PongWait     time.Duration
	PingPeriod   time.Duration
	RequestRate  float64
	RequestBurst int
	MaxMessage   int64
}

// DefaultWebSocketOptions returns the settings used when none are configured
func DefaultWebSocketOptions() WebSocketOptions {
	return WebSocketOptions{
		WriteWait:    10 * time.Second,
		PongWait:     60 * time.Second,
		PingPeriod:   54 * time.Second,
		RequestRate:  5,
		RequestBurst: 10,
		MaxMessage:   4096,
	}
}

// WebSocketService attaches remote displays to the sync channel. Each
// connection gets its own port for exactly as long as the socket is open.
type WebSocketService struct {
	bus  *Bus
	opts WebSocketOptions

	mu      sync.Mutex
	clients map[*displayClient]struct{}
}

// NewWebSocketService creates a websocket service on bus
func NewWebSocketService(bus *Bus, opts WebSocketOptions) *WebSocketService {
	def := DefaultWebSocketOptions()
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.PongWait <= 0 {
		opts.PongWait = def.PongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = opts.PongWait * 9 / 10
	}
	if opts.RequestRate <= 0 {
		opts.RequestRate = def.RequestRate
	}
	if opts.RequestBurst <= 0 {
		opts.RequestBurst = def.RequestBurst
	}
	if opts.MaxMessage <= 0 {
		opts.MaxMessage = def.MaxMessage
	}
	return &WebSocketService{
		bus:     bus,
		opts:    opts,
		clients: make(map[*displayClient]struct{}),
	}
}

// Displays returns the number of connected displays
func (ws *WebSocketService) Displays() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.clients)
}

// Serve runs a display connection until it closes
func (ws *WebSocketService) Serve(conn *websocket.Conn) {
	c := &displayClient{
		conn:    conn,
		port:    ws.bus.Open(),
		send:    make(chan models.Message, 16),
		limiter: rate.NewLimiter(rate.Limit(ws.opts.RequestRate), ws.opts.RequestBurst),
		opts:    ws.opts,
	}
	c.port.Subscribe(c.forward)

	ws.mu.Lock()
	ws.clients[c] = struct{}{}
	ws.mu.Unlock()
	log.Printf("Display connected: %s", conn.RemoteAddr())

	go c.writePump()
	c.readPump()

	c.port.Close()
	ws.mu.Lock()
	delete(ws.clients, c)
	ws.mu.Unlock()
	log.Printf("Display disconnected: %s", conn.RemoteAddr())
}

// Close disconnects every display
func (ws *WebSocketService) Close() {
	ws.mu.Lock()
	clients := make([]*displayClient, 0, len(ws.clients))
	for c := range ws.clients {
		clients = append(clients, c)
	}
	ws.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

type displayClient struct {
	conn    *websocket.Conn
	port    *Port
	send    chan models.Message
	limiter *rate.Limiter
	opts    WebSocketOptions
}

// forward queues channel traffic for the socket. Displays only care about
// SLIDE_CHANGE; a slow socket loses messages rather than stalling the port.
func (c *displayClient) forward(msg models.Message) {
	if msg.Type != models.MessageSlideChange {
		return
	}
	select {
	case <-c.port.Done():
	case c.send <- msg:
	default:
		log.Printf("Display %s is slow, dropped %s", c.conn.RemoteAddr(), msg.Type)
	}
}

func (c *displayClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(c.opts.MaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Display read error: %v", err)
			}
			return
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Display sent invalid JSON: %v", err)
			continue
		}
		if msg.Type != models.MessageRequestSlide {
			continue
		}
		if !c.limiter.Allow() {
			continue
		}
		c.port.Publish(msg)
	}
}

func (c *displayClient) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.port.Done():
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
