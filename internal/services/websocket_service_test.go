package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divine-deck/internal/models"
)

func newWebSocketServer(t *testing.T, ws *WebSocketService) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.Serve(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialDisplay(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketService_ForwardsSlideChange(t *testing.T) {
	bus := NewBus("test", 16)
	defer bus.Close()
	ws := NewWebSocketService(bus, WebSocketOptions{})
	conn := dialDisplay(t, newWebSocketServer(t, ws))

	require.Eventually(t, func() bool { return ws.Displays() == 1 }, time.Second, 5*time.Millisecond)

	presenter := bus.Open()
	defer presenter.Close()
	entry := &models.QueueEntry{Slide: slide("A"), QueueID: "q1"}
	presenter.Publish(models.RequestSlide())
	presenter.Publish(models.SlideChange(entry))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg models.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.MessageSlideChange, msg.Type, "REQUEST_SLIDE is not forwarded to displays")
	require.NotNil(t, msg.Slide)
	assert.Equal(t, "q1", msg.Slide.QueueID)
	assert.Equal(t, "A", msg.Slide.ID)
}

func TestWebSocketService_RequestSlideReachesChannel(t *testing.T) {
	bus := NewBus("test", 16)
	defer bus.Close()
	ws := NewWebSocketService(bus, WebSocketOptions{})
	conn := dialDisplay(t, newWebSocketServer(t, ws))

	presenter := bus.Open()
	defer presenter.Close()
	seen := listen(presenter)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(models.SlideChange(nil)))
	require.NoError(t, conn.WriteJSON(models.RequestSlide()))

	require.Eventually(t, func() bool { return seen.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.MessageRequestSlide, seen.last().Type)
}

func TestWebSocketService_RequestsAreRateLimited(t *testing.T) {
	bus := NewBus("test", 64)
	defer bus.Close()
	ws := NewWebSocketService(bus, WebSocketOptions{RequestRate: 0.001, RequestBurst: 2})
	conn := dialDisplay(t, newWebSocketServer(t, ws))

	presenter := bus.Open()
	defer presenter.Close()
	seen := listen(presenter)

	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteJSON(models.RequestSlide()))
	}

	require.Eventually(t, func() bool { return seen.len() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, seen.len())
}

func TestWebSocketService_DisconnectClosesPort(t *testing.T) {
	bus := NewBus("test", 16)
	defer bus.Close()
	ws := NewWebSocketService(bus, WebSocketOptions{})
	conn := dialDisplay(t, newWebSocketServer(t, ws))

	require.Eventually(t, func() bool { return bus.Ports() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return bus.Ports() == 0 && ws.Displays() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketService_CloseDisconnectsDisplays(t *testing.T) {
	bus := NewBus("test", 16)
	defer bus.Close()
	ws := NewWebSocketService(bus, WebSocketOptions{})
	conn := dialDisplay(t, newWebSocketServer(t, ws))

	require.Eventually(t, func() bool { return ws.Displays() == 1 }, time.Second, 5*time.Millisecond)
	ws.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return ws.Displays() == 0 }, time.Second, 5*time.Millisecond)
}
