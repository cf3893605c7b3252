package display

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divine-deck/internal/db"
	"divine-deck/internal/models"
	"divine-deck/internal/services"
)

func newPresenter(t *testing.T, bus *services.Bus) *services.Presenter {
	t.Helper()
	dir := t.TempDir()
	library, err := services.NewLibraryStore(dir)
	require.NoError(t, err)
	database, err := db.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	p := services.NewPresenter(bus, library, services.NewSetupStore(database), nil)
	t.Cleanup(func() {
		p.Close()
		database.Close()
	})
	return p
}

func entry(id string) *models.QueueEntry {
	return &models.QueueEntry{
		Slide:   models.Slide{ID: id, Title: "Slide " + id, Contents: []string{id}, LayoutType: models.LayoutOneCol},
		QueueID: "q-" + id,
	}
}

func TestSurface_ApplyIsAuthoritative(t *testing.T) {
	s := NewSurface()
	var seen []*models.QueueEntry
	s.OnSlide(func(e *models.QueueEntry) { seen = append(seen, e) })

	s.Apply(models.SlideChange(entry("A")))
	require.NotNil(t, s.Current())
	assert.Equal(t, "A", s.Current().ID)

	s.Apply(models.RequestSlide())
	assert.Equal(t, 1, s.Received())

	s.Apply(models.SlideChange(nil))
	assert.Nil(t, s.Current())
	assert.Equal(t, 2, s.Received())
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])
}

func TestSurface_CurrentIsACopy(t *testing.T) {
	s := NewSurface()
	e := entry("A")
	s.Apply(models.SlideChange(e))

	e.Contents[0] = "changed"
	got := s.Current()
	got.Contents[0] = "changed too"
	assert.Equal(t, "A", s.Current().Contents[0])
}

func TestSurface_AttachPullsCurrentSlide(t *testing.T) {
	bus := services.NewBus("test", 16)
	defer bus.Close()
	p := newPresenter(t, bus)
	p.Enqueue(models.Slide{ID: "A", Title: "Welcome"})
	p.Next()

	s := NewSurface()
	port := bus.Open()
	defer port.Close()
	detach := s.Attach(port)

	require.Eventually(t, func() bool { return s.Current() != nil }, time.Second, time.Millisecond)
	assert.Equal(t, "Welcome", s.Current().Title)

	p.Next()
	require.Eventually(t, func() bool { return s.Received() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, "Welcome", s.Current().Title, "advancing past the end keeps the last slide")

	detach()
	p.Prev()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, s.Received())
}

func TestClient_FollowsPresenterOverWebSocket(t *testing.T) {
	bus := services.NewBus("test", 16)
	defer bus.Close()
	p := newPresenter(t, bus)
	ws := services.NewWebSocketService(bus, services.WebSocketOptions{})
	defer ws.Close()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.Serve(conn)
	}))
	defer srv.Close()

	p.Enqueue(models.Slide{ID: "A", Title: "Entrance"})
	p.Enqueue(models.Slide{ID: "B", Title: "Gloria"})
	p.Next()

	client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	client.SetReconnectDelay(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	surface := client.Surface()
	require.Eventually(t, func() bool {
		cur := surface.Current()
		return cur != nil && cur.ID == "A"
	}, 2*time.Second, 5*time.Millisecond, "late display catches up on open")

	p.Next()
	require.Eventually(t, func() bool {
		cur := surface.Current()
		return cur != nil && cur.ID == "B"
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}
