package display

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"divine-deck/internal/models"
)

// Client keeps a Surface in sync with a presenter over its websocket
type Client struct {
	url            string
	surface        *Surface
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
}

// NewClient creates a client for the display endpoint at url
func NewClient(url string, surface *Surface) *Client {
	if surface == nil {
		surface = NewSurface()
	}
	return &Client{
		url:            url,
		surface:        surface,
		dialer:         websocket.DefaultDialer,
		reconnectDelay: 2 * time.Second,
	}
}

// SetReconnectDelay changes the pause between connection attempts
func (c *Client) SetReconnectDelay(d time.Duration) {
	if d > 0 {
		c.reconnectDelay = d
	}
}

// Surface returns the surface the client updates
func (c *Client) Surface() *Surface {
	return c.surface
}

// Run connects and reconnects until ctx is cancelled. Every new connection
// starts with REQUEST_SLIDE so a display opened mid-service catches up.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("Display connection to %s lost: %v", c.url, err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	if err := conn.WriteJSON(models.RequestSlide()); err != nil {
		return fmt.Errorf("failed to request slide: %w", err)
	}
	log.Printf("Display connected to %s", c.url)

	for {
		var msg models.Message
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return errors.New("server closed the connection")
			}
			return err
		}
		c.surface.Apply(msg)
	}
}
