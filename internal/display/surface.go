// Package display is the audience side of the sync channel. A Surface shows
// whatever the last SLIDE_CHANGE carried; it never keeps a queue of its own.
package display

import (
	"sync"

	"divine-deck/internal/models"
	"divine-deck/internal/services"
)

// Surface holds the slide currently shown on a display
type Surface struct {
	mu       sync.RWMutex
	current  *models.QueueEntry
	received int
	onSlide  []func(*models.QueueEntry)
}

// NewSurface creates a blank surface
func NewSurface() *Surface {
	return &Surface{}
}

// Apply handles one channel message. SLIDE_CHANGE replaces what is shown,
// null clears it. Other messages are ignored.
func (s *Surface) Apply(msg models.Message) {
	if msg.Type != models.MessageSlideChange {
		return
	}

	var entry *models.QueueEntry
	if msg.Slide != nil {
		e := *msg.Slide
		e.Slide = e.Slide.Clone()
		entry = &e
	}

	s.mu.Lock()
	s.current = entry
	s.received++
	callbacks := append([]func(*models.QueueEntry){}, s.onSlide...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(s.Current())
	}
}

// OnSlide registers fn to run after every applied SLIDE_CHANGE
func (s *Surface) OnSlide(fn func(*models.QueueEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSlide = append(s.onSlide, fn)
}

// Current returns a copy of the shown entry, or nil when blank
func (s *Surface) Current() *models.QueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	e := *s.current
	e.Slide = e.Slide.Clone()
	return &e
}

// Received counts applied SLIDE_CHANGE messages
func (s *Surface) Received() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.received
}

// Attach connects the surface to an in-process port and asks for the
// current slide. The returned func detaches it.
func (s *Surface) Attach(port *services.Port) func() {
	unsubscribe := port.Subscribe(s.Apply)
	port.Publish(models.RequestSlide())
	return unsubscribe
}
