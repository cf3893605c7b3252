package services

import (
	"fmt"
	"log"
	"sync"

	"divine-deck/internal/models"
)

// Library is the slide library the presenter reads from and edits
type Library interface {
	FindSlide(slideID string) (models.Slide, error)
	FindSection(sectionID string) (models.Section, error)
	UpdateSlide(edited models.Slide, commit func(models.Slide)) (int, error)
}

// Setups stores queue snapshots
type Setups interface {
	Save(setup models.MassSetup) (models.MassSetup, error)
	Get(id string) (models.MassSetup, error)
}

var (
	_ Library = (*LibraryStore)(nil)
	_ Setups  = (*SetupStore)(nil)
)

// PresenterState is a consistent snapshot of what the presenter sees
type PresenterState struct {
	Queue        []models.QueueEntry `json:"queue"`
	Cursor       int                 `json:"cursor"`
	Current      *models.QueueEntry  `json:"current"`
	Next         *models.QueueEntry  `json:"next"`
	Elapsed      string              `json:"elapsed"`
	TimerRunning bool                `json:"timerRunning"`
}

// Presenter drives the live queue. Every queue or cursor mutation is
// followed by exactly one SLIDE_CHANGE carrying the current entry.
type Presenter struct {
	mu      sync.Mutex
	queue   *Queue
	port    *Port
	library Library
	setups  Setups
	timer   *Timer

	unsubscribe func()
}

// NewPresenter opens a port on bus and starts answering REQUEST_SLIDE
func NewPresenter(bus *Bus, library Library, setups Setups, timer *Timer) *Presenter {
	if timer == nil {
		timer = NewTimer(0)
	}
	p := &Presenter{
		queue:   NewQueue(),
		port:    bus.Open(),
		library: library,
		setups:  setups,
		timer:   timer,
	}
	p.unsubscribe = p.port.Subscribe(p.handleMessage)
	return p
}

func (p *Presenter) handleMessage(msg models.Message) {
	if msg.Type != models.MessageRequestSlide {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publish()
}

// publish must be called with lock held
func (p *Presenter) publish() {
	p.port.Publish(models.SlideChange(p.queue.Current()))
}

// mutate runs fn under the lock and republishes the current entry
func (p *Presenter) mutate(fn func(q *Queue)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.queue)
	p.publish()
}

// Enqueue appends a slide value
func (p *Presenter) Enqueue(slide models.Slide) string {
	var id string
	p.mutate(func(q *Queue) { id = q.Enqueue(slide.Normalize()) })
	return id
}

// EnqueueSlide appends a library slide by id
func (p *Presenter) EnqueueSlide(slideID string) (string, error) {
	slide, err := p.library.FindSlide(slideID)
	if err != nil {
		return "", err
	}
	return p.Enqueue(slide), nil
}

// EnqueueSection appends every slide of a library section, in order
func (p *Presenter) EnqueueSection(sectionID string) ([]string, error) {
	section, err := p.library.FindSection(sectionID)
	if err != nil {
		return nil, err
	}
	var ids []string
	p.mutate(func(q *Queue) { ids = q.EnqueueMany(section.Slides) })
	log.Printf("Queued %d slides from section %q", len(ids), section.Title)
	return ids, nil
}

// Remove deletes one entry; stale ids are ignored
func (p *Presenter) Remove(queueID string) {
	p.mutate(func(q *Queue) { q.Remove(queueID) })
}

// BulkRemove deletes every listed entry and returns how many were removed
func (p *Presenter) BulkRemove(queueIDs []string) int {
	var n int
	p.mutate(func(q *Queue) { n = q.BulkRemove(queueIDs) })
	return n
}

// MoveAdjacent swaps an entry with its neighbor
func (p *Presenter) MoveAdjacent(index int, dir Direction) {
	p.mutate(func(q *Queue) { q.MoveAdjacent(index, dir) })
}

// MoveTo reorders an entry to position
func (p *Presenter) MoveTo(queueID string, position int) {
	p.mutate(func(q *Queue) { q.MoveTo(queueID, position) })
}

// SetCursor selects an entry by index (clamped)
func (p *Presenter) SetCursor(index int) {
	p.mutate(func(q *Queue) { q.SetCursor(index) })
}

// Next advances to the following entry
func (p *Presenter) Next() {
	p.mutate(func(q *Queue) { q.Advance(1) })
}

// Prev steps back, down to the pre-show state
func (p *Presenter) Prev() {
	p.mutate(func(q *Queue) { q.Advance(-1) })
}

// UpdateSlide commits an edited slide to the library and to every queued
// copy. Both stores are updated before either lock is released.
func (p *Presenter) UpdateSlide(edited models.Slide) (models.Slide, error) {
	if edited.ID == "" {
		return models.Slide{}, fmt.Errorf("slide id is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		committed models.Slide
		queued    int
	)
	found, err := p.library.UpdateSlide(edited, func(normalized models.Slide) {
		committed = normalized
		queued = p.queue.ApplyEdit(normalized)
	})
	if found == 0 && queued == 0 && err == nil {
		return models.Slide{}, fmt.Errorf("%w: %s", ErrSlideNotFound, edited.ID)
	}

	p.publish()
	if err != nil {
		return committed, err
	}
	log.Printf("Slide %s updated (%d library, %d queued)", committed.ID, found, queued)
	return committed, nil
}

// SaveSetup snapshots the queue under name. The cursor is not saved.
func (p *Presenter) SaveSetup(name string) (models.MassSetup, error) {
	p.mu.Lock()
	entries := p.queue.Entries()
	p.mu.Unlock()

	return p.setups.Save(models.MassSetup{Name: name, Queue: entries})
}

// LoadSetup replaces the queue with a saved snapshot and resets the cursor
func (p *Presenter) LoadSetup(id string) (models.MassSetup, error) {
	setup, err := p.setups.Get(id)
	if err != nil {
		return models.MassSetup{}, err
	}
	p.mutate(func(q *Queue) { q.Replace(setup.Queue) })
	log.Printf("Setup loaded: %q (%d slides)", setup.Name, len(setup.Queue))
	return setup, nil
}

// Current returns the entry on screen, or nil
func (p *Presenter) Current() *models.QueueEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Current()
}

// State returns a snapshot of queue, cursor, preview and timer
func (p *Presenter) State() PresenterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PresenterState{
		Queue:        p.queue.Entries(),
		Cursor:       p.queue.Cursor(),
		Current:      p.queue.Current(),
		Next:         p.queue.Next(),
		Elapsed:      FormatElapsed(p.timer.Elapsed()),
		TimerRunning: p.timer.Running(),
	}
}

// Timer exposes the service timer
func (p *Presenter) Timer() *Timer {
	return p.timer
}

// Close stops the timer and leaves the channel
func (p *Presenter) Close() {
	p.timer.Close()
	p.unsubscribe()
	p.port.Close()
}
