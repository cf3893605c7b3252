package services

import (
	"github.com/google/uuid"

	"divine-deck/internal/models"
)

// Direction is the neighbor used by MoveAdjacent
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Queue is the ordered live queue and its navigation cursor.
// Entries live in an arena keyed by queue id; order holds presentation order.
// Queue is not safe for concurrent use; Presenter serializes access.
type Queue struct {
	entries map[string]*models.QueueEntry
	order   []string
	cursor  int
	newID   func() string
}

// NewQueue creates an empty queue with the cursor before the first entry
func NewQueue() *Queue {
	return &Queue{
		entries: make(map[string]*models.QueueEntry),
		cursor:  -1,
		newID:   uuid.NewString,
	}
}

// Len returns the number of entries
func (q *Queue) Len() int {
	return len(q.order)
}

// Cursor returns the current index, -1 when nothing is selected
func (q *Queue) Cursor() int {
	return q.cursor
}

// Entries returns a copy of the queue in presentation order
func (q *Queue) Entries() []models.QueueEntry {
	out := make([]models.QueueEntry, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, cloneEntry(q.entries[id]))
	}
	return out
}

// Current returns a copy of the entry under the cursor, or nil
func (q *Queue) Current() *models.QueueEntry {
	return q.at(q.cursor)
}

// Next returns a copy of the entry after the cursor, or nil
func (q *Queue) Next() *models.QueueEntry {
	return q.at(q.cursor + 1)
}

func (q *Queue) at(i int) *models.QueueEntry {
	if i < 0 || i >= len(q.order) {
		return nil
	}
	e := cloneEntry(q.entries[q.order[i]])
	return &e
}

// Enqueue appends a copy of slide with a fresh queue id. The cursor does not move.
func (q *Queue) Enqueue(slide models.Slide) string {
	return q.EnqueueMany([]models.Slide{slide})[0]
}

// EnqueueMany appends copies of slides in order and returns their queue ids
func (q *Queue) EnqueueMany(slides []models.Slide) []string {
	ids := make([]string, 0, len(slides))
	for _, s := range slides {
		id := q.newID()
		q.entries[id] = &models.QueueEntry{Slide: s.Clone(), QueueID: id}
		ids = append(ids, id)
	}
	q.order = append(q.order, ids...)
	return ids
}

// Remove deletes one entry. Unknown ids are ignored.
func (q *Queue) Remove(queueID string) bool {
	return q.BulkRemove([]string{queueID}) > 0
}

// BulkRemove deletes every entry whose id is in queueIDs and returns how
// many were removed. The cursor keeps pointing at the same entry when it
// survives, otherwise it clamps to min(cursor, len-1).
func (q *Queue) BulkRemove(queueIDs []string) int {
	doomed := make(map[string]struct{}, len(queueIDs))
	for _, id := range queueIDs {
		if _, ok := q.entries[id]; ok {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	currentID := q.currentID()
	kept := q.order[:0:0]
	for _, id := range q.order {
		if _, gone := doomed[id]; gone {
			delete(q.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	q.order = kept

	if _, gone := doomed[currentID]; gone || currentID == "" {
		q.cursor = q.clamp(q.cursor)
	} else {
		q.cursor = q.indexOf(currentID)
	}
	return len(doomed)
}

// MoveAdjacent swaps the entry at index with its neighbor. Moving past
// either end, or an index outside the queue, is a no-op.
func (q *Queue) MoveAdjacent(index int, dir Direction) bool {
	target := index - 1
	if dir == DirectionDown {
		target = index + 1
	} else if dir != DirectionUp {
		return false
	}
	if index < 0 || index >= len(q.order) || target < 0 || target >= len(q.order) {
		return false
	}

	currentID := q.currentID()
	q.order[index], q.order[target] = q.order[target], q.order[index]
	q.follow(currentID)
	return true
}

// MoveTo extracts the entry and reinserts it at position, clamped to the
// queue bounds. The cursor keeps pointing at the same entry.
func (q *Queue) MoveTo(queueID string, position int) bool {
	from := q.indexOf(queueID)
	if from < 0 {
		return false
	}
	if position < 0 {
		position = 0
	}
	if position > len(q.order)-1 {
		position = len(q.order) - 1
	}
	if position == from {
		return false
	}

	currentID := q.currentID()
	order := append(q.order[:from:from], q.order[from+1:]...)
	order = append(order[:position], append([]string{queueID}, order[position:]...)...)
	q.order = order
	q.follow(currentID)
	return true
}

// SetCursor moves the cursor, clamped to [-1, len-1]
func (q *Queue) SetCursor(index int) {
	q.cursor = q.clamp(index)
}

// Advance moves the cursor by step without wrapping
func (q *Queue) Advance(step int) {
	q.cursor = q.clamp(q.cursor + step)
}

// Replace swaps in a whole queue and resets the cursor.
// Entries missing a queue id are given one.
func (q *Queue) Replace(entries []models.QueueEntry) {
	q.entries = make(map[string]*models.QueueEntry, len(entries))
	q.order = make([]string, 0, len(entries))
	for _, e := range entries {
		e = cloneEntry(&e)
		if _, dup := q.entries[e.QueueID]; e.QueueID == "" || dup {
			e.QueueID = q.newID()
		}
		q.entries[e.QueueID] = &e
		q.order = append(q.order, e.QueueID)
	}
	q.cursor = -1
}

// ApplyEdit merges slide into every entry sharing its id and returns how
// many entries changed. Queue ids are preserved.
func (q *Queue) ApplyEdit(slide models.Slide) int {
	n := 0
	for _, id := range q.order {
		e := q.entries[id]
		if e.ID != slide.ID {
			continue
		}
		e.Slide = slide.Clone()
		n++
	}
	return n
}

func (q *Queue) currentID() string {
	if q.cursor < 0 || q.cursor >= len(q.order) {
		return ""
	}
	return q.order[q.cursor]
}

func (q *Queue) follow(currentID string) {
	if currentID == "" {
		return
	}
	q.cursor = q.indexOf(currentID)
}

func (q *Queue) indexOf(queueID string) int {
	for i, id := range q.order {
		if id == queueID {
			return i
		}
	}
	return -1
}

func (q *Queue) clamp(i int) int {
	if i < -1 {
		return -1
	}
	if i > len(q.order)-1 {
		return len(q.order) - 1
	}
	return i
}

func cloneEntry(e *models.QueueEntry) models.QueueEntry {
	return models.QueueEntry{Slide: e.Slide.Clone(), QueueID: e.QueueID}
}
