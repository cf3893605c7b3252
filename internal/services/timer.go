package services

import (
	"fmt"
	"sync"
	"time"
)

// Timer counts elapsed service time in whole ticks of a fixed interval.
// The ticker goroutine only exists while the timer is running.
type Timer struct {
	interval time.Duration

	mu      sync.Mutex
	elapsed time.Duration
	stop    chan struct{}
	stopped chan struct{}
}

// NewTimer creates a paused timer. interval <= 0 selects one second.
func NewTimer(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{interval: interval}
}

// Start resumes counting. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.stopped = make(chan struct{})
	go t.run(t.stop, t.stopped)
}

// Pause stops counting and waits for the ticker goroutine to exit.
func (t *Timer) Pause() {
	t.mu.Lock()
	stop, stopped := t.stop, t.stopped
	t.stop, t.stopped = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

// Reset zeroes the elapsed time without changing running state
func (t *Timer) Reset() {
	t.mu.Lock()
	t.elapsed = 0
	t.mu.Unlock()
}

// Close tears the timer down
func (t *Timer) Close() {
	t.Pause()
}

// Running reports whether the timer is counting
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Elapsed returns the counted time
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

func (t *Timer) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.elapsed += t.interval
			t.mu.Unlock()
		}
	}
}

// FormatElapsed renders d as hh:mm:ss
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
