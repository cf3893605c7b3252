package services

import (
	"log"
	"sync"

	"divine-deck/internal/models"
)

// DefaultChannelName is the channel shared by the presenter and its displays
const DefaultChannelName = "divine-deck"

const defaultInboxSize = 64

// Bus is a named broadcast channel. Every participant opens its own Port;
// a message published on one port is delivered to every other open port.
// Delivery is asynchronous and at-most-once: a port whose inbox is full
// drops the message, and nothing is replayed to ports opened later.
type Bus struct {
	name      string
	inboxSize int

	mu     sync.RWMutex
	ports  map[*Port]struct{}
	closed bool
}

// NewBus creates a bus. inboxSize <= 0 selects the default.
func NewBus(name string, inboxSize int) *Bus {
	if name == "" {
		name = DefaultChannelName
	}
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	return &Bus{
		name:      name,
		inboxSize: inboxSize,
		ports:     make(map[*Port]struct{}),
	}
}

// Name returns the channel name
func (b *Bus) Name() string {
	return b.name
}

// Open attaches a new port. Opening on a closed bus returns a port that is
// already closed.
func (b *Bus) Open() *Port {
	p := &Port{
		bus:   b,
		inbox: make(chan models.Message, b.inboxSize),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		p.closed = true
		close(p.done)
		return p
	}
	b.ports[p] = struct{}{}
	b.mu.Unlock()

	go p.dispatch()
	return p
}

// Ports returns the number of open ports
func (b *Bus) Ports() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ports)
}

// Close closes every port and rejects new ones
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	ports := make([]*Port, 0, len(b.ports))
	for p := range b.ports {
		ports = append(ports, p)
	}
	b.mu.Unlock()

	for _, p := range ports {
		p.Close()
	}
}

func (b *Bus) broadcast(from *Port, msg models.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for p := range b.ports {
		if p == from {
			continue
		}
		p.deliver(msg)
	}
}

func (b *Bus) detach(p *Port) {
	b.mu.Lock()
	delete(b.ports, p)
	b.mu.Unlock()
}

// Handler receives messages from a port
type Handler func(models.Message)

// Port is one participant's view of a Bus
type Port struct {
	bus   *Bus
	inbox chan models.Message
	done  chan struct{}

	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	closed   bool
	dropped  int
}

// Publish sends msg to every other open port. It never blocks.
func (p *Port) Publish(msg models.Message) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.bus.broadcast(p, msg)
}

// Subscribe registers handler and returns a function that removes it.
// Handlers run on the port's dispatch goroutine, one message at a time.
func (p *Port) Subscribe(handler Handler) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers == nil {
		p.handlers = make(map[int]Handler)
	}
	id := p.nextID
	p.nextID++
	p.handlers[id] = handler

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

// Dropped returns how many messages were discarded because the inbox was full
func (p *Port) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Done is closed once the port is closed
func (p *Port) Done() <-chan struct{} {
	return p.done
}

// Close detaches the port and stops its dispatcher. Safe to call twice.
func (p *Port) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.handlers = nil
	p.mu.Unlock()

	p.bus.detach(p)
	close(p.done)
}

func (p *Port) deliver(msg models.Message) {
	select {
	case <-p.done:
	case p.inbox <- msg:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		log.Printf("Channel %s: inbox full, dropped %s", p.bus.name, msg.Type)
	}
}

func (p *Port) dispatch() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.inbox:
			p.mu.Lock()
			handlers := make([]Handler, 0, len(p.handlers))
			for _, h := range p.handlers {
				handlers = append(handlers, h)
			}
			p.mu.Unlock()

			for _, h := range handlers {
				h(msg)
			}
		}
	}
}
