package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind names a lifecycle notification.
type Kind string

const (
	// KindListening is emitted once a store is opened and ready.
	KindListening Kind = "listening"
	// KindClosed is emitted after a store finished closing.
	KindClosed Kind = "closed"
	// KindError carries a failure; Event.Err is set.
	KindError Kind = "error"
	// KindPublish carries the uuid of a published message.
	KindPublish Kind = "publish"
	// KindMessage carries a single consumed message in Event.Data.
	KindMessage Kind = "message"
	// KindResults carries the full peeked batch in Event.Data.
	KindResults Kind = "results"
	// KindClose is emitted every time a client is closed.
	KindClose Kind = "close"
)

// Event is a single notification.
type Event struct {
	Kind   Kind
	Source string
	UUID   string
	Topic  string
	Data   any
	Err    error
	Time   time.Time
}

// Handler receives events synchronously on the emitting goroutine.
type Handler func(Event)

// Bus fans events out to subscribers. The zero value is not usable; call NewBus.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
	dropped  atomic.Uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	if b == nil || h == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Channel registers a buffered channel subscriber. The returned cancel
// function unsubscribes and closes the channel.
func (b *Bus) Channel(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := b.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	})
	cancel := func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
	return ch, cancel
}

// Emit delivers ev to every subscriber. A zero Time is set to now.
func (b *Bus) Emit(ev Event) {
	if b == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}

// Subscribers reports the number of registered subscribers.
func (b *Bus) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Dropped reports how many events channel subscribers missed because their
// buffer was full.
func (b *Bus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}
