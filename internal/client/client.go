package client

import (
	"context"
	"log/slog"
	"sync"

	"mqlite/internal/events"
	"mqlite/internal/logging"
	"mqlite/internal/queue"
)

// Option customises a producer or consumer.
type Option func(*session)

// WithLogger sets the client logger; nil keeps the no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvents shares an event bus between clients.
func WithEvents(bus *events.Bus) Option {
	return func(s *session) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// session is the state shared by producers and consumers: the bound channel,
// the open flag and the notification sink.
type session struct {
	source  string
	store   *queue.Store
	channel *queue.Channel
	bus     *events.Bus
	logger  *slog.Logger

	mu     sync.Mutex
	opened bool
}

func newSession(source string, store *queue.Store, opts []Option) *session {
	s := &session{
		source: source,
		store:  store,
		bus:    events.NewBus(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.channel = store.CreateChannel()
	s.logger = logging.NewComponentLogger(s.logger, source).With(logging.String(logging.FieldChannelID, s.channel.ID()))
	s.opened = true
	return s
}

// Events returns the bus carrying this client's notifications.
func (s *session) Events() *events.Bus { return s.bus }

// Opened reports whether Close has not been called yet.
func (s *session) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// ChannelID identifies the channel the client holds on its store.
func (s *session) ChannelID() string { return s.channel.ID() }

// Close releases the client's channel. Only the first call detaches; every
// call emits a close notification and returns nil.
func (s *session) Close(_ context.Context) error {
	s.mu.Lock()
	if s.opened {
		s.opened = false
		s.channel.Close()
		s.logger.Debug("channel closed")
	}
	s.mu.Unlock()

	s.emit(events.Event{Kind: events.KindClose})
	return nil
}

func (s *session) emit(ev events.Event) {
	ev.Source = s.source
	s.bus.Emit(ev)
}

func (s *session) fail(operation string, err error) {
	logging.ErrorWithContext(s.logger, "client operation failed", s.source+"_"+operation+"_failed",
		logging.String("operation", operation),
		logging.String(logging.FieldErrorHint, queue.ErrorKind(err)),
		logging.Error(err),
	)
	s.emit(events.Event{Kind: events.KindError, Err: err})
}
