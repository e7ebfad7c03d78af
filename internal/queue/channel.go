package queue

import (
	"context"

	"github.com/google/uuid"

	"mqlite/internal/logging"
)

// Channel is a lightweight session handle that forwards work to its store.
// Channels are created with Store.CreateChannel and stay valid until they are
// closed or the store is closed.
type Channel struct {
	id    string
	store *Store
}

// CreateChannel allocates a channel and records it in the live set.
func (s *Store) CreateChannel() *Channel {
	ch := &Channel{id: uuid.NewString(), store: s}
	s.chMu.Lock()
	s.channels[ch.id] = ch
	count := len(s.channels)
	s.chMu.Unlock()
	s.metrics.SetOpenChannels(count)
	return ch
}

// OpenChannels reports how many channels are attached to the store.
func (s *Store) OpenChannels() int {
	s.chMu.Lock()
	defer s.chMu.Unlock()
	return len(s.channels)
}

func (s *Store) detach(id string) {
	s.chMu.Lock()
	delete(s.channels, id)
	count := len(s.channels)
	s.chMu.Unlock()
	s.metrics.SetOpenChannels(count)
}

func (s *Store) attached(id string) error {
	s.chMu.Lock()
	_, ok := s.channels[id]
	s.chMu.Unlock()
	if ok {
		return nil
	}
	if !s.opened.Load() {
		return ErrNotOpened
	}
	return ErrChannelClosed
}

// refuse reports a channel operation rejected before reaching the store.
func (s *Store) refuse(operation string, err error) {
	s.bus.Emit(s.failure(operation, err))
}

// ID returns the channel identifier.
func (c *Channel) ID() string { return c.id }

// Store returns the store the channel forwards to.
func (c *Channel) Store() *Store { return c.store }

// Push forwards to Store.Push.
func (c *Channel) Push(ctx context.Context, topic, format string, payload any) (string, error) {
	if err := c.store.attached(c.id); err != nil {
		c.store.refuse("push", err)
		return "", err
	}
	return c.store.Push(logging.ContextWithChannel(ctx, c.id), topic, format, payload)
}

// Get forwards to Store.Get.
func (c *Channel) Get(ctx context.Context, topic string, limit int, requeue bool) ([]Row, error) {
	if err := c.store.attached(c.id); err != nil {
		c.store.refuse("get", err)
		return nil, err
	}
	return c.store.Get(logging.ContextWithChannel(ctx, c.id), topic, limit, requeue)
}

// Close removes the channel from the store's live set. Closing twice is a no-op.
func (c *Channel) Close() {
	c.store.detach(c.id)
}
