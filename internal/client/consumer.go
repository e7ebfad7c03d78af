package client

import (
	"context"
	"errors"

	"mqlite/internal/events"
	"mqlite/internal/logging"
	"mqlite/internal/queue"
)

// Consumer reads messages through its own channel.
type Consumer struct {
	*session
}

// NewConsumer attaches a consumer to store.
func NewConsumer(store *queue.Store, opts ...Option) *Consumer {
	return &Consumer{session: newSession("consumer", store, opts)}
}

// Get removes and returns up to limit messages for topic. One message event is
// emitted per returned message. If some deliveries could not be deleted the
// messages are still returned alongside an error wrapping queue.ErrDeleteFailed.
func (c *Consumer) Get(ctx context.Context, topic string, limit int) ([]Message, error) {
	rows, err := c.channel.Get(ctx, topic, limit, false)
	if err != nil && !errors.Is(err, queue.ErrDeleteFailed) {
		c.fail("get", err)
		return nil, err
	}

	messages := toMessages(rows)
	for _, msg := range messages {
		c.emit(events.Event{Kind: events.KindMessage, UUID: msg.UUID(), Topic: msg.Topic(), Data: msg})
	}
	c.logger.Debug("messages consumed",
		logging.String(logging.FieldTopic, topic),
		logging.Int("count", len(messages)),
	)
	if err != nil {
		c.fail("get", err)
		return messages, err
	}
	return messages, nil
}

// Peek returns up to limit messages for topic without removing them and emits
// a single results event carrying the whole batch.
func (c *Consumer) Peek(ctx context.Context, topic string, limit int) ([]Message, error) {
	rows, err := c.channel.Get(ctx, topic, limit, true)
	if err != nil {
		c.fail("peek", err)
		return nil, err
	}

	messages := toMessages(rows)
	c.emit(events.Event{Kind: events.KindResults, Topic: queue.NormalizeTopic(topic), Data: messages})
	return messages, nil
}

func toMessages(rows []queue.Row) []Message {
	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, messageFromRow(row))
	}
	return messages
}
