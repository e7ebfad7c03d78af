package client

import (
	"context"

	"mqlite/internal/events"
	"mqlite/internal/logging"
	"mqlite/internal/queue"
)

// Producer publishes messages through its own channel.
type Producer struct {
	*session
}

// NewProducer attaches a producer to store.
func NewProducer(store *queue.Store, opts ...Option) *Producer {
	return &Producer{session: newSession("producer", store, opts)}
}

// Publish stores msg and returns its uuid. A missing topic header selects
// queue.DefaultTopic and a missing format selects queue.DefaultFormat.
func (p *Producer) Publish(ctx context.Context, msg Message) (string, error) {
	topic := msg.Topic()
	if topic == "" {
		topic = queue.DefaultTopic
	}
	format := msg.Format()
	if format == "" {
		format = queue.DefaultFormat
	}

	id, err := p.channel.Push(ctx, topic, format, msg.Payload)
	if err != nil {
		p.fail("publish", err)
		return "", err
	}

	p.logger.Info("message published",
		logging.String(logging.FieldUUID, id),
		logging.String(logging.FieldTopic, topic),
	)
	p.emit(events.Event{Kind: events.KindPublish, UUID: id, Topic: topic})
	return id, nil
}
