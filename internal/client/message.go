package client

import (
	"time"

	"mqlite/internal/queue"
)

// Header keys understood by producers and set by consumers.
const (
	HeaderTopic     = "topic"
	HeaderFormat    = "format"
	HeaderUUID      = "uuid"
	HeaderTimestamp = "timestamp"
)

// Message is a payload plus its string-keyed headers.
type Message struct {
	Headers map[string]any
	Payload any
}

// NewMessage builds a message whose timestamp header defaults to now. Entries
// in headers override the default.
func NewMessage(headers map[string]any, payload any) Message {
	merged := make(map[string]any, len(headers)+1)
	merged[HeaderTimestamp] = time.Now()
	for k, v := range headers {
		merged[k] = v
	}
	return Message{Headers: merged, Payload: payload}
}

func messageFromRow(row queue.Row) Message {
	return Message{
		Headers: map[string]any{
			HeaderTopic:     row.Topic,
			HeaderUUID:      row.UUID,
			HeaderFormat:    row.Format,
			HeaderTimestamp: row.Time(),
		},
		Payload: row.Payload,
	}
}

// Topic returns the topic header or "".
func (m Message) Topic() string { return m.header(HeaderTopic) }

// Format returns the format header or "".
func (m Message) Format() string { return m.header(HeaderFormat) }

// UUID returns the uuid header; set only on consumed messages.
func (m Message) UUID() string { return m.header(HeaderUUID) }

// Timestamp returns the timestamp header. Integer headers are read as Unix
// milliseconds.
func (m Message) Timestamp() time.Time {
	switch v := m.Headers[HeaderTimestamp].(type) {
	case time.Time:
		return v
	case int64:
		return time.UnixMilli(v)
	case int:
		return time.UnixMilli(int64(v))
	default:
		return time.Time{}
	}
}

func (m Message) header(key string) string {
	if v, ok := m.Headers[key].(string); ok {
		return v
	}
	return ""
}
