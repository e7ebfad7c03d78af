package queue

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTopic is used by producers when a message carries no topic.
	DefaultTopic = "_default"
	// DefaultFormat is stored when a push carries no format.
	DefaultFormat = "unknown"
)

// NormalizeTopic trims surrounding whitespace and converts the topic to
// Unicode NFC so visually identical topic names address the same rows.
func NormalizeTopic(topic string) string {
	return norm.NFC.String(strings.TrimSpace(topic))
}

func normalizeFormat(format string) string {
	format = strings.TrimSpace(format)
	if format == "" {
		return DefaultFormat
	}
	return format
}
