package queue

import (
	"fmt"
	"strings"
)

// Mode selects the table and the retrieval order of a store.
type Mode string

const (
	// ModeQueue is a work queue: table messages, oldest first.
	ModeQueue Mode = "queue"
	// ModeFeed is a notification feed: table notifications, newest first.
	ModeFeed Mode = "feed"
)

// ParseMode maps a configuration value to a Mode. Empty selects ModeQueue.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeQueue):
		return ModeQueue, nil
	case string(ModeFeed):
		return ModeFeed, nil
	default:
		return "", fmt.Errorf("unsupported store mode %q", value)
	}
}

// Table returns the table holding rows for the mode.
func (m Mode) Table() string {
	if m == ModeFeed {
		return "notifications"
	}
	return "messages"
}

func (m Mode) direction() string {
	if m == ModeFeed {
		return "DESC"
	}
	return "ASC"
}

func (m Mode) String() string {
	if m == "" {
		return string(ModeQueue)
	}
	return string(m)
}
