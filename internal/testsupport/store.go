package testsupport

import (
	"context"
	"testing"

	"mqlite/internal/config"
	"mqlite/internal/queue"
)

// MustListenStore builds a queue.Store from cfg, opens it and registers cleanup.
// A nil cfg selects an in-memory store.
func MustListenStore(t testing.TB, cfg *config.Config, opts ...queue.Option) *queue.Store {
	t.Helper()

	store, err := queue.NewFromConfig(cfg, nil, opts...)
	if err != nil {
		t.Fatalf("queue.NewFromConfig: %v", err)
	}
	if err := store.Listen(context.Background()); err != nil {
		t.Fatalf("store.Listen: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustPush pushes payload and fails the test on error.
func MustPush(t testing.TB, store *queue.Store, topic, format string, payload any) string {
	t.Helper()

	id, err := store.Push(context.Background(), topic, format, payload)
	if err != nil {
		t.Fatalf("store.Push: %v", err)
	}
	return id
}
