package queue

import (
	"context"
	"errors"
	"testing"
)

func TestGetReturnsRowsWhenDeleteFails(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.Listen(ctx); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer store.Close()

	if _, err := store.Push(ctx, "t", "text", "kept"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, `CREATE TRIGGER block_delete BEFORE DELETE ON messages
BEGIN SELECT RAISE(ABORT, 'deletes blocked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	rows, err := store.Get(ctx, "t", 1, false)
	if !errors.Is(err, ErrDeleteFailed) {
		t.Fatalf("expected ErrDeleteFailed, got %v", err)
	}
	if len(rows) != 1 || rows[0].Payload != "kept" {
		t.Fatalf("expected delivered rows alongside the error, got %+v", rows)
	}
	if !Retryable(err) {
		t.Fatal("delete failures should be retryable")
	}
}

func TestFailedListenReleasesResources(t *testing.T) {
	store := New(WithPath(t.TempDir() + "/missing/dir/queue.db"))
	if err := store.Listen(context.Background()); err == nil {
		t.Fatal("expected listen to fail for missing directory")
	}
	if store.db != nil || store.lock != nil || store.insertStmt != nil {
		t.Fatal("failed listen left handles behind")
	}
	if store.Opened() {
		t.Fatal("store should be closed")
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	cases := map[string]bool{
		"database is locked (5) (SQLITE_BUSY)": true,
		"database is locked":                   true,
		"no such table: messages":              false,
	}
	for msg, want := range cases {
		if got := isSQLiteBusy(errors.New(msg)); got != want {
			t.Fatalf("isSQLiteBusy(%q) = %v, want %v", msg, got, want)
		}
	}
	if isSQLiteBusy(nil) {
		t.Fatal("nil is not busy")
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return errors.New("constraint failed")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected single attempt, got %d calls err=%v", calls, err)
	}

	calls = 0
	err = retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after retries, got %d calls err=%v", calls, err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeQueue, "queue": ModeQueue, " FEED ": ModeFeed} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("stack"); err == nil {
		t.Fatal("expected error")
	}
	if ModeFeed.Table() != "notifications" || ModeQueue.Table() != "messages" {
		t.Fatal("unexpected table mapping")
	}
}
