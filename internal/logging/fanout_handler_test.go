package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"mqlite/internal/logging"
)

func TestTeeLoggerWritesToAllHandlers(t *testing.T) {
	var primary, secondary bytes.Buffer
	base := slog.New(slog.NewTextHandler(&primary, &slog.HandlerOptions{Level: slog.LevelInfo}))
	extra := slog.NewTextHandler(&secondary, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := logging.TeeLogger(base, extra).With(logging.String("topic", "jobs"))
	logger.Info("info only")
	logger.Warn("both")

	if !strings.Contains(primary.String(), "info only") || !strings.Contains(primary.String(), "both") {
		t.Fatalf("primary missing records: %q", primary.String())
	}
	if strings.Contains(secondary.String(), "info only") {
		t.Fatalf("secondary should filter info: %q", secondary.String())
	}
	if !strings.Contains(secondary.String(), "both") || !strings.Contains(secondary.String(), "topic=jobs") {
		t.Fatalf("secondary missing warn record with attrs: %q", secondary.String())
	}
}

func TestTeeLoggerNilBase(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.TeeLogger(nil, slog.NewTextHandler(&buf, nil))
	logger.Info("solo")
	if !strings.Contains(buf.String(), "solo") {
		t.Fatalf("expected record, got %q", buf.String())
	}
}
