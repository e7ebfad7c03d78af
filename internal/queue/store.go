package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mqlite/internal/codec"
	"mqlite/internal/config"
	"mqlite/internal/events"
	"mqlite/internal/logging"
	"mqlite/internal/metrics"
)

// MemoryPath selects an in-memory database that lives as long as the store is open.
const MemoryPath = ":memory:"

const defaultBusyTimeout = 5 * time.Second

// Row is a stored message with its payload already decoded.
type Row struct {
	UUID      string
	Topic     string
	Format    string
	Timestamp int64
	Payload   any
}

// Time returns the insertion time recorded for the row.
func (r Row) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Store manages queue persistence backed by SQLite.
type Store struct {
	path        string
	mode        Mode
	busyTimeout time.Duration
	logger      *slog.Logger
	codecs      *codec.Registry
	clock       func() time.Time
	metrics     *metrics.Collectors
	bus         *events.Bus

	// mu serialises Listen, Push, Get, Stats and Close. Notifications raised
	// while it is held wait in pending until unlock.
	mu         sync.Mutex
	pending    []events.Event
	db         *sql.DB
	lock       *flock.Flock
	insertStmt *sql.Stmt
	selectStmt *sql.Stmt
	deleteStmt *sql.Stmt
	opened     atomic.Bool

	chMu     sync.Mutex
	channels map[string]*Channel
}

// Option customises a Store at construction.
type Option func(*Store)

// WithPath sets the database file. Empty or MemoryPath selects an in-memory database.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = strings.TrimSpace(path)
	}
}

// WithMode selects queue or feed semantics.
func WithMode(mode Mode) Option {
	return func(s *Store) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "queue")
		}
	}
}

// WithCodecs sets the codec registry owned by the store.
func WithCodecs(reg *codec.Registry) Option {
	return func(s *Store) {
		if reg != nil {
			s.codecs = reg
		}
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(c *metrics.Collectors) Option {
	return func(s *Store) {
		s.metrics = c
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithEvents shares an existing event bus instead of creating one.
func WithEvents(bus *events.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// New constructs a closed store. Call Listen before pushing or reading.
func New(opts ...Option) *Store {
	s := &Store{
		path:        MemoryPath,
		mode:        ModeQueue,
		busyTimeout: defaultBusyTimeout,
		logger:      logging.NewComponentLogger(nil, "queue"),
		codecs:      codec.Defaults(),
		clock:       time.Now,
		bus:         events.NewBus(),
		channels:    make(map[string]*Channel),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.path == "" {
		s.path = MemoryPath
	}
	return s
}

// NewFromConfig constructs a closed store from the [store] configuration section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Store, error) {
	if cfg == nil {
		return New(append([]Option{WithLogger(logger)}, opts...)...), nil
	}
	mode, err := ParseMode(cfg.Store.Mode)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithPath(cfg.Store.Path),
		WithMode(mode),
		WithLogger(logger),
		WithBusyTimeout(time.Duration(cfg.Store.BusyTimeoutMS) * time.Millisecond),
	}
	return New(append(base, opts...)...), nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Mode returns the store mode.
func (s *Store) Mode() Mode { return s.mode }

// Codecs returns the registry used to encode and decode payloads.
func (s *Store) Codecs() *codec.Registry { return s.codecs }

// Events returns the bus carrying listening, closed and error notifications.
func (s *Store) Events() *events.Bus { return s.bus }

// Opened reports whether the store is listening.
func (s *Store) Opened() bool { return s.opened.Load() }

func (s *Store) inMemory() bool {
	return s.path == MemoryPath || strings.HasPrefix(s.path, "file::memory:")
}

// Listen opens the database, creates the schema when missing and prepares the
// statements. On failure everything acquired so far is released and the store
// stays closed.
func (s *Store) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()

	if s.opened.Load() {
		return ErrAlreadyOpened
	}

	if err := s.listenLocked(ctx); err != nil {
		_ = s.releaseLocked()
		s.fail("listen", err)
		return err
	}

	s.opened.Store(true)
	s.logger.Info("queue store listening",
		logging.String("path", s.path),
		logging.String("mode", s.mode.String()),
	)
	s.notify(events.Event{Kind: events.KindListening, Source: "store"})
	return nil
}

func (s *Store) listenLocked(ctx context.Context) error {
	if !s.inMemory() {
		lock := flock.New(s.path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("%w: acquire lock: %w", ErrStoreUnreachable, err)
		}
		if !ok {
			return fmt.Errorf("%w: %w: %s", ErrStoreUnreachable, ErrStoreLocked, s.path)
		}
		s.lock = lock
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("%w: open sqlite db: %w", ErrStoreUnreachable, err)
	}
	// One connection keeps an in-memory database alive and matches the
	// single-writer model of the prepared statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	var probe int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&probe); err != nil {
		return fmt.Errorf("%w: probe: %w", ErrStoreUnreachable, err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
	}
	if !s.inMemory() {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%w: apply pragma %q: %w", ErrStoreUnreachable, pragma, err)
		}
	}

	if err := s.initSchema(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaCreationFailed, err)
	}

	table := s.mode.Table()
	statements := []struct {
		name  string
		query string
		dst   **sql.Stmt
	}{
		// NULL marks an absent payload; an empty encoding is stored as X''.
		{"insert", `INSERT INTO ` + table + ` (uuid, topic, format, timestamp, payload)
			VALUES (?1, ?2, ?3, ?4, CASE WHEN ?6 THEN X'' ELSE ?5 END)`, &s.insertStmt},
		{"select", `SELECT uuid, topic, format, timestamp, payload, payload IS NULL FROM ` + table +
			` WHERE topic = ? ORDER BY timestamp ` + s.mode.direction() + `, rowid ` + s.mode.direction() + ` LIMIT ?`, &s.selectStmt},
		{"delete", `DELETE FROM ` + table + ` WHERE uuid = ?`, &s.deleteStmt},
	}
	for _, st := range statements {
		stmt, err := db.PrepareContext(ctx, st.query)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPrepareFailed, st.name, err)
		}
		*st.dst = stmt
	}
	return nil
}

// Push stores payload under topic and returns the new message uuid.
func (s *Store) Push(ctx context.Context, topic, format string, payload any) (string, error) {
	s.mu.Lock()
	defer s.unlock()

	if !s.opened.Load() {
		s.fail("push", ErrNotOpened)
		return "", ErrNotOpened
	}

	topic = NormalizeTopic(topic)
	if topic == "" {
		err := fmt.Errorf("%w: topic is empty", ErrInvalidTopic)
		s.fail("push", err)
		return "", err
	}
	format = normalizeFormat(format)

	encoded, err := s.codecs.Encoder(format)(payload)
	if err != nil {
		err = fmt.Errorf("%w: format %s: %w", ErrEncodeFailed, format, err)
		s.fail("push", err)
		return "", err
	}

	id := uuid.NewString()
	timestamp := s.clock().UnixMilli()
	var payloadArg any
	if len(encoded) > 0 {
		payloadArg = encoded
	}
	empty := encoded != nil && len(encoded) == 0

	if err := retryOnBusy(ctx, func() error {
		_, execErr := s.insertStmt.ExecContext(ctx, id, topic, format, timestamp, payloadArg, empty)
		return execErr
	}); err != nil {
		err = fmt.Errorf("%w: insert %s: %w", ErrWriteFailed, id, err)
		s.fail("push", err)
		return "", err
	}

	s.metrics.Pushed(topic, 1)
	logging.WithContext(ctx, s.logger).Debug("message pushed",
		logging.String(logging.FieldUUID, id),
		logging.String(logging.FieldTopic, topic),
		logging.String("format", format),
		logging.Int64("timestamp", timestamp),
	)
	return id, nil
}

// Get returns up to limit rows for topic in mode order. Unless requeue is set
// the returned rows are deleted once every row decoded. When a delete fails
// the rows are still returned, together with an error wrapping ErrDeleteFailed.
func (s *Store) Get(ctx context.Context, topic string, limit int, requeue bool) ([]Row, error) {
	s.mu.Lock()
	defer s.unlock()

	if !s.opened.Load() {
		s.fail("get", ErrNotOpened)
		return nil, ErrNotOpened
	}
	if limit <= 0 {
		limit = 1
	}
	topic = NormalizeTopic(topic)

	raw, err := s.selectRows(ctx, topic, limit)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrReadFailed, err)
		s.fail("get", err)
		return nil, err
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		value, err := s.codecs.Decoder(r.format)(r.payload)
		if err != nil {
			err = fmt.Errorf("%w: decode %s as %s: %w", ErrReadFailed, r.uuid, r.format, err)
			s.fail("get", err)
			return nil, err
		}
		rows = append(rows, Row{
			UUID:      r.uuid,
			Topic:     r.topic,
			Format:    r.format,
			Timestamp: r.timestamp,
			Payload:   value,
		})
	}
	logging.WithContext(ctx, s.logger).Debug("messages read",
		logging.String(logging.FieldTopic, topic),
		logging.Int("count", len(rows)),
		logging.Bool("requeue", requeue),
	)

	if requeue {
		s.metrics.Peeked(topic, len(rows))
		return rows, nil
	}

	// Deletes run to completion even if the caller gives up mid-batch.
	deleteCtx := context.WithoutCancel(ctx)
	var (
		firstErr error
		deleted  int
	)
	for _, row := range rows {
		err := retryOnBusy(deleteCtx, func() error {
			_, execErr := s.deleteStmt.ExecContext(deleteCtx, row.UUID)
			return execErr
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s: %w", ErrDeleteFailed, row.UUID, err)
			}
			continue
		}
		deleted++
	}
	s.metrics.Consumed(topic, deleted)
	if firstErr != nil {
		s.fail("delete", firstErr)
		return rows, firstErr
	}
	return rows, nil
}

type rawRow struct {
	uuid      string
	topic     string
	format    string
	timestamp int64
	payload   []byte
}

func (s *Store) selectRows(ctx context.Context, topic string, limit int) ([]rawRow, error) {
	rows, err := s.selectStmt.QueryContext(ctx, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.mode.Table(), err)
	}
	defer rows.Close()

	var out []rawRow
	for rows.Next() {
		var (
			r      rawRow
			format sql.NullString
			isNull bool
		)
		if err := rows.Scan(&r.uuid, &r.topic, &format, &r.timestamp, &r.payload, &isNull); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.format = format.String
		// The driver reads zero-length blobs as nil.
		if !isNull && r.payload == nil {
			r.payload = []byte{}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Stats returns the number of stored messages per topic.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.unlock()

	if !s.opened.Load() {
		return nil, ErrNotOpened
	}
	rows, err := s.db.QueryContext(ctx, `SELECT topic, COUNT(1) FROM `+s.mode.Table()+` GROUP BY topic`)
	if err != nil {
		return nil, fmt.Errorf("%w: queue stats: %w", ErrReadFailed, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			topic string
			count int
		)
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, fmt.Errorf("%w: scan stats: %w", ErrReadFailed, err)
		}
		stats[topic] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate stats: %w", ErrReadFailed, err)
	}
	return stats, nil
}

// Close detaches every channel, finalizes the statements, closes the database
// and releases the file lock. Every step runs; the first error is returned.
// Closing a store that never opened is a no-op.
func (s *Store) Close() error {
	s.chMu.Lock()
	s.channels = make(map[string]*Channel)
	s.chMu.Unlock()
	s.metrics.SetOpenChannels(0)

	s.mu.Lock()
	defer s.unlock()

	if s.db == nil && s.lock == nil {
		return nil
	}

	s.opened.Store(false)
	err := s.releaseLocked()
	if err != nil {
		s.metrics.Failed("close")
		logging.ErrorWithContext(s.logger, "error closing the database", "queue_close_failed",
			logging.String(logging.FieldErrorHint, ErrorKind(err)),
			logging.Error(err),
		)
		s.notify(events.Event{Kind: events.KindError, Source: "store", Err: err})
		return err
	}
	s.logger.Debug("queue store closed", logging.String("path", s.path))
	s.notify(events.Event{Kind: events.KindClosed, Source: "store"})
	return nil
}

// releaseLocked tears down whatever Listen managed to acquire.
func (s *Store) releaseLocked() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, st := range []struct {
		name string
		stmt **sql.Stmt
	}{
		{"insert", &s.insertStmt},
		{"select", &s.selectStmt},
		{"delete", &s.deleteStmt},
	} {
		if *st.stmt == nil {
			continue
		}
		if err := (*st.stmt).Close(); err != nil {
			record(fmt.Errorf("finalize %s statement: %w", st.name, err))
		}
		*st.stmt = nil
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			record(fmt.Errorf("close sqlite db: %w", err))
		}
		s.db = nil
	}

	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			record(fmt.Errorf("release lock: %w", err))
		}
		s.lock = nil
	}
	return firstErr
}

// fail records an operation failure. s.mu must be held; the error
// notification goes out when the lock is released.
func (s *Store) fail(operation string, err error) {
	s.notify(s.failure(operation, err))
}

// failure counts and logs a failed operation and returns its notification.
func (s *Store) failure(operation string, err error) events.Event {
	s.metrics.Failed(operation)
	if !errors.Is(err, ErrNotOpened) {
		logging.WarnWithContext(s.logger, "queue operation failed", "queue_"+operation+"_failed",
			logging.String("operation", operation),
			logging.String(logging.FieldErrorHint, ErrorKind(err)),
			logging.Error(err),
		)
	}
	return events.Event{Kind: events.KindError, Source: "store", Err: err}
}

// notify queues ev for delivery after s.mu is released, so handlers may call
// back into the store.
func (s *Store) notify(ev events.Event) {
	s.pending = append(s.pending, ev)
}

func (s *Store) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, ev := range pending {
		s.bus.Emit(ev)
	}
}
