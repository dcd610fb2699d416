package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/metrics"
	"github.com/roach88/bto/internal/registry"
)

// IDGenerator generates unique event ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// Engine is the flat-allocation engine.
//
// Every mutating operation runs inside a single registry write transaction:
// validation, ledger changes, record updates and the journal append either
// all take effect or none do. go-memdb admits one writer at a time, so
// operations are linearizable; queries run on read transactions and never
// wait for writers.
//
// Thread-safety: all methods are safe for concurrent use.
type Engine struct {
	reg     *registry.Registry
	clock   *Clock
	ids     IDGenerator
	journal Journal
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal appends an event for every committed mutation to j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithIDGenerator sets the event id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the logical clock that stamps event sequence numbers.
// Used to resume numbering after the last journalled event.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics records operation outcomes and inventory gauges on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine over reg.
//
// The registry is owned by the engine from here on: callers must not write
// to it directly.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:    reg,
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Load replaces the engine state with snap.
//
// The snapshot is checked before anything is written: every user must be
// well-formed, every ledger consistent, every roster within its slot limit,
// and no applicant or officer may hold two active records. NRICs must be
// stored normalized and every record must reference existing users and
// projects (see CheckReferences). Duplicate keys are rejected by the
// registry. Load is not journalled.
func (e *Engine) Load(snap domain.Snapshot) error {
	for _, u := range snap.Users {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	if err := CheckInvariants(snap); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "snapshot violates invariants: %v", err)
	}
	if err := CheckReferences(snap); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "snapshot has dangling references: %v", err)
	}

	txn := e.reg.Write()
	defer txn.Abort()

	if err := txn.Clear(); err != nil {
		return err
	}
	if err := txn.Import(snap); err != nil {
		return err
	}
	changes := txn.Commit()
	e.metrics.RecordChanges(changes)

	e.logger.Info("state loaded",
		"users", len(snap.Users),
		"projects", len(snap.Projects),
		"applications", len(snap.Applications),
		"registrations", len(snap.Registrations),
	)
	return nil
}

// Snapshot returns the current state, sorted by primary key.
func (e *Engine) Snapshot() domain.Snapshot {
	return e.reg.Read().Export()
}

// write runs fn inside one write transaction and commits only if fn and the
// journal append both succeed.
//
// args is the operation's argument struct as journalled; replaying it through
// Dispatch under the same actor reproduces the change.
func (e *Engine) write(ctx context.Context, op, actor string, args any, fn func(txn *registry.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	txn := e.reg.Write()
	defer txn.Abort()

	err := fn(txn)
	if err == nil {
		err = e.appendEvent(ctx, op, actor, args)
	}
	if err != nil {
		e.metrics.RecordOperation(op, time.Since(start), err)
		if domain.IsRuleViolation(err) {
			e.logger.Debug("operation rejected",
				"op", op,
				"actor", actor,
				"code", domain.CodeOf(err),
			)
		} else {
			e.logger.Error("operation failed",
				"op", op,
				"actor", actor,
				"error", err,
			)
		}
		return err
	}

	changes := txn.Commit()
	e.metrics.RecordOperation(op, time.Since(start), nil)
	e.metrics.RecordChanges(changes)

	e.logger.Debug("operation committed",
		"op", op,
		"actor", actor,
		"seq", e.clock.Current(),
		"changes", len(changes),
	)
	return nil
}

// appendEvent journals a committed-to-be mutation. Called with the write
// transaction still open so journal order equals commit order.
func (e *Engine) appendEvent(ctx context.Context, op, actor string, args any) error {
	if e.journal == nil {
		return nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode %s args: %w", op, err)
	}
	// The seq is only taken once the append succeeds, so a failed append
	// leaves no gap in the journal.
	ev := domain.Event{
		ID:    e.ids.Generate(),
		Seq:   e.clock.Current() + 1,
		Op:    op,
		Actor: actor,
		Args:  raw,
	}
	if err := e.journal.Append(ctx, ev); err != nil {
		return fmt.Errorf("journal %s: %w", op, err)
	}
	e.clock.Next()
	return nil
}
