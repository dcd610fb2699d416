package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/registry"
	"github.com/roach88/bto/internal/store"
)

// session is an engine restored from the database.
//
// The head snapshot is a cache: events journalled after it are replayed on
// open, so a head that failed to save after an append is repaired by the
// next command.
type session struct {
	store  *store.Store
	engine *engine.Engine
	seq    int64 // last journalled event
}

// openSession opens the database and restores the current state. The
// engine journals to the store, so every successful operation is durable
// once it returns.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	s, err := restore(ctx, st, opts)
	if err != nil {
		st.Close()
		return nil, err
	}
	return s, nil
}

func restore(ctx context.Context, st *store.Store, opts *RootOptions) (*session, error) {
	head, err := st.LoadSnapshot(ctx, store.KindHead)
	if errors.Is(err, store.ErrNoSnapshot) {
		head, err = st.LoadSnapshot(ctx, store.KindBase)
	}
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s has not been seeded (run 'bto seed <file>')", opts.Database))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load state", err)
	}

	tail, err := st.ReadEvents(ctx, head.Seq)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	last, err := st.LastSeq(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	reg, err := registry.New()
	if err != nil {
		return nil, err
	}
	replayer := engine.New(reg, engine.WithLogger(opts.Logger))
	if err := replayer.Load(head.Snapshot); err != nil {
		return nil, WrapExitError(ExitCommandError, "stored state is invalid", err)
	}
	if err := replayer.Replay(ctx, tail); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal does not replay", err)
	}
	if len(tail) > 0 {
		opts.Logger.Debug("replayed journal tail", "from", head.Seq, "events", len(tail))
	}

	// Same registry, now journalling, with the clock resumed after the
	// last stored event.
	e := engine.New(reg,
		engine.WithJournal(st),
		engine.WithClock(engine.NewClockAt(last)),
		engine.WithLogger(opts.Logger),
		engine.WithMetrics(opts.Recorder),
	)
	for _, p := range e.Projects() {
		opts.Recorder.ObserveProject(p)
	}

	return &session{store: st, engine: e, seq: last}, nil
}

// commit saves the head snapshot after the journalled operations.
func (s *session) commit(ctx context.Context) error {
	last, err := s.store.LastSeq(ctx)
	if err != nil {
		return err
	}
	if last == s.seq {
		return nil
	}
	if err := s.store.SaveSnapshot(ctx, store.KindHead, last, s.engine.Snapshot()); err != nil {
		return err
	}
	s.seq = last
	return nil
}

func (s *session) close() error {
	return s.store.Close()
}

