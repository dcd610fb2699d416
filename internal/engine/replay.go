package engine

import (
	"context"
	"fmt"

	"github.com/roach88/bto/internal/domain"
)

// Replay and verification
//
// The journal holds one event per committed mutation, in commit order. Each
// event carries the operation name, the actor and the JSON arguments, which
// is exactly what Dispatch takes. Replaying is therefore the same code path
// as running the operation the first time:
//
//	base snapshot --Load--> engine --Dispatch(ev1..evN)--> state
//
// Every operation is deterministic given the state it runs on, so replaying
// the journal over the base snapshot reproduces the head state. Verify
// checks this by comparing snapshot digests.
//
// Only successful operations are journalled. A replayed event that fails
// means the journal and the base snapshot do not belong together.

// Replay dispatches events in order. The engine should have no journal
// attached, or the replayed events would be journalled a second time.
func (e *Engine) Replay(ctx context.Context, events []domain.Event) error {
	for _, ev := range events {
		if _, err := e.Dispatch(ctx, ev.Op, ev.Actor, ev.Args); err != nil {
			return fmt.Errorf("replay event %d (%s by %s): %w", ev.Seq, ev.Op, ev.Actor, err)
		}
	}
	return nil
}

// VerifyResult is the outcome of a replay verification.
type VerifyResult struct {
	Events       int    `json:"events"`
	ReplayDigest string `json:"replay_digest"`
	HeadDigest   string `json:"head_digest"`
	Match        bool   `json:"match"`
}

// Verify loads base into a fresh engine, replays events over it and compares
// the resulting digest with head's.
func Verify(ctx context.Context, e *Engine, base, head domain.Snapshot, events []domain.Event) (VerifyResult, error) {
	if err := e.Load(base); err != nil {
		return VerifyResult{}, fmt.Errorf("load base snapshot: %w", err)
	}
	if err := e.Replay(ctx, events); err != nil {
		return VerifyResult{}, err
	}

	got, err := e.Snapshot().Digest()
	if err != nil {
		return VerifyResult{}, err
	}
	want, err := head.Digest()
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Events:       len(events),
		ReplayDigest: got,
		HeadDigest:   want,
		Match:        got == want,
	}, nil
}
