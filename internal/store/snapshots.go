package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bto/internal/domain"
)

// Snapshot kinds.
const (
	// KindBase is the state the journal starts from.
	KindBase = "base"
	// KindHead is the state after the last journalled event.
	KindHead = "head"
)

// ErrNoSnapshot is returned by LoadSnapshot when no snapshot of the
// requested kind has been saved.
var ErrNoSnapshot = errors.New("no snapshot")

// SavedSnapshot is a snapshot together with the seq it was taken at.
type SavedSnapshot struct {
	Kind     string
	Seq      int64
	Digest   string
	Snapshot domain.Snapshot
}

// SaveSnapshot stores snap as the snapshot of the given kind, replacing any
// previous one. seq is the last event the snapshot includes.
func (s *Store) SaveSnapshot(ctx context.Context, kind string, seq int64, snap domain.Snapshot) error {
	if kind != KindBase && kind != KindHead {
		return fmt.Errorf("save snapshot: unknown kind %q", kind)
	}
	digest, err := snap.Digest()
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}
	body, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (kind, seq, digest, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			seq = excluded.seq,
			digest = excluded.digest,
			body = excluded.body
	`, kind, seq, digest, body)
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}
	return nil
}

// LoadSnapshot returns the snapshot of the given kind. The body is checked
// against the stored digest.
//
// Returns ErrNoSnapshot if none was saved.
func (s *Store) LoadSnapshot(ctx context.Context, kind string) (SavedSnapshot, error) {
	var (
		saved = SavedSnapshot{Kind: kind}
		body  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, digest, body FROM snapshots WHERE kind = ?
	`, kind).Scan(&saved.Seq, &saved.Digest, &body)
	if isNoRows(err) {
		return SavedSnapshot{}, fmt.Errorf("load %s snapshot: %w", kind, ErrNoSnapshot)
	}
	if err != nil {
		return SavedSnapshot{}, fmt.Errorf("load %s snapshot: %w", kind, err)
	}

	snap, err := unmarshalSnapshot(body)
	if err != nil {
		return SavedSnapshot{}, fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	digest, err := snap.Digest()
	if err != nil {
		return SavedSnapshot{}, fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	if digest != saved.Digest {
		return SavedSnapshot{}, fmt.Errorf("load %s snapshot: body digest %s does not match stored %s",
			kind, digest, saved.Digest)
	}
	saved.Snapshot = snap
	return saved, nil
}
