package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bto/internal/domain"
)

// Append writes an event to the journal. It implements engine.Journal.
//
// Unlike the snapshot table, events are never overwritten: a duplicate seq or
// id is an error, because it means two writers share a journal.
func (s *Store) Append(ctx context.Context, ev domain.Event) error {
	args, err := marshalArgs(ev.Args)
	if err != nil {
		return fmt.Errorf("append event %d: %w", ev.Seq, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (seq, id, op, actor, args)
		VALUES (?, ?, ?, ?, ?)
	`,
		ev.Seq,
		ev.ID,
		ev.Op,
		ev.Actor,
		args,
	)
	if err != nil {
		return fmt.Errorf("append event %d: %w", ev.Seq, err)
	}
	return nil
}

// ReadEvents returns the events with seq greater than afterSeq in seq order.
// Pass 0 to read the whole journal.
//
// Returns an empty slice (not nil) if there are no such events.
func (s *Store) ReadEvents(ctx context.Context, afterSeq int64) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, op, actor, args
		FROM events
		WHERE seq > ?
		ORDER BY seq ASC
	`, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return scanEvents(rows)
}

// ReadEventsByOp returns the events of one operation in seq order.
func (s *Store) ReadEventsByOp(ctx context.Context, op string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, op, actor, args
		FROM events
		WHERE op = ?
		ORDER BY seq ASC
	`, op)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return scanEvents(rows)
}

// LastSeq returns the highest journalled seq, or 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var (
			ev   domain.Event
			args string
		)
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.Op, &ev.Actor, &args); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Args = []byte(args)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// isNoRows reports whether err is sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
