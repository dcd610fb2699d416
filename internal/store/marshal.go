package store

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/roach88/bto/internal/domain"
)

// marshalArgs compacts event args to JSON TEXT for storage.
// Empty args are stored as "{}" so the column is never blank.
func marshalArgs(args []byte) (string, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, args); err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return buf.String(), nil
}

// marshalSnapshot encodes a snapshot body as JSON TEXT.
func marshalSnapshot(snap domain.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// unmarshalSnapshot parses a snapshot body.
func unmarshalSnapshot(data string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
