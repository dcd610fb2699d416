package domain

import "encoding/json"

// Event records one committed mutation.
//
// Events are appended by the engine inside the write transaction that made
// the change, so the journal order equals the commit order. Seq comes from the
// engine's logical clock, never from wall time. Args is the JSON encoding of
// the operation's argument struct and is enough to re-run the operation
// during replay.
type Event struct {
	ID    string          `json:"id"`
	Seq   int64           `json:"seq"`
	Op    string          `json:"op"`
	Actor string          `json:"actor,omitempty"`
	Args  json.RawMessage `json:"args"`
}
