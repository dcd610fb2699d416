// Package store provides SQLite-backed durable storage for the engine.
//
// The store holds two things:
//   - Events: the append-only journal of committed operations
//   - Snapshots: the base state the journal starts from and the latest head
//
// # Ordering
//
// Events are ordered by seq, the engine's logical clock, never by wall time.
// Every query orders by seq so replays read events in commit order.
//
// # Recovery
//
// A process restarts by loading the head snapshot and resuming the clock at
// LastSeq. The journal together with the base snapshot reproduces the head;
// replay verification checks exactly that.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection: SQLite admits a single writer
package store
