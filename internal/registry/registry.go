// Package registry holds the engine's in-memory state: users, projects,
// applications and officer registrations.
//
// The four registries are tables of a single go-memdb database. go-memdb
// gives the engine what it needs from a store:
//
//   - Write transactions are serialized by one writer lock for the whole
//     database, so every mutating engine operation is linearizable.
//   - Read transactions see an immutable snapshot and never block writers.
//   - A write transaction either commits every change or none of them.
//
// Stored records must never be mutated after insertion. Getters return
// copies, and writers re-insert a modified copy.
package registry

import (
	"fmt"

	"github.com/hashicorp/go-memdb"
)

// Registry is the set of in-memory tables backing the engine.
// Safe for concurrent use.
type Registry struct {
	db *memdb.MemDB
}

// New creates an empty registry.
func New() (*Registry, error) {
	db, err := memdb.NewMemDB(Schema())
	if err != nil {
		return nil, fmt.Errorf("create registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Read starts a read-only transaction over a consistent snapshot.
// Read transactions need no Commit; Abort is optional.
func (r *Registry) Read() *Txn {
	return &Txn{txn: r.db.Txn(false)}
}

// Write starts a write transaction, blocking until no other writer holds the
// database. Callers must finish it with Commit or Abort:
//
//	txn := reg.Write()
//	defer txn.Abort()
//	...
//	txn.Commit()
func (r *Registry) Write() *Txn {
	txn := r.db.Txn(true)
	txn.TrackChanges()
	return &Txn{txn: txn, write: true}
}

// Txn is a registry transaction with typed accessors for each table.
type Txn struct {
	txn   *memdb.Txn
	write bool
}

// Writable reports whether the transaction may mutate the registry.
func (t *Txn) Writable() bool { return t.write }

// Abort discards the transaction. Calling Abort after Commit is a no-op.
func (t *Txn) Abort() {
	t.txn.Abort()
}

// Commit applies a write transaction and returns the changes it made.
// On a read transaction Commit is a no-op and returns nil.
func (t *Txn) Commit() []Change {
	if !t.write {
		return nil
	}
	changes := t.changes()
	t.txn.Commit()
	return changes
}

// ChangeKind classifies a committed row change.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change describes one row touched by a write transaction.
// Before is nil for inserts and After is nil for deletes.
type Change struct {
	Table  string
	Kind   ChangeKind
	Before any
	After  any
}

func (t *Txn) changes() []Change {
	raw := t.txn.Changes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]Change, 0, len(raw))
	for _, c := range raw {
		kind := ChangeUpdate
		switch {
		case c.Created():
			kind = ChangeInsert
		case c.Deleted():
			kind = ChangeDelete
		}
		out = append(out, Change{Table: c.Table, Kind: kind, Before: c.Before, After: c.After})
	}
	return out
}

// first looks up a single row. Index errors mean the schema is being misused
// and are programmer errors.
func (t *Txn) first(table, index string, args ...any) any {
	obj, err := t.txn.First(table, index, args...)
	if err != nil {
		panic(fmt.Sprintf("registry: %s.%s lookup: %v", table, index, err))
	}
	return obj
}

func (t *Txn) get(table, index string, args ...any) memdb.ResultIterator {
	it, err := t.txn.Get(table, index, args...)
	if err != nil {
		panic(fmt.Sprintf("registry: %s.%s scan: %v", table, index, err))
	}
	return it
}

func (t *Txn) insert(table string, obj any) error {
	if err := t.txn.Insert(table, obj); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (t *Txn) delete(table string, obj any) error {
	if err := t.txn.Delete(table, obj); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// collect drains an iterator of *T rows into a slice of copies, in index
// order.
func collect[T any](it memdb.ResultIterator) []T {
	var out []T
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*T))
	}
	return out
}
