// Package engine implements the BTO flat-allocation engine.
//
// The engine owns the application lifecycle, the unit ledger of every flat
// type, the officer registration workflow and the rule that a manager runs
// one project at a time. Callers invoke operations with the acting NRIC and
// the target ids; the engine validates, mutates and reports a typed result.
//
// ARCHITECTURE:
//
// Registry-backed transactions:
// State lives in a registry.Registry (go-memdb). Each mutating operation is
// one write transaction:
//  1. Look up the records involved (copies, never shared pointers)
//  2. Validate role, eligibility, ownership and state
//  3. Apply ledger and record changes to the copies and re-insert them
//  4. Append the event to the journal, if one is configured
//  5. Commit
//
// Any error in steps 1-4 aborts the transaction, so nobody ever observes a
// reserved unit without its application or a roster entry without its slot.
//
// Writers are serialized by the registry's writer lock. Readers work on
// immutable snapshots and do not block.
//
// Errors:
// Rule violations are *domain.Error values with stable codes; compare with
// errors.Is against the domain sentinels. Journal failures are wrapped and
// returned as-is.
//
// Journal and replay:
// Every committed mutation produces a domain.Event stamped by the logical
// Clock. Dispatch runs an operation from its name and JSON arguments, which
// is how the CLI invokes operations and how Replay re-applies a journal.
package engine
