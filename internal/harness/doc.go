// Package harness runs scripted scenarios against the allocation engine.
//
// A scenario seeds a fresh engine, dispatches a list of operations as given
// users and checks the outcome of each, then asserts on the final state.
// Every run also replays its own journal over the seed and fails if the
// replay does not reproduce the final state.
//
// # Scenario Format
//
//	name: officer_last_slot
//	description: "The second approval for a one-slot project is refused"
//	seed_file: ../../../seed/testdata/sample.yaml
//	steps:
//	  - op: officer.register
//	    as: T2109876H
//	    args: {project: Birch Grove}
//	  - op: officer.process
//	    as: S5678901G
//	    args: {officer: T2109876H, project: Birch Grove, decision: APPROVE}
//	  - op: application.submit
//	    as: S1234567A
//	    args: {project: Birch Grove, flat_type: 3-Room}
//	    expect: {error: NOT_ELIGIBLE}
//	assertions:
//	  - {type: officer_slots, project: Birch Grove, count: 1}
//	  - {type: invariants}
//
// The seed may instead be given inline under seed:, in the seed file format.
// A step without expect must succeed. expect.result is matched against the
// operation's JSON result, objects as subsets.
//
// # Assertion Types
//
//   - application_status: applicant's application has status
//   - remaining_units: project's flat_type has count units left
//   - officer_slots: project has count officer slots filled
//   - officer_roster: project's approved officers are exactly officers
//   - registration_status: officer's registration for project has status
//   - invariants: the inventory, roster and single-active rules all hold
//
// # Deterministic Testing
//
// Event ids come from a sequential generator and sequence numbers from a
// fresh logical clock, so the trace of a scenario is identical across runs
// and can be compared with a golden file (see RunWithGolden).
package harness
