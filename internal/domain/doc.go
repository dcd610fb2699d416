// Package domain provides the record types of the flat-allocation engine.
//
// All other internal packages import domain; domain imports nothing
// internal. It holds:
//   - User, Project, FlatType, Application and OfficerRegistration
//   - the unit ledger on FlatType (Reserve, Release, Resize)
//   - the rule-violation taxonomy (Error, ErrorCode and sentinels)
//   - Snapshot and its canonical digest
//   - Event, the journal record of one committed mutation
//
// Key constraints:
//   - NRIC is the only identity key for users
//   - 0 ≤ RemainingUnits ≤ TotalUnits on every FlatType
//   - OfficerSlots ≤ MaxOfficerSlots on every Project
//   - all JSON tags use snake_case
package domain
