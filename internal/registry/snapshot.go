package registry

import (
	"fmt"

	"github.com/roach88/bto/internal/domain"
)

// Import inserts every record of snap into the transaction. Duplicate primary
// keys, either within snap or against rows already present, fail with
// INVALID_INPUT and nothing is kept once the caller aborts.
func (t *Txn) Import(snap domain.Snapshot) error {
	for _, u := range snap.Users {
		if _, ok := t.User(u.NRIC); ok {
			return domain.NewError(domain.CodeInvalidInput, "duplicate user %s", u.NRIC)
		}
		if err := t.PutUser(u); err != nil {
			return err
		}
	}
	for _, p := range snap.Projects {
		if _, ok := t.Project(p.Name); ok {
			return domain.NewError(domain.CodeInvalidInput, "duplicate project %q", p.Name)
		}
		if err := t.PutProject(p); err != nil {
			return err
		}
	}
	for _, a := range snap.Applications {
		if _, ok := t.Application(a.ApplicantNRIC); ok {
			return domain.NewError(domain.CodeInvalidInput, "duplicate application for %s", a.ApplicantNRIC)
		}
		if err := t.PutApplication(a); err != nil {
			return err
		}
	}
	for _, r := range snap.Registrations {
		if _, ok := t.Registration(r.OfficerNRIC, r.ProjectName); ok {
			return domain.NewError(domain.CodeInvalidInput,
				"duplicate registration %s/%s", r.OfficerNRIC, r.ProjectName)
		}
		if err := t.PutRegistration(r); err != nil {
			return err
		}
	}
	return nil
}

// Export returns the transaction's view as a sorted snapshot.
func (t *Txn) Export() domain.Snapshot {
	snap := domain.Snapshot{
		Users:         t.Users(),
		Projects:      t.Projects(),
		Applications:  t.Applications(),
		Registrations: t.Registrations(),
	}
	snap.Sort()
	return snap
}

// Clear deletes every row from every table.
func (t *Txn) Clear() error {
	for _, table := range []string{TableUsers, TableProjects, TableApplications, TableRegistrations} {
		if _, err := t.txn.DeleteAll(table, indexID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
