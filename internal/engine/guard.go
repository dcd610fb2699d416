package engine

import (
	"time"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/registry"
)

// CanCreate reports whether manager may open a project running from
// openDate to closeDate. Only the manager's currently assigned project is
// compared, using the inclusive overlap test
// openDate <= assigned.Close && closeDate >= assigned.Open.
// A manager with no assignment, or whose assigned project no longer exists,
// may always create.
func CanCreate(manager domain.User, assigned *domain.Project, openDate, closeDate time.Time) bool {
	if manager.AssignedProject == "" || assigned == nil {
		return true
	}
	return !assigned.Overlaps(openDate, closeDate)
}

// checkCreate applies CanCreate against the registry.
func checkCreate(txn *registry.Txn, manager domain.User, openDate, closeDate time.Time) error {
	if manager.AssignedProject == "" {
		return nil
	}
	assigned, ok := txn.Project(manager.AssignedProject)
	if !ok {
		return nil
	}
	if CanCreate(manager, &assigned, openDate, closeDate) {
		return nil
	}
	return domain.NewError(domain.CodeOverlappingAssignment,
		"%s already runs %q from %s to %s", manager.NRIC, assigned.Name,
		assigned.OpenDate.Format(domain.DateLayout), assigned.CloseDate.Format(domain.DateLayout)).
		With("manager", manager.NRIC).
		With("project", assigned.Name)
}
