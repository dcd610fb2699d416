package engine

import (
	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/registry"
)

// Lookup helpers shared by the operations. Each returns a domain.Error with
// the identifiers attached as details, so callers and logs can tell which
// record was missing.

func lookupUser(txn *registry.Txn, nric string) (domain.User, error) {
	u, ok := txn.User(nric)
	if !ok {
		return domain.User{}, domain.NewError(domain.CodeUserNotFound, "no user %s", nric).With("nric", nric)
	}
	return u, nil
}

func lookupProject(txn *registry.Txn, name string) (domain.Project, error) {
	p, ok := txn.Project(name)
	if !ok {
		return domain.Project{}, domain.NewError(domain.CodeProjectNotFound, "no project %q", name).With("project", name)
	}
	return p, nil
}

// lookupManagedProject resolves a project the manager must own.
func lookupManagedProject(txn *registry.Txn, managerNRIC, name string) (domain.Project, error) {
	if _, err := lookupUser(txn, managerNRIC); err != nil {
		return domain.Project{}, err
	}
	p, err := lookupProject(txn, name)
	if err != nil {
		return domain.Project{}, err
	}
	if p.ManagerNRIC != managerNRIC {
		return domain.Project{}, notManaging(managerNRIC, name)
	}
	return p, nil
}

func notManaging(managerNRIC, project string) error {
	return domain.NewError(domain.CodeNotManaging, "%s does not manage %q", managerNRIC, project).
		With("manager", managerNRIC).
		With("project", project)
}

func roleNotPermitted(u domain.User, action string) error {
	return domain.NewError(domain.CodeRoleNotPermitted, "%s (%s) may not %s", u.NRIC, u.Role, action).
		With("nric", u.NRIC).
		With("role", string(u.Role))
}

func invalidDecision(d domain.Decision) error {
	return domain.NewError(domain.CodeInvalidInput, "decision must be %s or %s, got %q", domain.Approve, domain.Reject, d)
}
