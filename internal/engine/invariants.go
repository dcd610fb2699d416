package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/bto/internal/domain"
)

// CheckInvariants verifies the state-wide rules every committed state obeys:
//
//   - 0 <= remaining <= total for every flat type
//   - officer slots never exceed the project's limit
//   - an applicant has at most one active application
//   - an officer has at most one active registration
//
// It returns every violation joined into one error, or nil.
func CheckInvariants(s domain.Snapshot) error {
	var errs []error

	for _, p := range s.Projects {
		for _, label := range p.FlatTypeLabels() {
			ft := p.FlatTypes[label]
			if !ft.Consistent() {
				errs = append(errs, fmt.Errorf("project %q %s: remaining %d outside [0, %d]",
					p.Name, label, ft.RemainingUnits, ft.TotalUnits))
			}
		}
		if p.OfficerSlots < 0 || p.OfficerSlots > p.MaxOfficerSlots {
			errs = append(errs, fmt.Errorf("project %q: %d officer slots used of %d",
				p.Name, p.OfficerSlots, p.MaxOfficerSlots))
		}
	}

	active := make(map[string]int)
	for _, a := range s.Applications {
		if a.Active() {
			active[a.ApplicantNRIC]++
			if active[a.ApplicantNRIC] == 2 {
				errs = append(errs, fmt.Errorf("applicant %s has more than one active application", a.ApplicantNRIC))
			}
		}
	}

	registered := make(map[string]int)
	for _, r := range s.Registrations {
		if r.Active() {
			registered[r.OfficerNRIC]++
			if registered[r.OfficerNRIC] == 2 {
				errs = append(errs, fmt.Errorf("officer %s has more than one active registration", r.OfficerNRIC))
			}
		}
	}

	return errors.Join(errs...)
}

// CheckReferences verifies that every record in s points at records that
// exist and have the right role, and that NRICs are stored normalized:
//
//   - applications name a known applicant or officer, project and flat type
//   - registrations name a known officer and project
//   - projects are managed by a manager and list only officers holding an
//     APPROVED registration for them, one per filled slot
//   - assigned projects exist
//
// It returns every violation joined into one error, or nil.
func CheckReferences(s domain.Snapshot) error {
	var errs []error
	canonical := func(what, nric string) bool {
		if nric != domain.NormalizeNRIC(nric) {
			errs = append(errs, fmt.Errorf("%s %q is not normalized", what, nric))
			return false
		}
		return true
	}

	users := make(map[string]domain.User, len(s.Users))
	for _, u := range s.Users {
		if canonical("user", u.NRIC) {
			users[u.NRIC] = u
		}
	}
	projects := make(map[string]domain.Project, len(s.Projects))
	for _, p := range s.Projects {
		projects[p.Name] = p
	}

	for _, u := range s.Users {
		if u.AssignedProject == "" {
			continue
		}
		if _, ok := projects[u.AssignedProject]; !ok {
			errs = append(errs, fmt.Errorf("user %s: assigned project %q does not exist", u.NRIC, u.AssignedProject))
		}
	}

	approved := make(map[string]bool)
	for _, r := range s.Registrations {
		if !canonical("registration officer", r.OfficerNRIC) {
			continue
		}
		if u, ok := users[r.OfficerNRIC]; !ok || !u.IsOfficer() {
			errs = append(errs, fmt.Errorf("registration %s/%q: %s is not an officer", r.OfficerNRIC, r.ProjectName, r.OfficerNRIC))
		}
		if _, ok := projects[r.ProjectName]; !ok {
			errs = append(errs, fmt.Errorf("registration %s/%q: project does not exist", r.OfficerNRIC, r.ProjectName))
		}
		if r.Status == domain.RegistrationApproved {
			approved[r.OfficerNRIC+"/"+r.ProjectName] = true
		}
	}

	for _, p := range s.Projects {
		if canonical("manager", p.ManagerNRIC) {
			if u, ok := users[p.ManagerNRIC]; !ok || !u.IsManager() {
				errs = append(errs, fmt.Errorf("project %q: %s is not a manager", p.Name, p.ManagerNRIC))
			}
		}
		if len(p.Officers) != p.OfficerSlots {
			errs = append(errs, fmt.Errorf("project %q: %d officers on the roster but %d slots filled",
				p.Name, len(p.Officers), p.OfficerSlots))
		}
		for _, o := range p.Officers {
			if canonical("roster officer", o) && !approved[o+"/"+p.Name] {
				errs = append(errs, fmt.Errorf("project %q: rostered officer %s has no approved registration", p.Name, o))
			}
			delete(approved, o+"/"+p.Name)
		}
	}
	for key := range approved {
		errs = append(errs, fmt.Errorf("approved registration %s is missing from the project roster", key))
	}

	for _, a := range s.Applications {
		if !canonical("applicant", a.ApplicantNRIC) {
			continue
		}
		if u, ok := users[a.ApplicantNRIC]; !ok || !u.CanApply() {
			errs = append(errs, fmt.Errorf("application by %s: not a known applicant", a.ApplicantNRIC))
		}
		p, ok := projects[a.ProjectName]
		if !ok {
			errs = append(errs, fmt.Errorf("application by %s: project %q does not exist", a.ApplicantNRIC, a.ProjectName))
			continue
		}
		if _, ok := p.FlatType(a.FlatType); !ok {
			errs = append(errs, fmt.Errorf("application by %s: %q offers no %s", a.ApplicantNRIC, a.ProjectName, a.FlatType))
		}
	}

	return errors.Join(errs...)
}
