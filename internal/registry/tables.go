package registry

import (
	"github.com/roach88/bto/internal/domain"
)

// Users

// User returns the user with the given NRIC.
func (t *Txn) User(nric string) (domain.User, bool) {
	obj := t.first(TableUsers, indexID, nric)
	if obj == nil {
		return domain.User{}, false
	}
	return *obj.(*domain.User), true
}

// Users returns every user ordered by NRIC.
func (t *Txn) Users() []domain.User {
	return collect[domain.User](t.get(TableUsers, indexID))
}

// UsersByRole returns the users holding role, ordered by NRIC.
func (t *Txn) UsersByRole(role domain.Role) []domain.User {
	return collect[domain.User](t.get(TableUsers, indexRole, string(role)))
}

// PutUser inserts or replaces a user.
func (t *Txn) PutUser(u domain.User) error {
	return t.insert(TableUsers, &u)
}

// Projects

// Project returns a deep copy of the named project.
func (t *Txn) Project(name string) (domain.Project, bool) {
	obj := t.first(TableProjects, indexID, name)
	if obj == nil {
		return domain.Project{}, false
	}
	return obj.(*domain.Project).Clone(), true
}

// Projects returns every project ordered by name.
func (t *Txn) Projects() []domain.Project {
	return cloneProjects(collect[domain.Project](t.get(TableProjects, indexID)))
}

// VisibleProjects returns projects whose visibility flag is on, ordered by
// name.
func (t *Txn) VisibleProjects() []domain.Project {
	return cloneProjects(collect[domain.Project](t.get(TableProjects, indexVisible, true)))
}

// ProjectsManagedBy returns the projects created by the given manager.
func (t *Txn) ProjectsManagedBy(managerNRIC string) []domain.Project {
	return cloneProjects(collect[domain.Project](t.get(TableProjects, indexManager, managerNRIC)))
}

// PutProject inserts or replaces a project. The project is cloned so later
// changes to p do not reach the stored record.
func (t *Txn) PutProject(p domain.Project) error {
	cp := p.Clone()
	return t.insert(TableProjects, &cp)
}

// DeleteProject removes the named project. Missing projects are ignored.
func (t *Txn) DeleteProject(name string) error {
	obj := t.first(TableProjects, indexID, name)
	if obj == nil {
		return nil
	}
	return t.delete(TableProjects, obj)
}

func cloneProjects(ps []domain.Project) []domain.Project {
	for i := range ps {
		ps[i] = ps[i].Clone()
	}
	return ps
}

// Applications

// Application returns the application record held by an applicant.
func (t *Txn) Application(applicantNRIC string) (domain.Application, bool) {
	obj := t.first(TableApplications, indexID, applicantNRIC)
	if obj == nil {
		return domain.Application{}, false
	}
	return *obj.(*domain.Application), true
}

// Applications returns every application ordered by applicant NRIC.
func (t *Txn) Applications() []domain.Application {
	return collect[domain.Application](t.get(TableApplications, indexID))
}

// ApplicationsForProject returns the applications that reference project.
func (t *Txn) ApplicationsForProject(project string) []domain.Application {
	return collect[domain.Application](t.get(TableApplications, indexProject, project))
}

// ApplicationsWithStatus returns the applications for project in status.
func (t *Txn) ApplicationsWithStatus(project string, status domain.ApplicationStatus) []domain.Application {
	return collect[domain.Application](t.get(TableApplications, indexProjectStatus, project, string(status)))
}

// PutApplication inserts or replaces the applicant's application record.
func (t *Txn) PutApplication(a domain.Application) error {
	return t.insert(TableApplications, &a)
}

// DeleteApplication removes the applicant's record. Missing records are
// ignored.
func (t *Txn) DeleteApplication(applicantNRIC string) error {
	obj := t.first(TableApplications, indexID, applicantNRIC)
	if obj == nil {
		return nil
	}
	return t.delete(TableApplications, obj)
}

// Registrations

// Registration returns the officer's registration for project.
func (t *Txn) Registration(officerNRIC, project string) (domain.OfficerRegistration, bool) {
	obj := t.first(TableRegistrations, indexID, officerNRIC, project)
	if obj == nil {
		return domain.OfficerRegistration{}, false
	}
	return *obj.(*domain.OfficerRegistration), true
}

// Registrations returns every registration ordered by (officer, project).
func (t *Txn) Registrations() []domain.OfficerRegistration {
	return collect[domain.OfficerRegistration](t.get(TableRegistrations, indexID))
}

// RegistrationsByOfficer returns the registrations filed by an officer.
func (t *Txn) RegistrationsByOfficer(officerNRIC string) []domain.OfficerRegistration {
	return collect[domain.OfficerRegistration](t.get(TableRegistrations, indexOfficer, officerNRIC))
}

// RegistrationsForProject returns the registrations that target project.
func (t *Txn) RegistrationsForProject(project string) []domain.OfficerRegistration {
	return collect[domain.OfficerRegistration](t.get(TableRegistrations, indexProject, project))
}

// PutRegistration inserts or replaces a registration.
func (t *Txn) PutRegistration(r domain.OfficerRegistration) error {
	return t.insert(TableRegistrations, &r)
}

// DeleteRegistration removes a registration. Missing rows are ignored.
func (t *Txn) DeleteRegistration(officerNRIC, project string) error {
	obj := t.first(TableRegistrations, indexID, officerNRIC, project)
	if obj == nil {
		return nil
	}
	return t.delete(TableRegistrations, obj)
}
