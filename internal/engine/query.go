package engine

import (
	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/eligibility"
)

// QueryAvailableProjects returns the visible projects in which profile is
// eligible for at least one flat type, ordered by name. Each project's flat
// types are narrowed to the eligible ones. Every call reads a fresh snapshot
// and returns a new slice; managers get nothing.
func (e *Engine) QueryAvailableProjects(profile domain.User) []domain.Project {
	if !profile.CanApply() {
		return nil
	}
	txn := e.reg.Read()
	handling := make(map[string]bool)
	if profile.IsOfficer() {
		for _, r := range txn.RegistrationsByOfficer(domain.NormalizeNRIC(profile.NRIC)) {
			if r.Active() {
				handling[r.ProjectName] = true
			}
		}
	}
	var out []domain.Project
	for _, p := range txn.VisibleProjects() {
		if handling[p.Name] {
			continue
		}
		labels := eligibility.EligibleLabels(profile, p)
		if len(labels) == 0 {
			continue
		}
		narrowed := make(map[string]domain.FlatType, len(labels))
		for _, label := range labels {
			narrowed[label] = p.FlatTypes[label]
		}
		p.FlatTypes = narrowed
		out = append(out, p)
	}
	return out
}

// User returns the user with the given NRIC.
func (e *Engine) User(nric string) (domain.User, error) {
	return lookupUser(e.reg.Read(), domain.NormalizeNRIC(nric))
}

// Project returns the named project.
func (e *Engine) Project(name string) (domain.Project, error) {
	return lookupProject(e.reg.Read(), name)
}

// Projects returns every project ordered by name, visible or not.
func (e *Engine) Projects() []domain.Project {
	return e.reg.Read().Projects()
}

// ProjectsManagedBy returns the projects created by a manager.
func (e *Engine) ProjectsManagedBy(managerID string) []domain.Project {
	return e.reg.Read().ProjectsManagedBy(domain.NormalizeNRIC(managerID))
}

// Application returns the applicant's application record, active or not.
func (e *Engine) Application(applicantID string) (domain.Application, error) {
	applicantID = domain.NormalizeNRIC(applicantID)
	app, ok := e.reg.Read().Application(applicantID)
	if !ok {
		return domain.Application{}, domain.NewError(domain.CodeApplicationNotFound,
			"%s has no application", applicantID).With("applicant", applicantID)
	}
	return app, nil
}

// ApplicationsForProject returns the project's applications, optionally
// restricted to the given statuses.
func (e *Engine) ApplicationsForProject(projectName string, statuses ...domain.ApplicationStatus) []domain.Application {
	txn := e.reg.Read()
	if len(statuses) == 0 {
		return txn.ApplicationsForProject(projectName)
	}
	var out []domain.Application
	for _, s := range statuses {
		out = append(out, txn.ApplicationsWithStatus(projectName, s)...)
	}
	return out
}

// Registrations returns the registrations filed by an officer.
func (e *Engine) Registrations(officerID string) []domain.OfficerRegistration {
	return e.reg.Read().RegistrationsByOfficer(domain.NormalizeNRIC(officerID))
}

// RegistrationsForProject returns the registrations that target a project.
func (e *Engine) RegistrationsForProject(projectName string) []domain.OfficerRegistration {
	return e.reg.Read().RegistrationsForProject(projectName)
}

// Receipt returns the booking receipt for an applicant whose flat was booked
// in the officer's assigned project.
//
// Errors: USER_NOT_FOUND, ROLE_NOT_PERMITTED, APPLICATION_NOT_FOUND.
func (e *Engine) Receipt(officerID, applicantID string) (domain.Receipt, error) {
	officerID = domain.NormalizeNRIC(officerID)
	applicantID = domain.NormalizeNRIC(applicantID)
	txn := e.reg.Read()

	officer, err := lookupUser(txn, officerID)
	if err != nil {
		return domain.Receipt{}, err
	}
	if !officer.IsOfficer() {
		return domain.Receipt{}, roleNotPermitted(officer, "issue receipts")
	}
	app, ok := txn.Application(applicantID)
	if !ok || app.Status != domain.StatusBooked || app.ProjectName != officer.AssignedProject {
		return domain.Receipt{}, domain.NewError(domain.CodeApplicationNotFound,
			"%s has no booked flat in %q", applicantID, officer.AssignedProject).
			With("applicant", applicantID)
	}
	applicant, err := lookupUser(txn, applicantID)
	if err != nil {
		return domain.Receipt{}, err
	}
	p, err := lookupProject(txn, app.ProjectName)
	if err != nil {
		return domain.Receipt{}, err
	}
	ft, _ := p.FlatType(app.FlatType)

	return domain.Receipt{
		ApplicantNRIC: applicant.NRIC,
		ApplicantName: applicant.Name,
		Age:           applicant.Age,
		MaritalStatus: applicant.MaritalStatus,
		ProjectName:   p.Name,
		Neighborhood:  p.Neighborhood,
		FlatType:      app.FlatType,
		Price:         ft.Price,
	}, nil
}
