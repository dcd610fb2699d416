package engine

import (
	"context"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/registry"
)

// RegisterOfficer files a PENDING registration for the officer to handle
// projectName. A REJECTED registration for the same project is replaced.
//
// Errors: USER_NOT_FOUND, ROLE_NOT_PERMITTED, PROJECT_NOT_FOUND,
// ALREADY_ACTIVE_REGISTRATION (a PENDING or APPROVED registration for any
// project), ALREADY_APPLIED_AS_APPLICANT (an application of any status for
// this project).
func (e *Engine) RegisterOfficer(ctx context.Context, officerID, projectName string) error {
	officerID = domain.NormalizeNRIC(officerID)
	args := ProjectArgs{Project: projectName}

	return e.write(ctx, OpRegisterOfficer, officerID, args, func(txn *registry.Txn) error {
		officer, err := lookupUser(txn, officerID)
		if err != nil {
			return err
		}
		if !officer.IsOfficer() {
			return roleNotPermitted(officer, "register to handle projects")
		}
		if _, err := lookupProject(txn, projectName); err != nil {
			return err
		}
		for _, reg := range txn.RegistrationsByOfficer(officerID) {
			if reg.Active() {
				return domain.NewError(domain.CodeAlreadyActiveRegistration,
					"%s already has a %s registration for %q", officerID, reg.Status, reg.ProjectName).
					With("officer", officerID).
					With("project", reg.ProjectName)
			}
		}
		if app, ok := txn.Application(officerID); ok && app.ProjectName == projectName {
			return domain.NewError(domain.CodeAlreadyAppliedAsApplicant,
				"%s has applied for a flat in %q", officerID, projectName).
				With("officer", officerID).
				With("project", projectName)
		}

		return txn.PutRegistration(domain.OfficerRegistration{
			OfficerNRIC: officerID,
			ProjectName: projectName,
			Status:      domain.RegistrationPending,
		})
	})
}

// ProcessOfficerRegistration decides a PENDING registration. Approval takes
// an officer slot, appends the officer to the roster and assigns the project
// to the officer. Rejection has no effect on the project.
//
// Approval is not reversible: no operation gives a slot back.
//
// Errors: INVALID_INPUT, USER_NOT_FOUND, PROJECT_NOT_FOUND, NOT_MANAGING,
// REGISTRATION_NOT_FOUND, NOT_PENDING_OR_ALREADY_PROCESSED,
// NO_SLOTS_AVAILABLE.
func (e *Engine) ProcessOfficerRegistration(ctx context.Context, managerID, officerID, projectName string, d domain.Decision) error {
	managerID = domain.NormalizeNRIC(managerID)
	officerID = domain.NormalizeNRIC(officerID)
	args := ProcessArgs{Officer: officerID, Project: projectName, Decision: d}

	return e.write(ctx, OpProcessRegistration, managerID, args, func(txn *registry.Txn) error {
		if !d.Valid() {
			return invalidDecision(d)
		}
		p, err := lookupManagedProject(txn, managerID, projectName)
		if err != nil {
			return err
		}
		reg, ok := txn.Registration(officerID, projectName)
		if !ok {
			return domain.NewError(domain.CodeRegistrationNotFound,
				"%s has not registered for %q", officerID, projectName).
				With("officer", officerID).
				With("project", projectName)
		}
		if reg.Status != domain.RegistrationPending {
			return domain.NewError(domain.CodeNotPendingOrProcessed,
				"registration %s/%q is already %s", officerID, projectName, reg.Status).
				With("officer", officerID).
				With("project", projectName)
		}

		if d == domain.Reject {
			reg.Status = domain.RegistrationRejected
			return txn.PutRegistration(reg)
		}

		if p.OfficerSlots >= p.MaxOfficerSlots {
			return domain.NewError(domain.CodeNoSlotsAvailable,
				"project %q has all %d officer slots filled", projectName, p.MaxOfficerSlots).
				With("project", projectName)
		}
		officer, err := lookupUser(txn, officerID)
		if err != nil {
			return err
		}

		p.OfficerSlots++
		if !p.HasOfficer(officerID) {
			p.Officers = append(p.Officers, officerID)
		}
		officer.AssignedProject = projectName
		reg.Status = domain.RegistrationApproved

		if err := txn.PutProject(p); err != nil {
			return err
		}
		if err := txn.PutUser(officer); err != nil {
			return err
		}
		return txn.PutRegistration(reg)
	})
}
