package engine

import (
	"context"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/eligibility"
	"github.com/roach88/bto/internal/registry"
)

// Application lifecycle:
//
//	(none)               --submit-->          PENDING (reserves a unit)
//	PENDING              --approve-->         SUCCESSFUL
//	PENDING              --reject-->          UNSUCCESSFUL (releases the unit)
//	PENDING|SUCCESSFUL   --requestWithdraw--> WITHDRAWAL_REQUESTED
//	WITHDRAWAL_REQUESTED --approveWithdraw--> WITHDRAWN (releases the unit)
//	WITHDRAWAL_REQUESTED --rejectWithdraw-->  previous status
//	SUCCESSFUL           --book-->            BOOKED
//
// A unit is reserved once, at submission. Booking only flips the status.

// SubmitApplication creates a PENDING application for the applicant and
// reserves one unit of the chosen flat type in the same transaction.
//
// Errors, in check order: USER_NOT_FOUND, ROLE_NOT_PERMITTED,
// ALREADY_HAS_ACTIVE_APPLICATION, PROJECT_NOT_FOUND, PROJECT_NOT_VISIBLE,
// FLAT_TYPE_NOT_FOUND, HANDLING_PROJECT, NOT_ELIGIBLE, NO_UNITS_AVAILABLE.
func (e *Engine) SubmitApplication(ctx context.Context, applicantID, projectName, flatType string) (domain.Application, error) {
	applicantID = domain.NormalizeNRIC(applicantID)
	args := SubmitArgs{Project: projectName, FlatType: flatType}

	var app domain.Application
	err := e.write(ctx, OpSubmitApplication, applicantID, args, func(txn *registry.Txn) error {
		u, err := lookupUser(txn, applicantID)
		if err != nil {
			return err
		}
		if !u.CanApply() {
			return roleNotPermitted(u, "apply for flats")
		}
		if prev, ok := txn.Application(applicantID); ok && prev.Active() {
			return domain.NewError(domain.CodeAlreadyHasActiveApplication,
				"%s already has a %s application for %q", applicantID, prev.Status, prev.ProjectName).
				With("applicant", applicantID)
		}
		p, err := lookupProject(txn, projectName)
		if err != nil {
			return err
		}
		if !p.Visible {
			return domain.NewError(domain.CodeProjectNotVisible, "project %q is not visible", projectName).
				With("project", projectName)
		}
		ft, ok := p.FlatType(flatType)
		if !ok {
			return domain.NewError(domain.CodeFlatTypeNotFound, "project %q has no %s", projectName, flatType).
				With("project", projectName).
				With("flat_type", flatType)
		}
		if u.IsOfficer() {
			if reg, ok := txn.Registration(applicantID, projectName); ok && reg.Active() {
				return domain.NewError(domain.CodeHandlingProject,
					"officer %s is registered to handle %q", applicantID, projectName).
					With("officer", applicantID)
			}
		}
		if !eligibility.ForUser(u, flatType) {
			return domain.NewError(domain.CodeNotEligible,
				"%s (%s, %d) is not eligible for %s", applicantID, u.MaritalStatus, u.Age, flatType).
				With("applicant", applicantID).
				With("flat_type", flatType)
		}
		if err := ft.Reserve(); err != nil {
			return err
		}
		p.FlatTypes[flatType] = ft

		app = domain.Application{
			ApplicantNRIC: applicantID,
			ProjectName:   projectName,
			FlatType:      flatType,
			Status:        domain.StatusPending,
			UnitHeld:      true,
		}
		if err := txn.PutProject(p); err != nil {
			return err
		}
		return txn.PutApplication(app)
	})
	if err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// ApproveRejectApplication decides a PENDING application. Approval moves it
// to SUCCESSFUL; rejection moves it to UNSUCCESSFUL and releases its unit.
//
// Errors: INVALID_INPUT, USER_NOT_FOUND, PROJECT_NOT_FOUND, NOT_MANAGING,
// NO_PENDING_APPLICATION.
func (e *Engine) ApproveRejectApplication(ctx context.Context, managerID, applicantID, projectName string, d domain.Decision) error {
	managerID = domain.NormalizeNRIC(managerID)
	applicantID = domain.NormalizeNRIC(applicantID)
	args := DecideArgs{Applicant: applicantID, Project: projectName, Decision: d}

	return e.write(ctx, OpDecideApplication, managerID, args, func(txn *registry.Txn) error {
		if !d.Valid() {
			return invalidDecision(d)
		}
		p, err := lookupManagedProject(txn, managerID, projectName)
		if err != nil {
			return err
		}
		app, ok := txn.Application(applicantID)
		if !ok || app.ProjectName != projectName || app.Status != domain.StatusPending {
			return domain.NewError(domain.CodeNoPendingApplication,
				"%s has no pending application for %q", applicantID, projectName).
				With("applicant", applicantID).
				With("project", projectName)
		}

		if d == domain.Approve {
			app.Status = domain.StatusSuccessful
			return txn.PutApplication(app)
		}

		app.Status = domain.StatusUnsuccessful
		if err := releaseUnit(txn, &p, &app); err != nil {
			return err
		}
		return txn.PutApplication(app)
	})
}

// RequestWithdraw asks for the applicant's active application to be
// withdrawn. The current status is remembered so a rejected request can
// restore it.
//
// Errors: APPLICATION_NOT_FOUND, WITHDRAWAL_ALREADY_REQUESTED,
// INVALID_TRANSITION (booked applications cannot be withdrawn).
func (e *Engine) RequestWithdraw(ctx context.Context, applicantID string) error {
	applicantID = domain.NormalizeNRIC(applicantID)

	return e.write(ctx, OpRequestWithdraw, applicantID, NoArgs{}, func(txn *registry.Txn) error {
		app, ok := txn.Application(applicantID)
		if !ok || !app.Active() {
			return domain.NewError(domain.CodeApplicationNotFound, "%s has no active application", applicantID).
				With("applicant", applicantID)
		}
		switch app.Status {
		case domain.StatusWithdrawalRequested:
			return domain.NewError(domain.CodeWithdrawalAlreadyRequested,
				"withdrawal already requested for %s", applicantID).
				With("applicant", applicantID)
		case domain.StatusPending, domain.StatusSuccessful:
		default:
			return domain.NewError(domain.CodeInvalidTransition,
				"cannot withdraw a %s application", app.Status).
				With("applicant", applicantID).
				With("status", string(app.Status))
		}

		app.PreviousStatus = app.Status
		app.Status = domain.StatusWithdrawalRequested
		return txn.PutApplication(app)
	})
}

// ApproveWithdraw completes a withdrawal: the application becomes WITHDRAWN,
// its unit is released and the applicant may apply again.
//
// Errors: NO_WITHDRAWAL_REQUEST, USER_NOT_FOUND, NOT_MANAGING.
func (e *Engine) ApproveWithdraw(ctx context.Context, managerID, applicantID string) error {
	managerID = domain.NormalizeNRIC(managerID)
	applicantID = domain.NormalizeNRIC(applicantID)
	args := ApplicantArgs{Applicant: applicantID}

	return e.write(ctx, OpApproveWithdraw, managerID, args, func(txn *registry.Txn) error {
		app, p, err := pendingWithdrawal(txn, managerID, applicantID)
		if err != nil {
			return err
		}
		app.Status = domain.StatusWithdrawn
		app.PreviousStatus = ""
		if err := releaseUnit(txn, &p, &app); err != nil {
			return err
		}
		return txn.PutApplication(app)
	})
}

// RejectWithdraw declines a withdrawal request and restores the status the
// application had before the request.
//
// Errors: NO_WITHDRAWAL_REQUEST, USER_NOT_FOUND, NOT_MANAGING.
func (e *Engine) RejectWithdraw(ctx context.Context, managerID, applicantID string) error {
	managerID = domain.NormalizeNRIC(managerID)
	applicantID = domain.NormalizeNRIC(applicantID)
	args := ApplicantArgs{Applicant: applicantID}

	return e.write(ctx, OpRejectWithdraw, managerID, args, func(txn *registry.Txn) error {
		app, _, err := pendingWithdrawal(txn, managerID, applicantID)
		if err != nil {
			return err
		}
		app.Status = app.PreviousStatus
		if app.Status == "" {
			app.Status = domain.StatusPending
		}
		app.PreviousStatus = ""
		return txn.PutApplication(app)
	})
}

// BookFlat books the flat of a SUCCESSFUL application in the officer's
// assigned project. The unit was reserved at submission, so booking only
// changes the status. An application loaded without a held unit reserves one
// here instead.
//
// Errors: USER_NOT_FOUND, ROLE_NOT_PERMITTED, NO_SUCCESSFUL_APPLICATION,
// NO_UNITS_AVAILABLE.
func (e *Engine) BookFlat(ctx context.Context, officerID, applicantID string) (domain.Application, error) {
	officerID = domain.NormalizeNRIC(officerID)
	applicantID = domain.NormalizeNRIC(applicantID)
	args := ApplicantArgs{Applicant: applicantID}

	var app domain.Application
	err := e.write(ctx, OpBookFlat, officerID, args, func(txn *registry.Txn) error {
		officer, err := lookupUser(txn, officerID)
		if err != nil {
			return err
		}
		if !officer.IsOfficer() {
			return roleNotPermitted(officer, "book flats")
		}
		a, ok := txn.Application(applicantID)
		if !ok || officer.AssignedProject == "" || a.ProjectName != officer.AssignedProject ||
			a.Status != domain.StatusSuccessful {
			return domain.NewError(domain.CodeNoSuccessfulApplication,
				"%s has no successful application in %q", applicantID, officer.AssignedProject).
				With("applicant", applicantID).
				With("officer", officerID)
		}

		if !a.UnitHeld {
			p, err := lookupProject(txn, a.ProjectName)
			if err != nil {
				return err
			}
			ft, ok := p.FlatType(a.FlatType)
			if !ok {
				return domain.NewError(domain.CodeFlatTypeNotFound, "project %q has no %s", p.Name, a.FlatType)
			}
			if err := ft.Reserve(); err != nil {
				return err
			}
			p.FlatTypes[a.FlatType] = ft
			if err := txn.PutProject(p); err != nil {
				return err
			}
			a.UnitHeld = true
		}

		a.Status = domain.StatusBooked
		app = a
		return txn.PutApplication(a)
	})
	if err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// pendingWithdrawal resolves an application awaiting a withdrawal decision by
// the manager of its project.
func pendingWithdrawal(txn *registry.Txn, managerID, applicantID string) (domain.Application, domain.Project, error) {
	app, ok := txn.Application(applicantID)
	if !ok || app.Status != domain.StatusWithdrawalRequested {
		return domain.Application{}, domain.Project{}, domain.NewError(domain.CodeNoWithdrawalRequest,
			"%s has no pending withdrawal request", applicantID).
			With("applicant", applicantID)
	}
	p, err := lookupManagedProject(txn, managerID, app.ProjectName)
	if err != nil {
		return domain.Application{}, domain.Project{}, err
	}
	return app, p, nil
}

// releaseUnit returns the application's unit to the ledger if it holds one.
// A project or flat type that has since disappeared has nothing to release.
func releaseUnit(txn *registry.Txn, p *domain.Project, app *domain.Application) error {
	if !app.UnitHeld {
		return nil
	}
	app.UnitHeld = false
	ft, ok := p.FlatType(app.FlatType)
	if !ok {
		return nil
	}
	ft.Release()
	p.FlatTypes[app.FlatType] = ft
	return txn.PutProject(*p)
}
