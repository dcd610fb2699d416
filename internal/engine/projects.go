package engine

import (
	"context"
	"strings"
	"time"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/registry"
)

// CreateProject creates a project managed by managerID with every flat type
// fully available and no officers. The new project becomes the manager's
// assigned project.
//
// Errors: USER_NOT_FOUND, ROLE_NOT_PERMITTED, INVALID_INPUT, PROJECT_EXISTS,
// OVERLAPPING_ASSIGNMENT.
func (e *Engine) CreateProject(ctx context.Context, managerID string, spec domain.ProjectSpec) (domain.Project, error) {
	managerID = domain.NormalizeNRIC(managerID)
	spec.Name = strings.TrimSpace(spec.Name)
	spec.OpenDate = domain.Day(spec.OpenDate)
	spec.CloseDate = domain.Day(spec.CloseDate)

	var created domain.Project
	err := e.write(ctx, OpCreateProject, managerID, createArgs(spec), func(txn *registry.Txn) error {
		manager, err := lookupUser(txn, managerID)
		if err != nil {
			return err
		}
		if !manager.IsManager() {
			return roleNotPermitted(manager, "create projects")
		}
		if err := validateSpec(spec); err != nil {
			return err
		}
		if _, exists := txn.Project(spec.Name); exists {
			return domain.NewError(domain.CodeProjectExists, "project %q already exists", spec.Name).
				With("project", spec.Name)
		}
		if err := checkCreate(txn, manager, spec.OpenDate, spec.CloseDate); err != nil {
			return err
		}

		p := domain.Project{
			Name:            spec.Name,
			Neighborhood:    spec.Neighborhood,
			OpenDate:        spec.OpenDate,
			CloseDate:       spec.CloseDate,
			Visible:         spec.Visible,
			ManagerNRIC:     managerID,
			MaxOfficerSlots: spec.MaxOfficerSlots,
			FlatTypes:       make(map[string]domain.FlatType, len(spec.FlatTypes)),
		}
		for _, ft := range spec.FlatTypes {
			p.FlatTypes[ft.Label] = domain.FlatType{
				Label:          ft.Label,
				TotalUnits:     ft.Units,
				RemainingUnits: ft.Units,
				Price:          ft.Price,
			}
		}

		manager.AssignedProject = p.Name
		if err := txn.PutProject(p); err != nil {
			return err
		}
		if err := txn.PutUser(manager); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}
	return created, nil
}

func validateSpec(spec domain.ProjectSpec) error {
	if spec.Name == "" {
		return domain.NewError(domain.CodeInvalidInput, "project name is required")
	}
	if spec.CloseDate.Before(spec.OpenDate) {
		return domain.NewError(domain.CodeInvalidInput, "project %q closes before it opens", spec.Name)
	}
	if spec.MaxOfficerSlots < 0 {
		return domain.NewError(domain.CodeInvalidInput, "project %q: negative officer slots", spec.Name)
	}
	seen := make(map[string]bool, len(spec.FlatTypes))
	for _, ft := range spec.FlatTypes {
		if strings.TrimSpace(ft.Label) == "" {
			return domain.NewError(domain.CodeInvalidInput, "project %q: empty flat type label", spec.Name)
		}
		if seen[ft.Label] {
			return domain.NewError(domain.CodeInvalidInput, "project %q: duplicate flat type %s", spec.Name, ft.Label)
		}
		seen[ft.Label] = true
		if ft.Units < 0 || ft.Price < 0 {
			return domain.NewError(domain.CodeInvalidInput,
				"project %q: %s units and price must be non-negative", spec.Name, ft.Label)
		}
	}
	return nil
}

// updateProject runs edit on a project the manager owns and stores the
// result.
func (e *Engine) updateProject(ctx context.Context, op, managerID, projectName string, args any, edit func(p *domain.Project) error) error {
	managerID = domain.NormalizeNRIC(managerID)
	return e.write(ctx, op, managerID, args, func(txn *registry.Txn) error {
		p, err := lookupManagedProject(txn, managerID, projectName)
		if err != nil {
			return err
		}
		if err := edit(&p); err != nil {
			return err
		}
		return txn.PutProject(p)
	})
}

// UpdateNeighborhood renames the project's neighborhood.
func (e *Engine) UpdateNeighborhood(ctx context.Context, managerID, projectName, neighborhood string) error {
	args := NeighborhoodArgs{Project: projectName, Neighborhood: neighborhood}
	return e.updateProject(ctx, OpUpdateNeighborhood, managerID, projectName, args, func(p *domain.Project) error {
		if strings.TrimSpace(neighborhood) == "" {
			return domain.NewError(domain.CodeInvalidInput, "neighborhood is required")
		}
		p.Neighborhood = neighborhood
		return nil
	})
}

// UpdateOpenDate moves the opening day. The window may not end before it
// starts.
func (e *Engine) UpdateOpenDate(ctx context.Context, managerID, projectName string, open time.Time) error {
	open = domain.Day(open)
	args := DateArgs{Project: projectName, Date: open.Format(domain.DateLayout)}
	return e.updateProject(ctx, OpUpdateOpenDate, managerID, projectName, args, func(p *domain.Project) error {
		if p.CloseDate.Before(open) {
			return domain.NewError(domain.CodeInvalidInput,
				"open date %s is after close date %s", args.Date, p.CloseDate.Format(domain.DateLayout))
		}
		p.OpenDate = open
		return nil
	})
}

// UpdateCloseDate moves the closing day. The window may not end before it
// starts.
func (e *Engine) UpdateCloseDate(ctx context.Context, managerID, projectName string, closeDate time.Time) error {
	closeDate = domain.Day(closeDate)
	args := DateArgs{Project: projectName, Date: closeDate.Format(domain.DateLayout)}
	return e.updateProject(ctx, OpUpdateCloseDate, managerID, projectName, args, func(p *domain.Project) error {
		if closeDate.Before(p.OpenDate) {
			return domain.NewError(domain.CodeInvalidInput,
				"close date %s is before open date %s", args.Date, p.OpenDate.Format(domain.DateLayout))
		}
		p.CloseDate = closeDate
		return nil
	})
}

// UpdateFlatUnits resizes a flat type, keeping every booked unit booked.
//
// Errors: FLAT_TYPE_NOT_FOUND, INVALID_INPUT, NEGATIVE_REMAINING (the new
// total is below the number of units already held).
func (e *Engine) UpdateFlatUnits(ctx context.Context, managerID, projectName, flatType string, units int, price int64) error {
	args := FlatUnitsArgs{Project: projectName, FlatType: flatType, Units: units, Price: price}
	return e.updateProject(ctx, OpUpdateFlatUnits, managerID, projectName, args, func(p *domain.Project) error {
		ft, ok := p.FlatType(flatType)
		if !ok {
			return domain.NewError(domain.CodeFlatTypeNotFound, "project %q has no %s", projectName, flatType).
				With("project", projectName).
				With("flat_type", flatType)
		}
		if err := ft.Resize(units, price); err != nil {
			return err
		}
		p.FlatTypes[flatType] = ft
		return nil
	})
}

// UpdateOfficerSlots changes the officer slot limit. It may not drop below
// the number of officers already approved.
func (e *Engine) UpdateOfficerSlots(ctx context.Context, managerID, projectName string, slots int) error {
	args := OfficerSlotsArgs{Project: projectName, Slots: slots}
	return e.updateProject(ctx, OpUpdateOfficerSlots, managerID, projectName, args, func(p *domain.Project) error {
		if slots < p.OfficerSlots {
			return domain.NewError(domain.CodeInvalidInput,
				"project %q already has %d officers, cannot limit to %d", projectName, p.OfficerSlots, slots)
		}
		p.MaxOfficerSlots = slots
		return nil
	})
}

// ToggleVisibility flips the project's visibility flag and returns the new
// value. Visibility is independent of the application window.
func (e *Engine) ToggleVisibility(ctx context.Context, projectName string) (bool, error) {
	var visible bool
	err := e.write(ctx, OpToggleVisibility, "", ProjectArgs{Project: projectName}, func(txn *registry.Txn) error {
		p, err := lookupProject(txn, projectName)
		if err != nil {
			return err
		}
		p.Visible = !p.Visible
		visible = p.Visible
		return txn.PutProject(p)
	})
	return visible, err
}

// DeleteProject removes a project that nothing active refers to, together
// with its terminal applications and rejected registrations. If the project
// was the manager's assignment the assignment is cleared.
//
// PENDING and APPROVED registrations both block deletion. Approval cannot be
// undone, so a project with any approved officer can never be deleted.
//
// Errors: USER_NOT_FOUND, PROJECT_NOT_FOUND, NOT_MANAGING, PROJECT_IN_USE.
func (e *Engine) DeleteProject(ctx context.Context, managerID, projectName string) error {
	managerID = domain.NormalizeNRIC(managerID)

	return e.write(ctx, OpDeleteProject, managerID, ProjectArgs{Project: projectName}, func(txn *registry.Txn) error {
		if _, err := lookupManagedProject(txn, managerID, projectName); err != nil {
			return err
		}
		apps := txn.ApplicationsForProject(projectName)
		regs := txn.RegistrationsForProject(projectName)
		for _, a := range apps {
			if a.Active() {
				return domain.NewError(domain.CodeProjectInUse,
					"project %q has a %s application by %s", projectName, a.Status, a.ApplicantNRIC).
					With("project", projectName)
			}
		}
		for _, r := range regs {
			if r.Active() {
				return domain.NewError(domain.CodeProjectInUse,
					"project %q has a %s registration by %s", projectName, r.Status, r.OfficerNRIC).
					With("project", projectName)
			}
		}

		for _, a := range apps {
			if err := txn.DeleteApplication(a.ApplicantNRIC); err != nil {
				return err
			}
		}
		for _, r := range regs {
			if err := txn.DeleteRegistration(r.OfficerNRIC, r.ProjectName); err != nil {
				return err
			}
		}
		if manager, ok := txn.User(managerID); ok && manager.AssignedProject == projectName {
			manager.AssignedProject = ""
			if err := txn.PutUser(manager); err != nil {
				return err
			}
		}
		return txn.DeleteProject(projectName)
	})
}
