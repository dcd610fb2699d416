package engine

import (
	"bytes"
	"context"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/roach88/bto/internal/domain"
)

// Operation names. These are the values of Event.Op and the first argument
// of Dispatch; they are stable across releases because journals store them.
const (
	OpSubmitApplication   = "application.submit"
	OpDecideApplication   = "application.decide"
	OpRequestWithdraw     = "application.withdraw"
	OpApproveWithdraw     = "application.withdraw.approve"
	OpRejectWithdraw      = "application.withdraw.reject"
	OpBookFlat            = "application.book"
	OpRegisterOfficer     = "officer.register"
	OpProcessRegistration = "officer.process"
	OpCreateProject       = "project.create"
	OpUpdateNeighborhood  = "project.neighborhood"
	OpUpdateOpenDate      = "project.open_date"
	OpUpdateCloseDate     = "project.close_date"
	OpUpdateFlatUnits     = "project.flat_units"
	OpUpdateOfficerSlots  = "project.officer_slots"
	OpToggleVisibility    = "project.toggle_visibility"
	OpDeleteProject       = "project.delete"
)

// Argument structs. The actor (the NRIC performing the operation) is passed
// separately and is not part of the args.

// NoArgs is the argument of operations that only need the actor.
type NoArgs struct{}

// SubmitArgs are the arguments of application.submit.
type SubmitArgs struct {
	Project  string `json:"project"`
	FlatType string `json:"flat_type"`
}

// DecideArgs are the arguments of application.decide.
type DecideArgs struct {
	Applicant string          `json:"applicant"`
	Project   string          `json:"project"`
	Decision  domain.Decision `json:"decision"`
}

// ApplicantArgs name the applicant whose application is acted on.
type ApplicantArgs struct {
	Applicant string `json:"applicant"`
}

// ProjectArgs name a project.
type ProjectArgs struct {
	Project string `json:"project"`
}

// ProcessArgs are the arguments of officer.process.
type ProcessArgs struct {
	Officer  string          `json:"officer"`
	Project  string          `json:"project"`
	Decision domain.Decision `json:"decision"`
}

// CreateProjectArgs are the arguments of project.create. Dates are
// YYYY-MM-DD calendar days.
type CreateProjectArgs struct {
	Name            string                `json:"name"`
	Neighborhood    string                `json:"neighborhood"`
	OpenDate        string                `json:"open_date"`
	CloseDate       string                `json:"close_date"`
	Visible         bool                  `json:"visible"`
	MaxOfficerSlots int                   `json:"max_officer_slots"`
	FlatTypes       []domain.FlatTypeSpec `json:"flat_types"`
}

// NeighborhoodArgs are the arguments of project.neighborhood.
type NeighborhoodArgs struct {
	Project      string `json:"project"`
	Neighborhood string `json:"neighborhood"`
}

// DateArgs are the arguments of project.open_date and project.close_date.
type DateArgs struct {
	Project string `json:"project"`
	Date    string `json:"date"`
}

// FlatUnitsArgs are the arguments of project.flat_units.
type FlatUnitsArgs struct {
	Project  string `json:"project"`
	FlatType string `json:"flat_type"`
	Units    int    `json:"units"`
	Price    int64  `json:"price"`
}

// OfficerSlotsArgs are the arguments of project.officer_slots.
type OfficerSlotsArgs struct {
	Project string `json:"project"`
	Slots   int    `json:"slots"`
}

func createArgs(spec domain.ProjectSpec) CreateProjectArgs {
	return CreateProjectArgs{
		Name:            spec.Name,
		Neighborhood:    spec.Neighborhood,
		OpenDate:        spec.OpenDate.Format(domain.DateLayout),
		CloseDate:       spec.CloseDate.Format(domain.DateLayout),
		Visible:         spec.Visible,
		MaxOfficerSlots: spec.MaxOfficerSlots,
		FlatTypes:       spec.FlatTypes,
	}
}

// Spec converts the args into a ProjectSpec.
func (a CreateProjectArgs) Spec() (domain.ProjectSpec, error) {
	open, err := domain.ParseDate(a.OpenDate)
	if err != nil {
		return domain.ProjectSpec{}, err
	}
	closeDate, err := domain.ParseDate(a.CloseDate)
	if err != nil {
		return domain.ProjectSpec{}, err
	}
	return domain.ProjectSpec{
		Name:            a.Name,
		Neighborhood:    a.Neighborhood,
		OpenDate:        open,
		CloseDate:       closeDate,
		Visible:         a.Visible,
		MaxOfficerSlots: a.MaxOfficerSlots,
		FlatTypes:       a.FlatTypes,
	}, nil
}

// handler runs one named operation from its JSON arguments.
type handler func(ctx context.Context, e *Engine, actor string, raw []byte) (any, error)

// bind adapts a typed operation into a handler. Unknown fields in the JSON
// arguments are rejected so a misspelt key cannot silently become a zero
// value.
func bind[A any](run func(ctx context.Context, e *Engine, actor string, args A) (any, error)) handler {
	return func(ctx context.Context, e *Engine, actor string, raw []byte) (any, error) {
		var args A
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&args); err != nil {
				return nil, domain.NewError(domain.CodeInvalidInput, "decode arguments: %v", err)
			}
		}
		return run(ctx, e, actor, args)
	}
}

var operations = map[string]handler{
	OpSubmitApplication: bind(func(ctx context.Context, e *Engine, actor string, a SubmitArgs) (any, error) {
		return e.SubmitApplication(ctx, actor, a.Project, a.FlatType)
	}),
	OpDecideApplication: bind(func(ctx context.Context, e *Engine, actor string, a DecideArgs) (any, error) {
		return nil, e.ApproveRejectApplication(ctx, actor, a.Applicant, a.Project, a.Decision)
	}),
	OpRequestWithdraw: bind(func(ctx context.Context, e *Engine, actor string, _ NoArgs) (any, error) {
		return nil, e.RequestWithdraw(ctx, actor)
	}),
	OpApproveWithdraw: bind(func(ctx context.Context, e *Engine, actor string, a ApplicantArgs) (any, error) {
		return nil, e.ApproveWithdraw(ctx, actor, a.Applicant)
	}),
	OpRejectWithdraw: bind(func(ctx context.Context, e *Engine, actor string, a ApplicantArgs) (any, error) {
		return nil, e.RejectWithdraw(ctx, actor, a.Applicant)
	}),
	OpBookFlat: bind(func(ctx context.Context, e *Engine, actor string, a ApplicantArgs) (any, error) {
		return e.BookFlat(ctx, actor, a.Applicant)
	}),
	OpRegisterOfficer: bind(func(ctx context.Context, e *Engine, actor string, a ProjectArgs) (any, error) {
		return nil, e.RegisterOfficer(ctx, actor, a.Project)
	}),
	OpProcessRegistration: bind(func(ctx context.Context, e *Engine, actor string, a ProcessArgs) (any, error) {
		return nil, e.ProcessOfficerRegistration(ctx, actor, a.Officer, a.Project, a.Decision)
	}),
	OpCreateProject: bind(func(ctx context.Context, e *Engine, actor string, a CreateProjectArgs) (any, error) {
		spec, err := a.Spec()
		if err != nil {
			return nil, err
		}
		return e.CreateProject(ctx, actor, spec)
	}),
	OpUpdateNeighborhood: bind(func(ctx context.Context, e *Engine, actor string, a NeighborhoodArgs) (any, error) {
		return nil, e.UpdateNeighborhood(ctx, actor, a.Project, a.Neighborhood)
	}),
	OpUpdateOpenDate: bind(func(ctx context.Context, e *Engine, actor string, a DateArgs) (any, error) {
		d, err := domain.ParseDate(a.Date)
		if err != nil {
			return nil, err
		}
		return nil, e.UpdateOpenDate(ctx, actor, a.Project, d)
	}),
	OpUpdateCloseDate: bind(func(ctx context.Context, e *Engine, actor string, a DateArgs) (any, error) {
		d, err := domain.ParseDate(a.Date)
		if err != nil {
			return nil, err
		}
		return nil, e.UpdateCloseDate(ctx, actor, a.Project, d)
	}),
	OpUpdateFlatUnits: bind(func(ctx context.Context, e *Engine, actor string, a FlatUnitsArgs) (any, error) {
		return nil, e.UpdateFlatUnits(ctx, actor, a.Project, a.FlatType, a.Units, a.Price)
	}),
	OpUpdateOfficerSlots: bind(func(ctx context.Context, e *Engine, actor string, a OfficerSlotsArgs) (any, error) {
		return nil, e.UpdateOfficerSlots(ctx, actor, a.Project, a.Slots)
	}),
	OpToggleVisibility: bind(func(ctx context.Context, e *Engine, _ string, a ProjectArgs) (any, error) {
		return e.ToggleVisibility(ctx, a.Project)
	}),
	OpDeleteProject: bind(func(ctx context.Context, e *Engine, actor string, a ProjectArgs) (any, error) {
		return nil, e.DeleteProject(ctx, actor, a.Project)
	}),
}

// Dispatch runs the named operation with JSON-encoded arguments on behalf of
// actor. It is the entry point for the CLI, the scenario harness and replay.
//
// The result is the operation's return value (an Application, a Project, the
// new visibility flag) or nil for operations that return nothing.
func (e *Engine) Dispatch(ctx context.Context, op, actor string, args []byte) (any, error) {
	h, ok := operations[op]
	if !ok {
		return nil, domain.NewError(domain.CodeInvalidInput, "unknown operation %q", op).With("op", op)
	}
	return h(ctx, e, actor, args)
}

// Operations returns the names accepted by Dispatch, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
