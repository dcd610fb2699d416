// Package seed loads initial engine state from YAML documents.
//
// A seed document lists users and projects:
//
//	users:
//	  - nric: S1234567A
//	    name: John
//	    age: 35
//	    marital_status: SINGLE
//	    role: APPLICANT
//	projects:
//	  - name: Acacia Breeze
//	    neighborhood: Yishun
//	    open_date: 2026-03-14
//	    close_date: 2026-04-14
//	    manager: T8765432F
//	    max_officer_slots: 2
//	    officers: [T2109876H]
//	    flat_types:
//	      - {label: 2-Room, units: 2, price: 350000}
//
// Documents are checked against an embedded CUE schema for shape, then
// against the cross-record rules (managers and officers must exist with the
// right role, rosters fit their slots) before they become a snapshot.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bto/internal/domain"
)

//go:embed schema.cue
var schemaCUE string

// Document is a parsed seed file.
type Document struct {
	Users    []User    `yaml:"users" json:"users"`
	Projects []Project `yaml:"projects,omitempty" json:"projects,omitempty"`
}

// User is a seed user.
type User struct {
	NRIC            string `yaml:"nric" json:"nric"`
	Name            string `yaml:"name" json:"name"`
	Age             int    `yaml:"age" json:"age"`
	MaritalStatus   string `yaml:"marital_status" json:"marital_status"`
	Role            string `yaml:"role" json:"role"`
	AssignedProject string `yaml:"assigned_project,omitempty" json:"assigned_project,omitempty"`
}

// Project is a seed project. Visible defaults to true; a flat type's
// Remaining defaults to its Units.
type Project struct {
	Name            string     `yaml:"name" json:"name"`
	Neighborhood    string     `yaml:"neighborhood" json:"neighborhood"`
	OpenDate        string     `yaml:"open_date" json:"open_date"`
	CloseDate       string     `yaml:"close_date" json:"close_date"`
	Visible         *bool      `yaml:"visible,omitempty" json:"visible,omitempty"`
	Manager         string     `yaml:"manager" json:"manager"`
	MaxOfficerSlots int        `yaml:"max_officer_slots" json:"max_officer_slots"`
	Officers        []string   `yaml:"officers,omitempty" json:"officers,omitempty"`
	FlatTypes       []FlatType `yaml:"flat_types" json:"flat_types"`
}

// FlatType is a seed flat type.
type FlatType struct {
	Label     string `yaml:"label" json:"label"`
	Units     int    `yaml:"units" json:"units"`
	Remaining *int   `yaml:"remaining,omitempty" json:"remaining,omitempty"`
	Price     int64  `yaml:"price" json:"price"`
}

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDoc  cue.Value
	schemaErr  error
)

// documentSchema compiles the embedded schema once.
func documentSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile seed schema: %w", err)
			return
		}
		schemaDoc = v.LookupPath(cue.ParsePath("#Document"))
	})
	return schemaCtx, schemaDoc, schemaErr
}

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, "parse seed: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the seed file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document against the CUE schema and the cross-record
// rules. Every problem is reported, one per line.
func (d *Document) Validate() error {
	ctx, schema, err := documentSchema()
	if err != nil {
		return err
	}

	v := schema.Unify(ctx.Encode(d))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return domain.NewError(domain.CodeInvalidInput, "seed schema: %s", formatCUEError(err))
	}

	if problems := d.crossCheck(); len(problems) > 0 {
		return domain.NewError(domain.CodeInvalidInput, "seed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// formatCUEError flattens CUE errors into "path: message" lines.
func formatCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	return strings.Join(lines, "; ")
}

func (d *Document) crossCheck() []string {
	var problems []string

	roles := make(map[string]string, len(d.Users))
	for _, u := range d.Users {
		nric := domain.NormalizeNRIC(u.NRIC)
		if _, dup := roles[nric]; dup {
			problems = append(problems, fmt.Sprintf("duplicate user %s", nric))
		}
		roles[nric] = u.Role
	}

	names := make(map[string]bool, len(d.Projects))
	rostered := make(map[string]string)
	for _, p := range d.Projects {
		if names[p.Name] {
			problems = append(problems, fmt.Sprintf("duplicate project %q", p.Name))
		}
		names[p.Name] = true

		if p.CloseDate < p.OpenDate {
			problems = append(problems, fmt.Sprintf("project %q closes before it opens", p.Name))
		}
		if role := roles[domain.NormalizeNRIC(p.Manager)]; role != string(domain.RoleManager) {
			problems = append(problems, fmt.Sprintf("project %q: manager %s is not a known manager", p.Name, p.Manager))
		}
		if len(p.Officers) > p.MaxOfficerSlots {
			problems = append(problems, fmt.Sprintf("project %q: %d officers exceed %d slots",
				p.Name, len(p.Officers), p.MaxOfficerSlots))
		}
		for _, o := range p.Officers {
			nric := domain.NormalizeNRIC(o)
			if roles[nric] != string(domain.RoleOfficer) {
				problems = append(problems, fmt.Sprintf("project %q: %s is not a known officer", p.Name, o))
			}
			if other, ok := rostered[nric]; ok {
				problems = append(problems, fmt.Sprintf("officer %s is rostered on %q and %q", nric, other, p.Name))
			}
			rostered[nric] = p.Name
		}
		labels := make(map[string]bool, len(p.FlatTypes))
		for _, ft := range p.FlatTypes {
			if labels[ft.Label] {
				problems = append(problems, fmt.Sprintf("project %q: duplicate flat type %s", p.Name, ft.Label))
			}
			labels[ft.Label] = true
		}
	}

	for _, u := range d.Users {
		if u.AssignedProject != "" && !names[u.AssignedProject] {
			problems = append(problems, fmt.Sprintf("user %s: assigned project %q does not exist", u.NRIC, u.AssignedProject))
		}
	}
	return problems
}

// Snapshot converts a validated document into engine state.
//
// Rostered officers get an APPROVED registration and the project as their
// assignment; the slot count is the roster length. A manager without an
// explicit assignment is assigned the last project they manage in document
// order.
func (d *Document) Snapshot() (domain.Snapshot, error) {
	var snap domain.Snapshot
	assigned := make(map[string]string)

	for _, sp := range d.Projects {
		open, err := domain.ParseDate(sp.OpenDate)
		if err != nil {
			return domain.Snapshot{}, err
		}
		closeDate, err := domain.ParseDate(sp.CloseDate)
		if err != nil {
			return domain.Snapshot{}, err
		}

		p := domain.Project{
			Name:            sp.Name,
			Neighborhood:    sp.Neighborhood,
			OpenDate:        open,
			CloseDate:       closeDate,
			Visible:         sp.Visible == nil || *sp.Visible,
			ManagerNRIC:     domain.NormalizeNRIC(sp.Manager),
			MaxOfficerSlots: sp.MaxOfficerSlots,
			OfficerSlots:    len(sp.Officers),
			FlatTypes:       make(map[string]domain.FlatType, len(sp.FlatTypes)),
		}
		for _, ft := range sp.FlatTypes {
			remaining := ft.Units
			if ft.Remaining != nil {
				remaining = *ft.Remaining
			}
			p.FlatTypes[ft.Label] = domain.FlatType{
				Label:          ft.Label,
				TotalUnits:     ft.Units,
				RemainingUnits: remaining,
				Price:          ft.Price,
			}
		}
		for _, o := range sp.Officers {
			nric := domain.NormalizeNRIC(o)
			p.Officers = append(p.Officers, nric)
			assigned[nric] = p.Name
			snap.Registrations = append(snap.Registrations, domain.OfficerRegistration{
				OfficerNRIC: nric,
				ProjectName: p.Name,
				Status:      domain.RegistrationApproved,
			})
		}
		assigned[p.ManagerNRIC] = p.Name
		snap.Projects = append(snap.Projects, p)
	}

	for _, su := range d.Users {
		role, err := domain.ParseRole(su.Role)
		if err != nil {
			return domain.Snapshot{}, err
		}
		status, err := domain.ParseMaritalStatus(su.MaritalStatus)
		if err != nil {
			return domain.Snapshot{}, err
		}
		u := domain.User{
			NRIC:          domain.NormalizeNRIC(su.NRIC),
			Name:          su.Name,
			Age:           su.Age,
			MaritalStatus: status,
			Role:          role,
		}
		if role != domain.RoleApplicant {
			u.AssignedProject = assigned[u.NRIC]
		}
		if su.AssignedProject != "" {
			u.AssignedProject = su.AssignedProject
		}
		snap.Users = append(snap.Users, u)
	}

	snap.Sort()
	return snap, nil
}
