package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bto/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s as %q -> %s\n", event.Step, event.Op, event.Actor, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the engine's final
// state and returns one message per failure.
func EvaluateAssertions(e *engine.Engine, assertions []Assertion, trace []TraceEvent) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(e, a, trace); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(e *engine.Engine, a Assertion, trace []TraceEvent) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: trace}
	}

	switch a.Type {
	case AssertApplicationStatus:
		expected := fmt.Sprintf("application of %s is %s", a.Applicant, a.Status)
		app, err := e.Application(a.Applicant)
		if err != nil {
			return fail(expected, err.Error())
		}
		if string(app.Status) != a.Status {
			return fail(expected, string(app.Status))
		}

	case AssertRemainingUnits:
		expected := fmt.Sprintf("%d %s units remaining in %s", *a.Count, a.FlatType, a.Project)
		p, err := e.Project(a.Project)
		if err != nil {
			return fail(expected, err.Error())
		}
		ft, ok := p.FlatType(a.FlatType)
		if !ok {
			return fail(expected, "flat type not offered")
		}
		if ft.RemainingUnits != *a.Count {
			return fail(expected, fmt.Sprintf("%d remaining", ft.RemainingUnits))
		}

	case AssertOfficerSlots:
		expected := fmt.Sprintf("%d officer slots filled in %s", *a.Count, a.Project)
		p, err := e.Project(a.Project)
		if err != nil {
			return fail(expected, err.Error())
		}
		if p.OfficerSlots != *a.Count {
			return fail(expected, fmt.Sprintf("%d filled", p.OfficerSlots))
		}

	case AssertOfficerRoster:
		want := slices.Clone(a.Officers)
		slices.Sort(want)
		expected := fmt.Sprintf("%s roster %v", a.Project, want)
		p, err := e.Project(a.Project)
		if err != nil {
			return fail(expected, err.Error())
		}
		got := slices.Clone(p.Officers)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			return fail(expected, fmt.Sprintf("%v", got))
		}

	case AssertRegistrationStatus:
		expected := fmt.Sprintf("registration of %s for %s is %s", a.Officer, a.Project, a.Status)
		for _, r := range e.Registrations(a.Officer) {
			if r.ProjectName != a.Project {
				continue
			}
			if string(r.Status) != a.Status {
				return fail(expected, string(r.Status))
			}
			return nil
		}
		return fail(expected, "no registration")

	case AssertInvariants:
		if err := engine.CheckInvariants(e.Snapshot()); err != nil {
			return fail("all invariants hold", err.Error())
		}

	default:
		return fail("a known assertion type", a.Type)
	}
	return nil
}

