package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/seed"
)

// Scenario is a scripted run against a seeded engine.
// Steps are dispatched in order; assertions check the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is the starting state, given inline.
	Seed *seed.Document `yaml:"seed,omitempty"`

	// SeedFile is the path of a seed file. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	// Exactly one of Seed and SeedFile must be set.
	SeedFile string `yaml:"seed_file,omitempty"`

	// Steps are the operations to run.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one dispatched operation.
type Step struct {
	// Op is the operation name, e.g. "application.submit".
	Op string `yaml:"op"`

	// As is the NRIC of the acting user. Empty for operations without an
	// actor.
	As string `yaml:"as,omitempty"`

	// Args are the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect is the expected outcome. Nil means the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code, e.g. "NOT_ELIGIBLE". Empty means
	// the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Result is matched against the operation's JSON result. Maps are
	// matched as subsets; everything else must be equal.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Applicant string   `yaml:"applicant,omitempty"`
	Officer   string   `yaml:"officer,omitempty"`
	Project   string   `yaml:"project,omitempty"`
	FlatType  string   `yaml:"flat_type,omitempty"`
	Status    string   `yaml:"status,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
	Officers  []string `yaml:"officers,omitempty"`
}

// Assertion types.
const (
	AssertApplicationStatus  = "application_status"
	AssertRemainingUnits     = "remaining_units"
	AssertOfficerSlots       = "officer_slots"
	AssertOfficerRoster      = "officer_roster"
	AssertRegistrationStatus = "registration_status"
	AssertInvariants         = "invariants"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.SeedFile != "" && !filepath.IsAbs(scenario.SeedFile) {
		scenario.SeedFile = filepath.Join(filepath.Dir(path), scenario.SeedFile)
	}
	return scenario, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Seed == nil) == (s.SeedFile == "") {
		return fmt.Errorf("exactly one of seed and seed_file is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	known := make(map[string]bool)
	for _, op := range engine.Operations() {
		known[op] = true
	}
	for i, step := range s.Steps {
		if !known[step.Op] {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i, a.Type, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertApplicationStatus:
		if a.Applicant == "" || a.Status == "" {
			return fmt.Errorf("applicant and status are required")
		}
	case AssertRemainingUnits:
		if a.Project == "" || a.FlatType == "" || a.Count == nil {
			return fmt.Errorf("project, flat_type and count are required")
		}
	case AssertOfficerSlots:
		if a.Project == "" || a.Count == nil {
			return fmt.Errorf("project and count are required")
		}
	case AssertOfficerRoster:
		if a.Project == "" {
			return fmt.Errorf("project is required")
		}
	case AssertRegistrationStatus:
		if a.Officer == "" || a.Project == "" || a.Status == "" {
			return fmt.Errorf("officer, project and status are required")
		}
	case AssertInvariants:
	default:
		return fmt.Errorf("unknown assertion type")
	}
	return nil
}
