package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir|scenario-file>",
		Short: "Run scenario files",
		Long: `Run YAML scenarios against fresh in-memory engines.

Each scenario's trace is compared with <name>.golden in the golden directory
next to the scenarios directory (scenarios/../golden), when one exists. The
database is not touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  bto test ./testdata/scenarios
  bto test ./testdata/scenarios --filter "officer_*"
  bto test ./testdata/scenarios --update
  bto test ./testdata/scenarios/withdraw_twice.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	info, err := os.Stat(path)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
	}

	scenarioFiles := []string{path}
	if info.IsDir() {
		scenarioFiles, err = findScenarioFiles(path, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)
		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		w = io.Discard
	}

	fail := func(name string, errs ...string) ScenarioResult {
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return fail(filepath.Base(scenarioFile), fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.RunContext(cmd.Context(), scenario)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}
	opts.formatter(cmd).VerboseLog("%s: %d steps, digest %s", scenario.Name, len(result.Trace), result.Digest)

	trace, err := harness.MarshalTrace(scenario.Name, result)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to marshal trace: %v", err))
	}
	goldenPath := goldenFilePath(scenarioFile, scenario.Name)

	if opts.Update {
		if err := writeGolden(goldenPath, trace); err != nil {
			return fail(scenario.Name, err.Error())
		}
		if !result.Pass {
			return fail(scenario.Name, result.Errors...)
		}
		fmt.Fprintf(w, "✓ %s (golden updated)\n", scenario.Name)
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}

	errs := append([]string{}, result.Errors...)
	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// No golden file: assertions only.
	case err != nil:
		errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(golden, trace):
		errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
	}

	if len(errs) > 0 {
		return fail(scenario.Name, errs...)
	}
	fmt.Fprintf(w, "✓ %s\n", scenario.Name)
	return ScenarioResult{Name: scenario.Name, Pass: true}
}

// goldenFilePath returns the golden file of a scenario: a "golden"
// directory beside the one holding the scenario file.
func goldenFilePath(scenarioFile, name string) string {
	root := filepath.Dir(filepath.Dir(scenarioFile))
	return filepath.Join(root, "golden", name+".golden")
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := out.Render(result, nil); err != nil {
		return err
	}
	if result.Failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed), Reported: true}
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed), Reported: true}
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
