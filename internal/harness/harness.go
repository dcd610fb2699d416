package harness

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	json "github.com/goccy/go-json"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/registry"
	"github.com/roach88/bto/internal/seed"
	"github.com/roach88/bto/internal/store"
)

// Harness runs one scenario against a fresh engine.
//
// Every step goes through engine.Dispatch, the same path the CLI and replay
// use. Committed events are journalled to an in-memory SQLite store; after
// the steps the journal is read back and replayed over the seed to check
// that it reproduces the final state.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	base   domain.Snapshot
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// A non-nil error means the scenario could not be run at all (bad seed,
// store failure). Step mismatches and failed assertions are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	base, err := scenarioSeed(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	reg, err := registry.New()
	if err != nil {
		return nil, err
	}
	eng := engine.New(reg,
		engine.WithJournal(st),
		engine.WithIDGenerator(engine.NewSequentialGenerator("ev")),
		engine.WithClock(engine.NewClock()),
	)
	if err := eng.Load(base); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	h := &Harness{
		store:  st,
		engine: eng,
		base:   base,
		logger: slog.New(slog.DiscardHandler),
	}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	for _, msg := range EvaluateAssertions(eng, scenario.Assertions, result.Trace) {
		result.AddError(msg)
	}

	if err := h.verifyJournal(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// scenarioSeed resolves the scenario's starting state.
func scenarioSeed(scenario *Scenario) (domain.Snapshot, error) {
	doc := scenario.Seed
	if scenario.SeedFile != "" {
		loaded, err := seed.Load(scenario.SeedFile)
		if err != nil {
			return domain.Snapshot{}, err
		}
		doc = loaded
	} else if err := doc.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("inline seed: %w", err)
	}
	return doc.Snapshot()
}

// executeSteps dispatches each step and checks it against its expectation.
// A failing step does not stop the run: later steps still execute so the
// trace shows the whole scenario.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		args, err := marshalArgs(step.Args)
		if err != nil {
			result.AddTrace(i, step.Op, step.As, string(domain.CodeInvalidInput))
			result.AddError(fmt.Sprintf("step %d (%s): failed to encode args: %v", i, step.Op, err))
			continue
		}

		out, err := h.engine.Dispatch(ctx, step.Op, step.As, args)
		outcome := OutcomeOK
		if err != nil {
			outcome = string(domain.CodeOf(err))
			if outcome == "" {
				outcome = "ERROR"
			}
		}
		result.AddTrace(i, step.Op, step.As, outcome)

		h.logger.Info("step executed", "step", i, "op", step.Op, "actor", step.As, "outcome", outcome)

		for _, msg := range checkExpect(step.Expect, outcome, out, err) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
		}
	}
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(expect *ExpectClause, outcome string, out any, err error) []string {
	want := OutcomeOK
	if expect != nil && expect.Error != "" {
		want = expect.Error
	}
	if outcome != want {
		if err != nil {
			return []string{fmt.Sprintf("expected %s, got %s (%v)", want, outcome, err)}
		}
		return []string{fmt.Sprintf("expected %s, got %s", want, outcome)}
	}
	if expect == nil || expect.Result == nil || err != nil {
		return nil
	}

	got, nerr := normalize(out)
	if nerr != nil {
		return []string{fmt.Sprintf("failed to encode result: %v", nerr)}
	}
	wantResult, nerr := normalize(expect.Result)
	if nerr != nil {
		return []string{fmt.Sprintf("failed to encode expected result: %v", nerr)}
	}
	if !matchValue(got, wantResult) {
		return []string{fmt.Sprintf("result mismatch: expected %v, got %v", wantResult, got)}
	}
	return nil
}

// verifyJournal replays the journalled events over the seed and compares
// the digest with the engine's final state.
func (h *Harness) verifyJournal(ctx context.Context, result *Result) error {
	events, err := h.store.ReadEvents(ctx, 0)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	reg, err := registry.New()
	if err != nil {
		return err
	}
	head := h.engine.Snapshot()
	verify, err := engine.Verify(ctx, engine.New(reg), h.base, head, events)
	if err != nil {
		result.AddError(fmt.Sprintf("journal replay failed: %v", err))
		return nil
	}
	result.Digest = verify.HeadDigest
	if !verify.Match {
		result.AddError(fmt.Sprintf("journal replay diverged: replay %s, head %s", verify.ReplayDigest, verify.HeadDigest))
	}
	return nil
}

// marshalArgs encodes scenario args as the JSON Dispatch expects. YAML
// timestamps are written back as calendar days.
func marshalArgs(args map[string]any) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return json.Marshal(convertValue(args))
}

func convertValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(domain.DateLayout)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = convertValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = convertValue(elem)
		}
		return out
	default:
		return v
	}
}

// normalize round-trips v through JSON so results and expectations compare
// with the same types (float64 numbers, map[string]any objects).
func normalize(v any) (any, error) {
	data, err := json.Marshal(convertValue(v))
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matchValue reports whether got matches want. Objects match when every
// key in want matches; arrays must match element by element.
func matchValue(got, want any) bool {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			gv, ok := g[k]
			if !ok || !matchValue(gv, wv) {
				return false
			}
		}
		return true
	case []any:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return false
		}
		for i := range w {
			if !matchValue(g[i], w[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(got, want)
	}
}
