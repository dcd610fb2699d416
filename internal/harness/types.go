package harness

// OutcomeOK is the trace outcome of a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records one dispatched step.
type TraceEvent struct {
	Step    int    `json:"step"`
	Op      string `json:"op"`
	Actor   string `json:"actor,omitempty"`
	Outcome string `json:"outcome"` // OutcomeOK or the error code
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step matched its expectation, every
	// assertion held and the journal replayed to the final state.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Digest is the digest of the final snapshot.
	Digest string `json:"digest,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records a step outcome.
func (r *Result) AddTrace(step int, op, actor, outcome string) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:    step,
		Op:      op,
		Actor:   actor,
		Outcome: outcome,
	})
}
