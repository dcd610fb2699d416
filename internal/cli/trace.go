package cli

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op    string // filter by operation
	After int64  // only events after this seq
}

// TraceEvent is one journalled event in trace output.
type TraceEvent struct {
	Seq   int64           `json:"seq"`
	ID    string          `json:"id"`
	Op    string          `json:"op"`
	Actor string          `json:"actor,omitempty"`
	Args  json.RawMessage `json:"args"`
}

// TraceResult holds the trace output.
type TraceResult struct {
	Events []TraceEvent `json:"events"`
	Total  int          `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the operation journal",
		Long: `List journalled operations in commit order.

Examples:
  bto trace
  bto trace --op application.submit
  bto trace --after 10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "only show this operation")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only show events after this seq")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	var events []domain.Event
	if opts.Op != "" {
		events, err = st.ReadEventsByOp(ctx, opts.Op)
	} else {
		events, err = st.ReadEvents(ctx, opts.After)
	}
	if err != nil {
		return out.Fail(err)
	}

	result := TraceResult{Events: make([]TraceEvent, 0, len(events))}
	for _, ev := range events {
		if ev.Seq <= opts.After {
			continue
		}
		result.Events = append(result.Events, TraceEvent{
			Seq:   ev.Seq,
			ID:    ev.ID,
			Op:    ev.Op,
			Actor: ev.Actor,
			Args:  json.RawMessage(ev.Args),
		})
	}
	result.Total = len(result.Events)

	return out.Render(result, func(w io.Writer) {
		if result.Total == 0 {
			fmt.Fprintln(w, "(no events)")
			return
		}
		for _, ev := range result.Events {
			actor := ev.Actor
			if actor == "" {
				actor = "-"
			}
			fmt.Fprintf(w, "  [%d] %-28s %-10s %s\n", ev.Seq, ev.Op, actor, ev.Args)
			if opts.Verbose {
				fmt.Fprintf(w, "       id=%s\n", ev.ID)
			}
		}
		fmt.Fprintf(w, "\nTotal Events: %d\n", result.Total)
	})
}
