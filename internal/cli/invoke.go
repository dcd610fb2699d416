package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/engine"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	As   string
	Args string
}

// InvokeResult is the output of a successful invocation.
type InvokeResult struct {
	Op     string `json:"op"`
	Actor  string `json:"actor,omitempty"`
	Seq    int64  `json:"seq"`
	Result any    `json:"result,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <op>",
		Short: "Run one operation as a user",
		Long: `Run one engine operation against the stored state.

The operation is journalled on success. A rule violation is reported with
its code and leaves the state unchanged.

Operations:
  ` + strings.Join(engine.Operations(), "\n  ") + `

Exit codes:
  0 - Operation committed
  1 - Rule violation
  2 - Command error (database not seeded, malformed --args, etc.)

Examples:
  bto invoke application.submit --as S9876543C --args '{"project":"Birch Grove","flat_type":"3-Room"}'
  bto invoke application.withdraw --as S9876543C
  bto invoke project.toggle_visibility --args '{"project":"Birch Grove"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOperation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "NRIC of the acting user")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as JSON")

	return cmd
}

func invokeOperation(opts *InvokeOptions, op string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	if !json.Valid([]byte(opts.Args)) {
		return out.Fail(NewExitError(ExitCommandError, "invalid --args JSON"))
	}

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	res, err := s.engine.Dispatch(ctx, op, opts.As, []byte(opts.Args))
	if err != nil {
		return out.Fail(err)
	}
	if err := s.commit(ctx); err != nil {
		return out.Fail(err)
	}

	result := InvokeResult{Op: op, Actor: opts.As, Seq: s.seq, Result: res}
	return out.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "ok: %s (seq %d)\n", op, result.Seq)
		if res != nil {
			writeIndented(w, res)
		}
	})
}

// writeIndented prints v as indented JSON.
func writeIndented(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(w, v)
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Fprintln(w, string(data))
		return
	}
	buf.WriteByte('\n')
	_, _ = w.Write(buf.Bytes())
}
