package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/registry"
	"github.com/roach88/bto/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplayResult holds the replay verification result.
type ReplayResult struct {
	Events        int    `json:"events"`
	HeadSeq       int64  `json:"head_seq"`
	ReplayDigest  string `json:"replay_digest"`
	HeadDigest    string `json:"head_digest"`
	Deterministic bool   `json:"deterministic"`
	Match         bool   `json:"match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify it reproduces the stored state",
		Long: `Replay every journalled operation over the base snapshot, twice, and
compare the resulting state digests with each other and with the head
snapshot.

Exit codes:
  0 - Replay is deterministic and matches the head snapshot
  1 - Replay diverged
  2 - Command error (database not seeded, journal does not replay, etc.)

Examples:
  bto replay
  bto replay --db ./demo.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	base, err := st.LoadSnapshot(ctx, store.KindBase)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to load base snapshot", err))
	}
	head, err := st.LoadSnapshot(ctx, store.KindHead)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to load head snapshot", err))
	}
	events, err := st.ReadEvents(ctx, base.Seq)
	if err != nil {
		return out.Fail(err)
	}

	// The head may lag the journal if saving it failed; compare against
	// the events it covers.
	covered := events[:0:0]
	for _, ev := range events {
		if ev.Seq <= head.Seq {
			covered = append(covered, ev)
		}
	}

	var runs [2]engine.VerifyResult
	for i := range runs {
		reg, err := registry.New()
		if err != nil {
			return out.Fail(err)
		}
		e := engine.New(reg, engine.WithLogger(opts.Logger))
		runs[i], err = engine.Verify(ctx, e, base.Snapshot, head.Snapshot, covered)
		if err != nil {
			return out.Fail(WrapExitError(ExitCommandError, "journal does not replay", err))
		}
		opts.Logger.Debug("replay pass", "pass", i+1, "events", runs[i].Events, "digest", runs[i].ReplayDigest)
	}

	result := ReplayResult{
		Events:        runs[0].Events,
		HeadSeq:       head.Seq,
		ReplayDigest:  runs[0].ReplayDigest,
		HeadDigest:    runs[0].HeadDigest,
		Deterministic: runs[0].ReplayDigest == runs[1].ReplayDigest,
		Match:         runs[0].Match && runs[1].Match,
	}

	if err := out.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Replayed %d events (head seq %d)\n", result.Events, result.HeadSeq)
		fmt.Fprintf(w, "  Replay digest: %s\n", result.ReplayDigest)
		fmt.Fprintf(w, "  Head digest:   %s\n", result.HeadDigest)
		fmt.Fprintf(w, "  Deterministic: %s\n", yesNo(result.Deterministic))
		fmt.Fprintf(w, "  Match:         %s\n", yesNo(result.Match))
	}); err != nil {
		return err
	}

	if !result.Deterministic || !result.Match {
		return &ExitError{Code: ExitFailure, Message: "replay diverged from the stored state", Reported: true}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
