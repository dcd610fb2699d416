package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/registry"
	"github.com/roach88/bto/internal/seed"
	"github.com/roach88/bto/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Force bool
}

// SeedResult summarises a seeded database.
type SeedResult struct {
	Database string `json:"database"`
	Users    int    `json:"users"`
	Projects int    `json:"projects"`
	Digest   string `json:"digest"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Initialise the database from a seed file",
		Long: `Validate a YAML seed file and store it as the base state.

A database that already holds state is left alone unless --force is given,
in which case its journal and snapshots are discarded first.

Exit codes:
  0 - Database seeded
  1 - Seed file is invalid
  2 - Command error (unreadable file, database already seeded, etc.)

Examples:
  bto seed ./seed.yaml
  bto seed ./seed.yaml --db ./demo.db --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "discard existing state")

	return cmd
}

func runSeed(ctx context.Context, opts *SeedOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	doc, err := seed.Load(path)
	if err != nil {
		return out.Fail(err)
	}
	snap, err := doc.Snapshot()
	if err != nil {
		return out.Fail(err)
	}

	// Load into a scratch engine so the registry checks run before anything
	// is written.
	reg, err := registry.New()
	if err != nil {
		return out.Fail(err)
	}
	e := engine.New(reg, engine.WithLogger(opts.Logger))
	if err := e.Load(snap); err != nil {
		return out.Fail(err)
	}
	snap = e.Snapshot()

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	_, err = st.LoadSnapshot(ctx, store.KindBase)
	switch {
	case err == nil && !opts.Force:
		return out.Fail(NewExitError(ExitCommandError,
			fmt.Sprintf("%s is already seeded (use --force to discard its state)", opts.Database)))
	case err != nil && !errors.Is(err, store.ErrNoSnapshot):
		return out.Fail(err)
	}

	if err := st.Reset(ctx); err != nil {
		return out.Fail(err)
	}
	if err := st.SaveSnapshot(ctx, store.KindBase, 0, snap); err != nil {
		return out.Fail(err)
	}
	if err := st.SaveSnapshot(ctx, store.KindHead, 0, snap); err != nil {
		return out.Fail(err)
	}

	digest, err := snap.Digest()
	if err != nil {
		return out.Fail(err)
	}
	opts.Logger.Debug("seeded", "db", opts.Database, "users", len(snap.Users), "projects", len(snap.Projects))

	result := SeedResult{
		Database: opts.Database,
		Users:    len(snap.Users),
		Projects: len(snap.Projects),
		Digest:   digest,
	}
	return out.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %s: %d users, %d projects\n", result.Database, result.Users, result.Projects)
		fmt.Fprintf(w, "Digest: %s\n", result.Digest)
	})
}
