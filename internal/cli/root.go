package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/config"
	"github.com/roach88/bto/internal/metrics"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Metrics  bool

	// Set by the root command before any subcommand runs.
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bto CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bto",
		Short: "BTO flat allocation",
		Long: `Manage Build-To-Order projects, applications and officer rosters.

State lives in a SQLite database: a seeded base snapshot plus a journal of
every committed operation. Configuration is read from .env and BTO_*
environment variables; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Metrics && opts.Recorder != nil {
				return opts.Recorder.WriteText(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "bto.db", "path to SQLite database")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "dump Prometheus metrics to stderr after the command")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewProjectsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup merges configuration under the flags and builds the logger and
// metrics recorder.
func setup(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("db") {
		opts.Database = cfg.DBPath
	}
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if !flags.Changed("metrics") {
		opts.Metrics = cfg.Metrics
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts.Recorder = metrics.New("bto")
	return nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
