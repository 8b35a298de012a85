package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/config"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/metrics"
)

// RootOptions holds global flags for all commands. Defaults come from the
// LINEUP_* environment; flags override them.
type RootOptions struct {
	Verbose           bool
	Format            string // "json" | "text"
	LogLevel          string
	DB                string
	Team              string
	MaxBatch          int
	AllowDirectCallUp bool
	Metrics           bool

	logger   *slog.Logger
	recorder *metrics.Recorder
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lineup CLI.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	opts := optionsFromConfig(cfg)

	cmd := &cobra.Command{
		Use:   "lineup",
		Short: "lineup - roster capacity and position assignment",
		Long: `Plan, validate and commit fantasy baseball roster moves.

Given a league's slot structure (a CUE league file) and a team's roster,
lineup computes per-position capacity, proposes deterministic slot
assignments for new players and commits them one player at a time.`,
		Version:       ir.EngineVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment configuration", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.recorder == nil {
				return nil
			}
			return opts.recorder.WriteText(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVar(&opts.Format, "format", opts.Format, "output format (json|text)")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug|info|warn|error)")
	flags.StringVar(&opts.DB, "db", opts.DB, "path to SQLite roster database")
	flags.StringVar(&opts.Team, "team", opts.Team, "acting team id")
	flags.IntVar(&opts.MaxBatch, "max-batch", opts.MaxBatch, "maximum candidates per batch (0 disables)")
	flags.BoolVar(&opts.AllowDirectCallUp, "allow-direct-callup", opts.AllowDirectCallUp, "permit minors -> active moves")
	flags.BoolVar(&opts.Metrics, "metrics", opts.Metrics, "print prometheus metrics to stderr on exit")

	cmd.AddCommand(NewCapacityCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewDropCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func optionsFromConfig(cfg config.Config) *RootOptions {
	opts := &RootOptions{
		Format:            cfg.Format,
		LogLevel:          cfg.LogLevel,
		DB:                cfg.DB,
		Team:              cfg.Team,
		MaxBatch:          cfg.MaxBatch,
		AllowDirectCallUp: cfg.AllowDirectCallUp,
		Metrics:           cfg.Metrics,
	}
	if opts.Format == "" {
		opts.Format = "text"
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "warn"
	}
	return opts
}

// setup builds the logger and metrics recorder once flags are parsed.
func (o *RootOptions) setup(stderr io.Writer) error {
	level := slog.LevelDebug
	if !o.Verbose {
		var err error
		level, err = config.Config{LogLevel: o.LogLevel}.Level()
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --log-level", err)
		}
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)

	if o.Metrics {
		o.recorder = metrics.NewRecorder()
	}
	return nil
}

// Logger returns the configured logger, or a discarding one when the
// command runs without the root (as in tests).
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
