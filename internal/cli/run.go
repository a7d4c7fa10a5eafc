package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtree/internal/builtin"
	"github.com/roach88/jobtree/internal/engine"
	"github.com/roach88/jobtree/internal/store"
	"github.com/roach88/jobtree/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config    string
	Database  string
	Step      time.Duration
	MaxCycles uint64
	MinHz     float64
	MaxHz     float64
	Ticks     bool

	// Clock and RunIDGenerator allow overriding for testing.
	// If nil, the engine defaults (wall clock, UUIDv7) are used.
	Clock          engine.Clock
	RunIDGenerator engine.RunIDGenerator
}

// RunOutput is the summary the run command reports.
type RunOutput struct {
	RunID     string        `json:"run_id"`
	Type      string        `json:"type"`
	Reason    string        `json:"reason"`
	Cycles    uint64        `json:"cycles"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Slept     time.Duration `json:"slept_ns"`
	Created   uint64        `json:"created"`
	Destroyed uint64        `json:"destroyed"`
	Records   int           `json:"records"`
	Database  string        `json:"database,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <type>",
		Short: "Run one job under a supervisor until it finishes",
		Long: `Run a registered job type under a supervisor root.

The supervisor kills itself once no enabled job is left below it, which
ends the run. Settings come from an optional CUE config file; flags
override the file.

Examples:
  jobtree run counter
  jobtree run spawner --max-hz 60 --db ./trace.db
  jobtree run sleeper --config ./engine.cue --max-cycles 100 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to a CUE engine config")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the trace to this SQLite database")
	cmd.Flags().DurationVar(&opts.Step, "step", 0, "fixed step per cycle (0 measures wall time)")
	cmd.Flags().Uint64Var(&opts.MaxCycles, "max-cycles", 0, "stop after this many cycles (0 means no limit)")
	cmd.Flags().Float64Var(&opts.MinHz, "min-hz", 0, "lowest tick rate of the root (0 means unbounded)")
	cmd.Flags().Float64Var(&opts.MaxHz, "max-hz", 0, "highest tick rate of the root (0 means unbounded)")
	cmd.Flags().BoolVar(&opts.Ticks, "ticks", false, "record tick, idle and wait records as well")

	return cmd
}

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if opts.Config != "" {
		loaded, err := engine.LoadConfig(opts.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("step") {
		cfg.FixedStep = opts.Step.String()
	}
	if flags.Changed("max-cycles") {
		cfg.MaxCycles = opts.MaxCycles
	}
	if flags.Changed("min-hz") {
		cfg.MinHz = opts.MinHz
	}
	if flags.Changed("max-hz") {
		cfg.MaxHz = opts.MaxHz
	}
	return cfg, cfg.Validate()
}

func runJob(opts *RunOptions, typeName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	level, _ := engine.ParseLogLevel(cfg.LogLevel)
	setupLogging(cmd, opts.Verbose, level)

	reg := builtin.NewRegistry()
	if !reg.Has(typeName) {
		msg := fmt.Sprintf("unknown job type %q (known: %s)", typeName, strings.Join(reg.Names(), ", "))
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	ids := opts.RunIDGenerator
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	runID := ids.Generate()

	var recOpts []trace.Option
	if !opts.Ticks {
		recOpts = append(recOpts, trace.WithoutTicks())
	}
	rec := trace.NewRecorder(recOpts...)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var st *store.Store
	if opts.Database != "" {
		slog.Debug("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		if err := st.CreateRun(context.WithoutCancel(ctx), runID, typeName); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	engOpts := append(cfg.Options(),
		engine.WithObserver(rec),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(runID)),
		engine.WithLogger(slog.Default()),
	)
	if opts.Clock != nil {
		engOpts = append(engOpts, engine.WithClock(opts.Clock))
	}

	sum, runErr := engine.RunJob(ctx, reg, typeName, engOpts...)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_ = formatter.Error(ErrCodeRunFailed, runErr.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", runErr)
	}

	out := RunOutput{
		RunID:     sum.RunID,
		Type:      typeName,
		Reason:    string(sum.Reason),
		Cycles:    sum.Cycles,
		Elapsed:   sum.Elapsed,
		Slept:     sum.Slept,
		Created:   sum.Stats.Created,
		Destroyed: sum.Stats.Destroyed,
		Records:   rec.Len(),
		Database:  opts.Database,
	}

	if st != nil {
		// The run context may be canceled already; persist what was recorded.
		persistCtx := context.WithoutCancel(ctx)
		if err := st.AppendRecords(persistCtx, runID, rec.Records()); err != nil {
			return WrapExitError(ExitCommandError, "failed to record trace", err)
		}
		err := st.FinishRun(persistCtx, store.Run{
			ID:      runID,
			Reason:  out.Reason,
			Cycles:  int64(out.Cycles),
			Elapsed: out.Elapsed,
			Slept:   out.Slept,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	return formatter.Emit(runID, out, func(w io.Writer) {
		fmt.Fprintf(w, "run %s: %s stopped (%s) after %d cycles\n", out.RunID, out.Type, out.Reason, out.Cycles)
		fmt.Fprintf(w, "  elapsed %s, slept %s\n", out.Elapsed, out.Slept)
		fmt.Fprintf(w, "  jobs created %d, destroyed %d\n", out.Created, out.Destroyed)
		if out.Database != "" {
			fmt.Fprintf(w, "  %d records written to %s\n", out.Records, out.Database)
		}
	})
}
