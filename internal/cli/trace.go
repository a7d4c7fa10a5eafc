package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtree/internal/store"
	"github.com/roach88/jobtree/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	JobID    uint64 // optional - filter to one job
	Kind     string // optional - filter to one record kind
}

// RunInfo describes a stored run.
type RunInfo struct {
	ID       string `json:"id"`
	RootType string `json:"root_type"`
	Reason   string `json:"reason,omitempty"`
	Cycles   int64  `json:"cycles"`
	Finished bool   `json:"finished"`
}

// TraceResult holds the trace of one run.
type TraceResult struct {
	Run     RunInfo        `json:"run"`
	Records []trace.Record `json:"records"`
	Stats   TraceStats     `json:"stats"`
}

// TraceStats holds summary statistics for the run, over all its records.
type TraceStats struct {
	TotalRecords int            `json:"total_records"`
	Kinds        map[string]int `json:"kinds"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect runs recorded in a trace database",
		Long: `Inspect runs recorded by "jobtree run --db" or "jobtree scenario --db".

Without --run, lists every stored run. With --run, prints the records of
that run in sequence order along with per-kind counts.

Examples:
  jobtree trace --db ./trace.db
  jobtree trace --db ./trace.db --run 0190b2c4-...
  jobtree trace --db ./trace.db --run counter_supervised --job 2
  jobtree trace --db ./trace.db --run counter_supervised --kind died --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to show (lists runs when empty)")
	cmd.Flags().Uint64Var(&opts.JobID, "job", 0, "filter to one job ID")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one record kind (born, tick, idle, wait, died, event)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Kind != "" && !trace.Kind(opts.Kind).Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown record kind %q", opts.Kind))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		msg := fmt.Sprintf("no run found with ID %q", opts.RunID)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var records []trace.Record
	if opts.JobID != 0 {
		records, err = st.ReadJobRecords(ctx, run.ID, opts.JobID)
	} else {
		records, err = st.ReadRecords(ctx, run.ID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}
	if opts.Kind != "" {
		records = filterKind(records, trace.Kind(opts.Kind))
	}

	counts, err := st.CountKinds(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count records", err)
	}

	result := TraceResult{
		Run:     runInfo(run),
		Records: records,
		Stats:   TraceStats{Kinds: make(map[string]int, len(counts))},
	}
	for k, n := range counts {
		result.Stats.Kinds[string(k)] = n
		result.Stats.TotalRecords += n
	}

	return formatter.Emit(run.ID, result, func(w io.Writer) { writeTraceText(w, result) })
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	infos := make([]RunInfo, 0, len(runs))
	for _, r := range runs {
		infos = append(infos, runInfo(r))
	}
	return formatter.Emit("", infos, func(w io.Writer) {
		if len(infos) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		for _, r := range infos {
			status := r.Reason
			if !r.Finished {
				status = "unfinished"
			}
			fmt.Fprintf(w, "%s  %-12s %-12s %d cycles\n", r.ID, r.RootType, status, r.Cycles)
		}
	})
}

func runInfo(r store.Run) RunInfo {
	return RunInfo{
		ID:       r.ID,
		RootType: r.RootType,
		Reason:   r.Reason,
		Cycles:   r.Cycles,
		Finished: r.Finished,
	}
}

func filterKind(records []trace.Record, kind trace.Kind) []trace.Record {
	kept := make([]trace.Record, 0, len(records))
	for _, r := range records {
		if r.Kind == kind {
			kept = append(kept, r)
		}
	}
	return kept
}

func writeTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Run: %s (%s)\n", result.Run.ID, result.Run.RootType)
	if result.Run.Finished {
		fmt.Fprintf(w, "Stopped: %s after %d cycles\n", result.Run.Reason, result.Run.Cycles)
	} else {
		fmt.Fprintln(w, "Stopped: unfinished")
	}
	fmt.Fprintln(w)

	if len(result.Records) == 0 {
		fmt.Fprintln(w, "(no matching records)")
	} else {
		_, _ = w.Write(trace.FormatText(result.Records))
	}
	fmt.Fprintln(w)

	kinds := make([]string, 0, len(result.Stats.Kinds))
	for k := range result.Stats.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "Records: %d\n", result.Stats.TotalRecords)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-6s %d\n", k, result.Stats.Kinds[k])
	}
}
