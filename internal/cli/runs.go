package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/store"
)

// RunsOptions holds flags for the runs and show commands.
type RunsOptions struct {
	*RootOptions
	Database string
	Name     string
}

// ShowResult is one run with its interval breakdown.
type ShowResult struct {
	Run       store.Run        `json:"run"`
	Intervals []store.Interval `json:"intervals"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded synthesis runs",
		Long: `List the runs recorded by generate --db and sweep --db, oldest first.

Example:
  contend runs --db runs.db
  contend runs --db runs.db --name contention-40 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only runs of this config name")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run and its interval breakdown",
		Long: `Show the parameters, seed and digest of a recorded run, and how each
interval's rate was split across lanes.

Example:
  contend show --db runs.db 0190a6d2-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// openExistingStore opens a run store that must already exist.
func openExistingStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStore, "opening database", err)
	}
	return st, nil
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), opts.Name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "listing runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := formatter.Table(0)
	fmt.Fprintln(tw, "SEQ\tID\tNAME\tCONTENTION\tLAYOUT\tOPS\tSEED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%dx%d\t%s\t%d\n",
			r.CreatedSeq, r.ID, r.Name, r.Contention, r.Workers, r.Threads, humanize.Comma(r.TotalOps), r.Seed)
	}
	return tw.Flush()
}

func runShow(opts *RunsOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	run, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "reading run", err)
	}
	intervals, err := st.ReadIntervals(ctx, runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "reading intervals", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ShowResult{Run: run, Intervals: intervals})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (#%d)\n", run.ID, run.CreatedSeq)
	fmt.Fprintf(w, "  name: %s\n", run.Name)
	fmt.Fprintf(w, "  layout: %d worker(s) x %d thread(s), %d%% contention, seed %d\n",
		run.Workers, run.Threads, run.Contention, run.Seed)
	fmt.Fprintf(w, "  operations: %s (creating %s, mutating %s, spare %d)\n",
		humanize.Comma(run.TotalOps), humanize.Comma(run.Creating), humanize.Comma(run.Mutating), run.Spare)
	if run.Output != "" {
		fmt.Fprintf(w, "  output: %s\n", run.Output)
	}
	fmt.Fprintf(w, "  digest: %s\n", run.Digest)

	tw := formatter.Table(tabwriter.AlignRight)
	fmt.Fprintln(tw, "INTERVAL\tRATE\tPER CELL\tREMAINDER\t")
	for _, iv := range intervals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t\n", iv.Interval, humanize.Comma(iv.Rate), humanize.Comma(iv.PerCell), iv.Remainder)
	}
	return tw.Flush()
}
