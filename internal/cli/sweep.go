package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/contend/internal/synth"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	SynthFlags
	Ratios   []int
	OutDir   string
	Database string
	Jobs     int
}

// SweepResult lists the workloads of one sweep, in --ratios order.
type SweepResult struct {
	Runs []GenerateResult `json:"runs"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep <config>",
		Short: "Generate one workload per contention ratio",
		Long: `Generate workloads for several contention ratios from one bench config.
Ratios are synthesized concurrently, each with its own shuffle; a failing
ratio cancels the rest.

Example:
  contend sweep bench.yaml --ratios 0,20,40,60,80,100 --out-dir workloads
  contend sweep bench.yaml --ratios 10,90 --seed 7 --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, args[0], cmd)
		},
	}

	opts.SynthFlags.register(cmd, false)
	cmd.Flags().IntSliceVar(&opts.Ratios, "ratios", nil, "contention ratios in percent (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", ".", "directory for workload files")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record every run in this SQLite database")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", runtime.GOMAXPROCS(0), "ratios synthesized at once")
	_ = cmd.MarkFlagRequired("ratios")

	return cmd
}

func runSweep(opts *SweepOptions, configPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd)

	if opts.Jobs < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs), nil)
	}
	seen := make(map[int]bool, len(opts.Ratios))
	for _, r := range opts.Ratios {
		if seen[r] {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, fmt.Sprintf("ratio %d listed twice", r), nil)
		}
		seen[r] = true
	}

	base, err := loadConfig(formatter, configPath, opts.overrides(cmd))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("creating %s", opts.OutDir), err)
	}

	results := make([]*GenerateResult, len(opts.Ratios))
	synthesized := make([]*synth.Result, len(opts.Ratios))

	g, ctx := errgroup.WithContext(commandContext(cmd))
	g.SetLimit(opts.Jobs)
	for i, ratio := range opts.Ratios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, err := base.Apply(ratioOverride(ratio))
			if err != nil {
				return &generateError{code: ErrCodeInvalidFlag, msg: fmt.Sprintf("ratio %d", ratio), err: err}
			}
			output := filepath.Join(opts.OutDir, cfg.OutputName())
			results[i], synthesized[i], err = generateWorkload(cfg, output, logger.With("ratio", ratio))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return failGenerate(formatter, err)
	}

	if opts.Database != "" {
		for i, ratio := range opts.Ratios {
			cfg, _ := base.Apply(ratioOverride(ratio))
			run, err := recordRun(commandContext(cmd), opts.Database, cfg, synthesized[i], results[i].Digest, results[i].Output)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeStore, "recording run", err)
			}
			results[i].RunID = run.ID
		}
	}

	out := SweepResult{Runs: make([]GenerateResult, len(results))}
	for i, r := range results {
		out.Runs[i] = *r
	}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Generated %d workload(s) in %s\n", len(out.Runs), opts.OutDir)
	for _, r := range out.Runs {
		fmt.Fprintf(w, "  %3d%%  %s  %s ops (%s mutating)  seed %d\n",
			r.Contention, filepath.Base(r.Output), humanize.Comma(r.TotalOps), humanize.Comma(r.Mutating), r.Seed)
	}
	return nil
}
