package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/codec"
	"github.com/roach88/contend/internal/config"
	"github.com/roach88/contend/internal/store"
	"github.com/roach88/contend/internal/synth"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	SynthFlags
	Output   string
	Database string
}

// GenerateResult describes one written workload.
type GenerateResult struct {
	Name       string `json:"name"`
	Output     string `json:"output"`
	Seed       int64  `json:"seed"`
	Contention int    `json:"contention"`
	Workers    int    `json:"workers"`
	Threads    int    `json:"threads"`
	Intervals  int    `json:"intervals"`
	TotalOps   int64  `json:"total_ops"`
	Creating   int64  `json:"creating"`
	Mutating   int64  `json:"mutating"`
	Remainder  int64  `json:"remainder"`
	Spare      int    `json:"spare"`
	Digest     string `json:"digest"`
	RunID      string `json:"run_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <config>",
		Short: "Synthesize a workload file from a bench config",
		Long: `Synthesize a workload from a bench config (.yaml, .yml or .cue) and
write it as a worker/thread/interval nested JSON document.

Example:
  contend generate bench.yaml
  contend generate bench.yaml --contention 60 --seed 7 -o hot.json
  contend generate bench.cue --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	opts.SynthFlags.register(cmd, true)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default premade_data_contention_<ratio>.json)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runGenerate(opts *GenerateOptions, configPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd)

	cfg, err := loadConfig(formatter, configPath, opts.overrides(cmd))
	if err != nil {
		return err
	}

	output := opts.Output
	if output == "" {
		output = cfg.OutputName()
	}

	result, res, err := generateWorkload(cfg, output, logger)
	if err != nil {
		return failGenerate(formatter, err)
	}

	if opts.Database != "" {
		run, err := recordRun(commandContext(cmd), opts.Database, cfg, res, result.Digest, output)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "recording run", err)
		}
		result.RunID = run.ID
		logger.Debug("run recorded", "id", run.ID, "db", opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	printGenerateText(formatter, result)
	return nil
}

// generateError remembers which stage of generateWorkload failed.
type generateError struct {
	code string
	msg  string
	err  error
}

func (e *generateError) Error() string { return fmt.Sprintf("%s: %v", e.msg, e.err) }
func (e *generateError) Unwrap() error { return e.err }

func failGenerate(formatter *OutputFormatter, err error) error {
	var ge *generateError
	if errors.As(err, &ge) {
		return formatter.Fail(ExitCommandError, ge.code, ge.msg, ge.err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, "generating workload", err)
}

// generateWorkload synthesizes cfg and streams the rendered document to
// output.
func generateWorkload(cfg *config.BenchConfig, output string, logger *slog.Logger) (*GenerateResult, *synth.Result, error) {
	schedule := cfg.Schedule()
	logger.Debug("synthesizing", "name", cfg.Name, "points", len(schedule),
		"workers", cfg.Secondaries, "threads", cfg.Threads, "contention", cfg.Contention.Ratio)

	res, err := synth.Synthesize(schedule, cfg.Options())
	if err != nil {
		return nil, nil, &generateError{code: synthErrorCode(err), msg: "synthesis failed", err: err}
	}
	logger.Info("synthesized", "name", cfg.Name, "total_ops", res.TotalOps, "seed", res.Seed)

	if err := codec.WriteFile(output, res.Hierarchy, cfg.Template); err != nil {
		return nil, nil, &generateError{code: ErrCodeWriteFailed, msg: fmt.Sprintf("writing %s", output), err: err}
	}

	digest, err := codec.DigestHierarchy(res.Hierarchy, cfg.Template)
	if err != nil {
		return nil, nil, &generateError{code: ErrCodeGeneric, msg: "digesting workload", err: err}
	}
	logger.Debug("workload written", "path", output, "digest", digest)

	return &GenerateResult{
		Name:       cfg.Name,
		Output:     output,
		Seed:       res.Seed,
		Contention: cfg.Contention.Ratio,
		Workers:    res.Hierarchy.Workers,
		Threads:    res.Hierarchy.Threads,
		Intervals:  res.Hierarchy.Intervals,
		TotalOps:   res.TotalOps,
		Creating:   res.Creating,
		Mutating:   res.Mutating,
		Remainder:  res.Remainder,
		Spare:      len(res.Hierarchy.Spare),
		Digest:     digest,
	}, res, nil
}

// recordRun appends a run to the store at dbPath.
func recordRun(ctx context.Context, dbPath string, cfg *config.BenchConfig, res *synth.Result, digest, output string) (store.Run, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}
	run := store.NewRun(cfg.Name, cfg.Schedule(), cfg.Contention.Ratio, res, digest, output)
	return st.WriteRun(ctx, run, store.IntervalsOf(res))
}

func printGenerateText(formatter *OutputFormatter, r *GenerateResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Generated %s transactions into %s\n", humanize.Comma(r.TotalOps), r.Output)
	fmt.Fprintf(w, "  creating: %s, mutating: %s (%d%% contention)\n",
		humanize.Comma(r.Creating), humanize.Comma(r.Mutating), r.Contention)
	fmt.Fprintf(w, "  layout: %d worker(s) x %d thread(s) x %d interval(s), remainder %s, spare %d\n",
		r.Workers, r.Threads, r.Intervals, humanize.Comma(r.Remainder), r.Spare)
	fmt.Fprintf(w, "  seed: %d\n", r.Seed)
	fmt.Fprintf(w, "  digest: %s\n", r.Digest)
	if r.RunID != "" {
		fmt.Fprintf(w, "  run: %s\n", r.RunID)
	}
}
