package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/codec"
	"github.com/roach88/contend/internal/config"
	"github.com/roach88/contend/internal/store"
	"github.com/roach88/contend/internal/synth"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	SynthFlags
	Database string
	RunID    string
}

// VerifyResult reports a regeneration check.
type VerifyResult struct {
	Match          bool   `json:"match"`
	Seed           int64  `json:"seed"`
	SeedSource     string `json:"seed_source"` // "flag", "config" or "run"
	RunID          string `json:"run_id,omitempty"`
	FileDigest     string `json:"file_digest"`
	ExpectedDigest string `json:"expected_digest"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <config> <workload.json>",
		Short: "Check that a workload file regenerates from its config",
		Long: `Regenerate a workload from its bench config and compare content digests
with an existing workload file.

The seed comes from --seed, else the run named by --run, else the config,
else the run in --db whose digest matches the file. A recorded run also
supplies its contention ratio and layout.

Exit codes:
  0 - Workload regenerates identically
  1 - Digest mismatch
  2 - Command error (missing files, no seed available, etc.)

Example:
  contend verify bench.yaml premade_data_contention_40.json --seed 42
  contend verify bench.yaml out.json --db runs.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], args[1], cmd)
		},
	}

	opts.SynthFlags.register(cmd, true)
	cmd.Flags().StringVar(&opts.Database, "db", "", "run store to look up the seed in")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "recorded run id to take seed and layout from (requires --db)")

	return cmd
}

func runVerify(opts *VerifyOptions, configPath, workloadPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd)

	if opts.RunID != "" && opts.Database == "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "--run requires --db", nil)
	}
	if opts.RunID != "" && cmd.Flags().Changed("seed") {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "--run and --seed cannot be combined", nil)
	}

	doc, err := readWorkload(formatter, workloadPath)
	if err != nil {
		return err
	}
	fileDigest, err := codec.Digest(doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "digesting workload", err)
	}

	cfg, err := loadConfig(formatter, configPath, opts.overrides(cmd))
	if err != nil {
		return err
	}

	result := VerifyResult{FileDigest: fileDigest}
	switch {
	case cmd.Flags().Changed("seed"):
		result.SeedSource = "flag"
	case opts.RunID != "", cfg.Contention.Seed == nil && opts.Database != "":
		run, err := lookupRun(cmd, opts, fileDigest)
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no recorded run for this workload", err)
			}
			return formatter.Fail(ExitCommandError, ErrCodeStore, "reading run store", err)
		}
		cfg = withRun(cfg, run)
		result.SeedSource = "run"
		result.RunID = run.ID
	case cfg.Contention.Seed != nil:
		result.SeedSource = "config"
	default:
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
			"no seed: pass --seed, set contention.seed in the config, or use --db", nil)
	}
	result.Seed = *cfg.Contention.Seed
	logger.Debug("regenerating", "seed", result.Seed, "source", result.SeedSource)

	res, err := synth.Synthesize(cfg.Schedule(), cfg.Options())
	if err != nil {
		return formatter.Fail(ExitCommandError, synthErrorCode(err), "synthesis failed", err)
	}
	result.ExpectedDigest, err = codec.DigestHierarchy(res.Hierarchy, cfg.Template)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "digesting regenerated workload", err)
	}
	result.Match = result.ExpectedDigest == result.FileDigest

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Match {
		fmt.Fprintf(formatter.Writer, "✓ %s regenerates from %s (seed %d from %s)\n",
			workloadPath, configPath, result.Seed, result.SeedSource)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s does not match %s (seed %d from %s)\n",
			workloadPath, configPath, result.Seed, result.SeedSource)
		fmt.Fprintf(formatter.Writer, "  file:     %s\n  expected: %s\n", result.FileDigest, result.ExpectedDigest)
	}

	if !result.Match {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: workload digest mismatch", ErrCodeMismatch))
	}
	return nil
}

// lookupRun finds the run named by --run, or the oldest run whose digest
// matches the workload file.
func lookupRun(cmd *cobra.Command, opts *VerifyOptions, digest string) (store.Run, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if opts.RunID != "" {
		return st.GetRun(ctx, opts.RunID)
	}
	runs, err := st.FindByDigest(ctx, digest)
	if err != nil {
		return store.Run{}, err
	}
	if len(runs) == 0 {
		return store.Run{}, fmt.Errorf("digest %s: %w", digest, store.ErrRunNotFound)
	}
	return runs[0], nil
}

// withRun takes seed, ratio and layout from a recorded run.
func withRun(cfg *config.BenchConfig, run store.Run) *config.BenchConfig {
	out := *cfg
	out.Secondaries = run.Workers
	out.Threads = run.Threads
	out.Contention.Ratio = run.Contention
	out.Contention.Seed = synth.Int64(run.Seed)
	return &out
}
