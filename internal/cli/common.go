package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/config"
	"github.com/roach88/contend/internal/synth"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config could not be loaded or is invalid
	ErrCodeNotFound    = "E003" // Path or run not found
	ErrCodeReadFailed  = "E004" // Workload file unreadable
	ErrCodeWriteFailed = "E005" // File write error
	ErrCodeStore       = "E006" // Run store error
	ErrCodeMismatch    = "E007" // Regenerated workload differs
	ErrCodeInvalidFlag = "E008" // Flag value rejected

	// Synthesis errors
	ErrCodeInvalidSchedule  = "E101"
	ErrCodeInvalidParameter = "E102"
	ErrCodeInsufficientOps  = "E103"
)

// synthErrorCode maps a synthesis failure to its CLI error code.
func synthErrorCode(err error) string {
	var se *synth.Error
	if !errors.As(err, &se) {
		return ErrCodeGeneric
	}
	switch se.Code {
	case synth.ErrCodeInvalidSchedule:
		return ErrCodeInvalidSchedule
	case synth.ErrCodeInvalidParameter:
		return ErrCodeInvalidParameter
	case synth.ErrCodeInsufficientOperations:
		return ErrCodeInsufficientOps
	default:
		return ErrCodeGeneric
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on the command's stderr, at debug level
// when --verbose is set.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// SynthFlags are the config overrides shared by generate, verify and sweep.
type SynthFlags struct {
	Contention  int
	Seed        int64
	Secondaries int
	Threads     int
}

func (f *SynthFlags) register(cmd *cobra.Command, withContention bool) {
	if withContention {
		cmd.Flags().IntVar(&f.Contention, "contention", 0, "contention ratio in percent (overrides config)")
	}
	cmd.Flags().Int64Var(&f.Seed, "seed", 0, "shuffle seed (overrides config)")
	cmd.Flags().IntVar(&f.Secondaries, "secondaries", 0, "number of workers (overrides config)")
	cmd.Flags().IntVar(&f.Threads, "threads", 0, "threads per worker (overrides config)")
}

// overrides returns only the flags the user actually set.
func (f *SynthFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("contention") {
		o.Ratio = &f.Contention
	}
	if flags.Changed("seed") {
		o.Seed = &f.Seed
	}
	if flags.Changed("secondaries") {
		o.Secondaries = &f.Secondaries
	}
	if flags.Changed("threads") {
		o.Threads = &f.Threads
	}
	return o
}

// loadConfig loads path and applies o, reporting failures through formatter.
func loadConfig(formatter *OutputFormatter, path string, o config.Overrides) (*config.BenchConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("loading config %s", path), err)
	}
	cfg, err = cfg.Apply(o)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "applying flag overrides", err)
	}
	return cfg, nil
}

// noOverrides leaves a loaded config as written.
var noOverrides config.Overrides

func ratioOverride(ratio int) config.Overrides {
	return config.Overrides{Ratio: &ratio}
}
