package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/ir"
	"github.com/roach88/contend/internal/synth"
)

// CurveResult is the dense rate series of a config.
type CurveResult struct {
	Name           string  `json:"name"`
	Series         []int64 `json:"series"`
	TotalOps       int64   `json:"total_ops"`
	ScheduleDigest string  `json:"schedule_digest"`
}

// NewCurveCommand creates the curve command.
func NewCurveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve <config>",
		Short: "Print the per-interval rate series of a bench config",
		Long: `Expand the sparse throughput schedule of a bench config into one target
rate per interval and print it with the total operation count.

Example:
  contend curve bench.yaml
  contend curve bench.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurve(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCurve(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(formatter, configPath, noOverrides)
	if err != nil {
		return err
	}

	schedule := cfg.Schedule()
	series, total, err := synth.BuildRateCurve(schedule)
	if err != nil {
		return formatter.Fail(ExitCommandError, synthErrorCode(err), "building rate curve", err)
	}
	digest, err := ir.ScheduleDigest(schedule)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "digesting schedule", err)
	}

	result := CurveResult{
		Name:           cfg.Name,
		Series:         series,
		TotalOps:       total,
		ScheduleDigest: digest,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s: %s operations over %d interval(s)\n", cfg.Name, humanize.Comma(total), len(series))
	for i, rate := range series {
		fmt.Fprintf(w, "  %4d  %s\n", i, humanize.Comma(rate))
	}
	return nil
}
