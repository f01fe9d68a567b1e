package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/contend/internal/codec"
)

// InspectResult summarizes a workload file.
type InspectResult struct {
	Path     string        `json:"path"`
	Summary  codec.Summary `json:"summary"`
	Digest   string        `json:"digest"`
	Identity string        `json:"identity"` // "ok" or the first identity violation
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <workload.json>",
		Short: "Summarize a workload file",
		Long: `Read a workload document and report its layout, per-interval totals,
function mix and content digest. Transaction IDs are checked for uniqueness.

Exit codes:
  0 - Workload is well formed
  1 - Duplicate or malformed transaction IDs
  2 - Command error (file missing or not a workload)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, err := readWorkload(formatter, path)
	if err != nil {
		return err
	}

	digest, err := codec.Digest(doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "digesting workload", err)
	}

	result := InspectResult{
		Path:     path,
		Summary:  codec.Summarize(doc),
		Digest:   digest,
		Identity: "ok",
	}
	identityErr := codec.CheckIdentity(doc)
	if identityErr != nil {
		result.Identity = identityErr.Error()
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printInspectText(formatter, result)
	}

	if identityErr != nil {
		return WrapExitError(ExitFailure, "workload identity check failed", identityErr)
	}
	return nil
}

// readWorkload loads a workload file, mapping failures to exit codes.
func readWorkload(formatter *OutputFormatter, path string) (codec.Document, error) {
	doc, err := codec.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("workload file not found: %s", path), nil)
	}
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}
	return doc, nil
}

func printInspectText(formatter *OutputFormatter, r InspectResult) {
	w := formatter.Writer
	s := r.Summary

	fmt.Fprintf(w, "%s: %s transactions\n", r.Path, humanize.Comma(int64(s.Total)))
	fmt.Fprintf(w, "  layout: %d worker(s) x %d thread(s) x %d interval(s)", s.Workers, s.Threads, s.Intervals)
	if s.Ragged {
		fmt.Fprint(w, " (ragged)")
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.Functions))
	for name := range s.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := s.Functions[name]
		fmt.Fprintf(w, "  %s: %s (%.1f%%)\n", name, humanize.Comma(int64(n)), percent(n, s.Total))
	}

	if len(s.IntervalTotals) > 0 {
		lo, hi := s.IntervalTotals[0], s.IntervalTotals[0]
		for _, n := range s.IntervalTotals {
			lo, hi = min(lo, n), max(hi, n)
		}
		fmt.Fprintf(w, "  per-interval: min %s, max %s\n", humanize.Comma(int64(lo)), humanize.Comma(int64(hi)))
	}
	fmt.Fprintf(w, "  first function: %s\n", s.FirstFunction)
	fmt.Fprintf(w, "  identity: %s\n", r.Identity)
	fmt.Fprintf(w, "  digest: %s\n", r.Digest)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
