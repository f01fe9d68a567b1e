package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/contend/internal/ir"
)

// Snapshot returns the canonical JSON of the seed-independent facts of a
// result. Failed runs snapshot their error messages instead.
func Snapshot(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(snapshotMap(name, result))
}

func snapshotMap(name string, result *Result) map[string]any {
	if result.Synthesis == nil {
		errs := make([]any, len(result.Errors))
		for i, e := range result.Errors {
			errs[i] = e
		}
		return map[string]any{
			"scenario_name": name,
			"errors":        errs,
		}
	}

	res := result.Synthesis
	h := res.Hierarchy

	series := make([]any, len(res.Series))
	for i, v := range res.Series {
		series[i] = v
	}
	totals := make([]any, h.Intervals)
	for i, v := range h.IntervalTotals() {
		totals[i] = v
	}
	cells := make([]any, 0, h.Workers)
	for _, threads := range cellCounts(res) {
		ts := make([]any, 0, len(threads))
		for _, intervals := range threads {
			is := make([]any, len(intervals))
			for i, n := range intervals {
				is[i] = n
			}
			ts = append(ts, is)
		}
		cells = append(cells, ts)
	}
	firstKind := "none"
	if len(h.Ops) > 0 {
		firstKind = h.Ops[0].Kind.String()
	}

	return map[string]any{
		"scenario_name":   name,
		"series":          series,
		"total_ops":       res.TotalOps,
		"creating":        res.Creating,
		"mutating":        res.Mutating,
		"remainder":       res.Remainder,
		"spare":           len(h.Spare),
		"first_kind":      firstKind,
		"interval_totals": totals,
		"cell_counts":     cells,
	}
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
