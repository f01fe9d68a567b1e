package harness

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/contend/internal/synth"
)

// ExpectationError is one failed expectation.
type ExpectationError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func mismatch(field string, expected, actual any) error {
	return &ExpectationError{
		Field:    field,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// checkError compares a synthesis failure against the expected error code.
func checkError(expect Expect, err error) []error {
	var se *synth.Error
	if !errors.As(err, &se) {
		return []error{mismatch("error", expect.Error, err)}
	}
	if string(se.Code) != expect.Error {
		return []error{mismatch("error", expect.Error, se.Code)}
	}
	return nil
}

// checkResult evaluates every value expectation against res.
func checkResult(expect Expect, res *synth.Result) []error {
	var errs []error
	h := res.Hierarchy

	if expect.Error != "" {
		errs = append(errs, mismatch("error", expect.Error, "synthesis succeeded"))
	}
	if expect.Series != nil && !reflect.DeepEqual(expect.Series, []int64(res.Series)) {
		errs = append(errs, mismatch("series", expect.Series, res.Series))
	}
	if expect.TotalOps != nil && *expect.TotalOps != res.TotalOps {
		errs = append(errs, mismatch("total_ops", *expect.TotalOps, res.TotalOps))
	}
	if expect.Creating != nil && *expect.Creating != res.Creating {
		errs = append(errs, mismatch("creating", *expect.Creating, res.Creating))
	}
	if expect.Mutating != nil && *expect.Mutating != res.Mutating {
		errs = append(errs, mismatch("mutating", *expect.Mutating, res.Mutating))
	}
	if expect.Remainder != nil && *expect.Remainder != res.Remainder {
		errs = append(errs, mismatch("remainder", *expect.Remainder, res.Remainder))
	}
	if expect.Spare != nil && *expect.Spare != len(h.Spare) {
		errs = append(errs, mismatch("spare", *expect.Spare, len(h.Spare)))
	}
	if expect.FirstKind != "" {
		actual := "none"
		if len(h.Ops) > 0 {
			actual = h.Ops[0].Kind.String()
		}
		if actual != expect.FirstKind {
			errs = append(errs, mismatch("first_kind", expect.FirstKind, actual))
		}
	}
	if expect.IntervalTotals != nil {
		if actual := h.IntervalTotals(); !reflect.DeepEqual(expect.IntervalTotals, actual) {
			errs = append(errs, mismatch("interval_totals", expect.IntervalTotals, actual))
		}
	}
	if expect.CellCounts != nil {
		if actual := cellCounts(res); !reflect.DeepEqual(expect.CellCounts, actual) {
			errs = append(errs, mismatch("cell_counts", expect.CellCounts, actual))
		}
	}

	return errs
}

func cellCounts(res *synth.Result) [][][]int {
	h := res.Hierarchy
	counts := make([][][]int, h.Workers)
	for w := range counts {
		counts[w] = make([][]int, h.Threads)
		for t := range counts[w] {
			counts[w][t] = make([]int, h.Intervals)
			for i := range counts[w][t] {
				counts[w][t][i] = h.CellLen(w, t, i)
			}
		}
	}
	return counts
}
