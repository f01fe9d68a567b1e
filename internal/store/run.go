package store

import (
	"github.com/roach88/contend/internal/ir"
	"github.com/roach88/contend/internal/synth"
)

// Run is one recorded synthesis.
type Run struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Seed       int64       `json:"seed"`
	Workers    int         `json:"workers"`
	Threads    int         `json:"threads"`
	Contention int         `json:"contention"`
	TotalOps   int64       `json:"total_ops"`
	Creating   int64       `json:"creating"`
	Mutating   int64       `json:"mutating"`
	Spare      int         `json:"spare"`
	Digest     string      `json:"digest"`
	Schedule   ir.Schedule `json:"schedule"`
	Output     string      `json:"output,omitempty"`
	CreatedSeq int64       `json:"created_seq"`
}

// Interval is the lane split of one interval of a run.
type Interval struct {
	Interval  int   `json:"interval"`
	Rate      int64 `json:"rate"`
	PerCell   int64 `json:"per_cell"`
	Remainder int64 `json:"remainder"`
}

// NewRun describes res as a run record. ID and CreatedSeq are assigned by
// WriteRun.
func NewRun(name string, schedule ir.Schedule, contention int, res *synth.Result, digest, output string) Run {
	return Run{
		Name:       name,
		Seed:       res.Seed,
		Workers:    res.Hierarchy.Workers,
		Threads:    res.Hierarchy.Threads,
		Contention: contention,
		TotalOps:   res.TotalOps,
		Creating:   res.Creating,
		Mutating:   res.Mutating,
		Spare:      len(res.Hierarchy.Spare),
		Digest:     digest,
		Schedule:   schedule.Sorted(),
		Output:     output,
	}
}

// IntervalsOf returns the per-interval lane split of res.
func IntervalsOf(res *synth.Result) []Interval {
	lanes := int64(res.Hierarchy.Workers) * int64(res.Hierarchy.Threads)
	perLane, _ := synth.Shares(res.Series, lanes)
	out := make([]Interval, len(res.Series))
	for i, rate := range res.Series {
		out[i] = Interval{
			Interval:  i,
			Rate:      rate,
			PerCell:   perLane[i],
			Remainder: rate % lanes,
		}
	}
	return out
}
