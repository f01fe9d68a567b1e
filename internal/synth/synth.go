package synth

import "github.com/roach88/contend/internal/ir"

// Options are the partition parameters of one synthesis run.
type Options struct {
	Workers           int
	Threads           int
	ContentionPercent int

	// Seed makes the run reproducible. When nil a time-derived seed is used
	// and reported in Result.Seed.
	Seed *int64
}

// Result is the complete, write-once output of a synthesis run.
type Result struct {
	Series    ir.RateSeries
	TotalOps  int64
	Creating  int64
	Mutating  int64
	Seed      int64
	Remainder int64
	Hierarchy *ir.Hierarchy
}

// Synthesize runs the rate curve builder and the partitioner in sequence.
// Any failure aborts the whole run; no partial result is returned.
//
// Synthesize holds no shared state: concurrent calls are independent as long
// as each is given its own options.
func Synthesize(schedule ir.Schedule, opts Options) (*Result, error) {
	series, total, err := BuildRateCurve(schedule)
	if err != nil {
		return nil, err
	}

	seed := TimeSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	params := Params{
		Workers:           opts.Workers,
		Threads:           opts.Threads,
		ContentionPercent: opts.ContentionPercent,
		Shuffler:          NewShuffler(seed),
	}
	h, err := Partition(series, total, params)
	if err != nil {
		return nil, err
	}

	creating, mutating := KindSplit(total, opts.ContentionPercent)
	_, remainder := Shares(series, params.Lanes())

	return &Result{
		Series:    series,
		TotalOps:  total,
		Creating:  creating,
		Mutating:  mutating,
		Seed:      seed,
		Remainder: remainder,
		Hierarchy: h,
	}, nil
}

// Int64 returns a pointer to v, for filling Options.Seed.
func Int64(v int64) *int64 {
	return &v
}
