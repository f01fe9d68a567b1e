package synth

import "github.com/roach88/contend/internal/ir"

// Params configures the partitioner.
type Params struct {
	// Workers is the number of independent load-generating processes.
	Workers int

	// Threads is the number of threads inside each worker.
	Threads int

	// ContentionPercent is the share of operations, in [0,100], that mutate
	// the shared resource instead of creating a fresh one.
	ContentionPercent int

	// Shuffler permutes the pool. Required.
	Shuffler Shuffler
}

// Lanes returns Workers*Threads, the number of parallel replay lanes.
func (p Params) Lanes() int64 {
	return int64(p.Workers) * int64(p.Threads)
}

func (p Params) validate() error {
	if p.Workers < 1 {
		return newParameterError("workers", p.Workers, "worker count must be at least 1, got %d", p.Workers)
	}
	if p.Threads < 1 {
		return newParameterError("threads", p.Threads, "thread count must be at least 1, got %d", p.Threads)
	}
	if p.ContentionPercent < 0 || p.ContentionPercent > 100 {
		return newParameterError("contention", p.ContentionPercent,
			"contention ratio must be within [0,100], got %d", p.ContentionPercent)
	}
	if p.Shuffler == nil {
		return newParameterError("shuffler", "<nil>", "a shuffler is required")
	}
	return nil
}

// KindSplit sizes the operation pool for totalOps operations at the given
// contention percentage.
//
// mutating = floor(totalOps*percent/100) and creating = totalOps-mutating+1.
// The extra creating operation is intentional: consumers size their buffers
// on exactly this count, so the pool always holds totalOps+1 operations.
func KindSplit(totalOps int64, percent int) (creating, mutating int64) {
	mutating = totalOps * int64(percent) / 100
	creating = totalOps - mutating + 1
	return creating, mutating
}

// Shares divides each interval's rate evenly across lanes. perLane[i] is the
// number of operations every (worker, thread) receives in interval i and
// remainder is the sum of the per-interval leftovers, all of which go to
// worker 0 / thread 0's final interval.
func Shares(series ir.RateSeries, lanes int64) (perLane []int64, remainder int64) {
	perLane = make([]int64, len(series))
	for i, rate := range series {
		perLane[i] = rate / lanes
		remainder += rate % lanes
	}
	return perLane, remainder
}

// buildPool creates the unshuffled pool: creating operations first, then
// mutating ones, each kind with dense refs starting at 0.
func buildPool(creating, mutating int64) []ir.Operation {
	pool := make([]ir.Operation, 0, creating+mutating)
	for i := int64(0); i < creating; i++ {
		pool = append(pool, ir.Operation{Kind: ir.KindCreating, Ref: i})
	}
	for i := int64(0); i < mutating; i++ {
		pool = append(pool, ir.Operation{Kind: ir.KindMutating, Ref: i})
	}
	return pool
}

// Partition builds the operation pool for totalOps, shuffles it with the
// first operation anchored, assigns global sequence ids and slices it across
// workers, threads and intervals.
//
// Cells are filled in row-major (worker, thread) order and, inside each lane,
// interval by interval, consuming the sequenced pool strictly left to right.
// Each cell of interval i receives series[i]/(Workers*Threads) operations.
// The division remainders are then appended, in pool order, to worker 0 /
// thread 0's final interval. Any pool operations still left over (the
// surplus creating operation, at least) are returned in Hierarchy.Spare.
func Partition(series ir.RateSeries, totalOps int64, p Params) (*ir.Hierarchy, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, newParameterError("series", 0, "rate series must cover at least one interval")
	}
	if totalOps < 0 {
		return nil, newParameterError("total_ops", totalOps, "total operation count cannot be negative, got %d", totalOps)
	}
	for i, rate := range series {
		if rate < 0 {
			return nil, newParameterError("series", rate, "rate at interval %d cannot be negative, got %d", i, rate)
		}
	}

	creating, mutating := KindSplit(totalOps, p.ContentionPercent)
	pool := buildPool(creating, mutating)
	anchoredShuffle(pool, p.Shuffler)
	for i := range pool {
		pool[i].Seq = int64(i)
	}

	lanes := p.Lanes()
	perLane, remainder := Shares(series, lanes)
	var laneTotal int64
	for _, n := range perLane {
		laneTotal += n
	}
	consumed := laneTotal * lanes
	need := consumed + remainder
	if need > int64(len(pool)) {
		return nil, newInsufficientError(int64(len(pool)), need)
	}

	intervals := len(series)
	h := &ir.Hierarchy{
		Workers:   p.Workers,
		Threads:   p.Threads,
		Intervals: intervals,
		Ops:       make([]ir.Operation, 0, need),
		Offsets:   make([]int, 0, int(lanes)*intervals+1),
	}

	var cursor int64
	tail := pool[consumed:need]
	for w := 0; w < p.Workers; w++ {
		for t := 0; t < p.Threads; t++ {
			for i := 0; i < intervals; i++ {
				h.Offsets = append(h.Offsets, len(h.Ops))
				h.Ops = append(h.Ops, pool[cursor:cursor+perLane[i]]...)
				cursor += perLane[i]
				if w == 0 && t == 0 && i == intervals-1 {
					h.Ops = append(h.Ops, tail...)
				}
			}
		}
	}
	h.Offsets = append(h.Offsets, len(h.Ops))
	h.Spare = append([]ir.Operation{}, pool[need:]...)

	return h, nil
}
