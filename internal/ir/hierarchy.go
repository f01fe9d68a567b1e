package ir

// Hierarchy is the partitioned workload: worker -> thread -> interval ->
// ordered operations.
//
// The three levels are flattened into one operation array stored in
// hierarchy order (worker-major, then thread, then interval). Offsets holds
// Workers*Threads*Intervals+1 boundaries into Ops, so every cell is a
// contiguous sub-slice and no nested containers are allocated.
//
// Spare holds pool operations that belong to no cell. Ops followed by Spare
// is always a permutation of the full operation pool.
type Hierarchy struct {
	Workers   int
	Threads   int
	Intervals int
	Ops       []Operation
	Offsets   []int
	Spare     []Operation
}

// CellIndex returns the flat index of cell (w, t, i).
func (h *Hierarchy) CellIndex(w, t, i int) int {
	return (w*h.Threads+t)*h.Intervals + i
}

// Cell returns the operations of worker w, thread t, interval i.
// The returned slice must not be appended to.
func (h *Hierarchy) Cell(w, t, i int) []Operation {
	k := h.CellIndex(w, t, i)
	lo, hi := h.Offsets[k], h.Offsets[k+1]
	return h.Ops[lo:hi:hi]
}

// CellLen returns the number of operations in cell (w, t, i).
func (h *Hierarchy) CellLen(w, t, i int) int {
	k := h.CellIndex(w, t, i)
	return h.Offsets[k+1] - h.Offsets[k]
}

// Len returns the number of operations placed in cells.
func (h *Hierarchy) Len() int {
	return len(h.Ops)
}

// Walk calls fn for every cell in hierarchy order. Walking stops at the
// first error, which is returned.
func (h *Hierarchy) Walk(fn func(w, t, i int, ops []Operation) error) error {
	for w := 0; w < h.Workers; w++ {
		for t := 0; t < h.Threads; t++ {
			for i := 0; i < h.Intervals; i++ {
				if err := fn(w, t, i, h.Cell(w, t, i)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// IntervalTotals returns, per interval, the number of operations placed
// across all workers and threads.
func (h *Hierarchy) IntervalTotals() []int64 {
	totals := make([]int64, h.Intervals)
	for w := 0; w < h.Workers; w++ {
		for t := 0; t < h.Threads; t++ {
			for i := 0; i < h.Intervals; i++ {
				totals[i] += int64(h.CellLen(w, t, i))
			}
		}
	}
	return totals
}

// KindCounts counts the placed operations by kind.
func (h *Hierarchy) KindCounts() (creating, mutating int64) {
	for _, op := range h.Ops {
		if op.Kind == KindMutating {
			mutating++
		} else {
			creating++
		}
	}
	return creating, mutating
}
