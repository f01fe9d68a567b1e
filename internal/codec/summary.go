package codec

import (
	"fmt"
	"strconv"
)

// Summary describes a workload document without its transactions.
type Summary struct {
	Workers   int `json:"workers"`
	Threads   int `json:"threads"`
	Intervals int `json:"intervals"`
	Total     int `json:"total"`

	// IntervalTotals counts transactions per interval across all lanes.
	IntervalTotals []int `json:"interval_totals"`

	// CellCounts is [worker][thread][interval] -> transaction count.
	CellCounts [][][]int `json:"cell_counts"`

	// Functions counts transactions per function name.
	Functions map[string]int `json:"functions"`

	// FirstFunction is the function of the first transaction in document
	// order, or "" for an empty document.
	FirstFunction string `json:"first_function"`

	// Ragged is true when threads or intervals differ between lanes.
	Ragged bool `json:"ragged"`
}

// Summarize counts doc by cell, interval and function.
func Summarize(doc Document) Summary {
	s := Summary{
		Workers:    len(doc),
		CellCounts: make([][][]int, len(doc)),
		Functions:  map[string]int{},
	}

	for w, threads := range doc {
		if w == 0 {
			s.Threads = len(threads)
		} else if len(threads) != s.Threads {
			s.Ragged = true
		}
		s.CellCounts[w] = make([][]int, len(threads))

		for t, intervals := range threads {
			if w == 0 && t == 0 {
				s.Intervals = len(intervals)
			} else if len(intervals) != s.Intervals {
				s.Ragged = true
			}
			for len(s.IntervalTotals) < len(intervals) {
				s.IntervalTotals = append(s.IntervalTotals, 0)
			}
			s.CellCounts[w][t] = make([]int, len(intervals))

			for i, txs := range intervals {
				s.CellCounts[w][t][i] = len(txs)
				s.IntervalTotals[i] += len(txs)
				s.Total += len(txs)
				for _, tx := range txs {
					if s.FirstFunction == "" {
						s.FirstFunction = tx.Function
					}
					s.Functions[tx.Function]++
				}
			}
		}
	}

	if s.IntervalTotals == nil {
		s.IntervalTotals = []int{}
	}
	return s
}

// CheckIdentity verifies that every transaction ID is a unique integer and
// that each originator matches its ID.
func CheckIdentity(doc Document) error {
	seen := make(map[int64]struct{}, doc.Len())
	for w, threads := range doc {
		for t, intervals := range threads {
			for i, txs := range intervals {
				for _, tx := range txs {
					id, err := strconv.ParseInt(tx.ID, 10, 64)
					if err != nil {
						return fmt.Errorf("cell (%d,%d,%d): non-integer ID %q", w, t, i, tx.ID)
					}
					if tx.From != tx.ID {
						return fmt.Errorf("cell (%d,%d,%d): transaction %s has originator %q", w, t, i, tx.ID, tx.From)
					}
					if _, dup := seen[id]; dup {
						return fmt.Errorf("cell (%d,%d,%d): duplicate ID %s", w, t, i, tx.ID)
					}
					seen[id] = struct{}{}
				}
			}
		}
	}
	return nil
}
