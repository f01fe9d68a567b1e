package synth

import (
	"math/rand"
	"time"

	"github.com/roach88/contend/internal/ir"
)

// Shuffler permutes n elements by calling swap. *rand.Rand implements it.
//
// Every synthesis run must own its Shuffler; sharing one between runs makes
// their output depend on scheduling order.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewShuffler returns a seeded source for one synthesis run.
func NewShuffler(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TimeSeed derives a seed from the wall clock. Runs seeded this way are only
// reproducible if the returned seed is recorded.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

// anchoredShuffle permutes pool[1:] in place. pool[0] never moves: the first
// injected operation must be a creating one so it succeeds without prior state.
func anchoredShuffle(pool []ir.Operation, s Shuffler) {
	if len(pool) < 3 {
		return
	}
	rest := pool[1:]
	s.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}
