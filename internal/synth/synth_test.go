package synth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contend/internal/ir"
)

func rampSchedule() ir.Schedule {
	return ir.NewSchedule(map[int64]int64{0: 10, 20: 60, 30: 60})
}

func TestSynthesizeDeterministicForSeed(t *testing.T) {
	opts := Options{Workers: 2, Threads: 3, ContentionPercent: 40, Seed: Int64(42)}

	a, err := Synthesize(rampSchedule(), opts)
	require.NoError(t, err)
	b, err := Synthesize(rampSchedule(), opts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(42), a.Seed)
}

func TestSynthesizeSeedChangesOrder(t *testing.T) {
	a, err := Synthesize(rampSchedule(), Options{Workers: 1, Threads: 1, ContentionPercent: 50, Seed: Int64(1)})
	require.NoError(t, err)
	b, err := Synthesize(rampSchedule(), Options{Workers: 1, Threads: 1, ContentionPercent: 50, Seed: Int64(2)})
	require.NoError(t, err)

	assert.Equal(t, a.Series, b.Series)
	assert.Equal(t, a.TotalOps, b.TotalOps)
	assert.NotEqual(t, a.Hierarchy.Ops, b.Hierarchy.Ops)
}

func TestSynthesizeReportsDerivedSeed(t *testing.T) {
	first, err := Synthesize(rampSchedule(), Options{Workers: 2, Threads: 2, ContentionPercent: 30})
	require.NoError(t, err)

	again, err := Synthesize(rampSchedule(), Options{Workers: 2, Threads: 2, ContentionPercent: 30, Seed: Int64(first.Seed)})
	require.NoError(t, err)
	assert.Equal(t, first.Hierarchy, again.Hierarchy)
}

func TestSynthesizeCounts(t *testing.T) {
	res, err := Synthesize(ir.NewSchedule(map[int64]int64{0: 0, 4: 8}), Options{
		Workers: 1, Threads: 2, ContentionPercent: 40, Seed: Int64(5),
	})
	require.NoError(t, err)

	assert.Equal(t, ir.RateSeries{0, 2, 4, 6}, res.Series)
	assert.Equal(t, int64(12), res.TotalOps)
	assert.Equal(t, int64(4), res.Mutating)
	assert.Equal(t, int64(9), res.Creating)
	assert.Zero(t, res.Remainder)
	assert.Equal(t, 12, res.Hierarchy.Len())
	assert.Len(t, res.Hierarchy.Spare, 1)
}

func TestSynthesizeErrorsAbortWithoutResult(t *testing.T) {
	res, err := Synthesize(ir.Schedule{{Marker: 5, Rate: 1}}, Options{Workers: 1, Threads: 1})
	assert.True(t, IsInvalidSchedule(err))
	assert.Nil(t, res)

	res, err = Synthesize(rampSchedule(), Options{Workers: 1, Threads: 1, ContentionPercent: 150})
	assert.True(t, IsInvalidParameter(err))
	assert.Nil(t, res)
}

func TestSynthesizeConcurrentRunsAreIndependent(t *testing.T) {
	opts := Options{Workers: 3, Threads: 2, ContentionPercent: 60, Seed: Int64(2024)}
	want, err := Synthesize(rampSchedule(), opts)
	require.NoError(t, err)

	const runs = 8
	results := make([]*Result, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Synthesize(rampSchedule(), opts)
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Hierarchy, results[i].Hierarchy, "run %d", i)
	}
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	_, _, err := BuildRateCurve(ir.Schedule{})
	wrapped := &wrapErr{err}

	assert.True(t, IsInvalidSchedule(wrapped))
	assert.False(t, IsInvalidParameter(wrapped))
	assert.False(t, IsInsufficientOperations(nil))
}

type wrapErr struct{ inner error }

func (w *wrapErr) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapErr) Unwrap() error { return w.inner }
