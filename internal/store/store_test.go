package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contend/internal/ir"
	"github.com/roach88/contend/internal/synth"
)

// createTestStore opens a fresh store in a temp dir with fixed run ids.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(t *testing.T) (ir.Schedule, *synth.Result) {
	t.Helper()
	schedule := ir.NewSchedule(map[int64]int64{0: 3, 4: 11})
	res, err := synth.Synthesize(schedule, synth.Options{Workers: 2, Threads: 1, ContentionPercent: 25, Seed: synth.Int64(9)})
	require.NoError(t, err)
	return schedule, res
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"runs", "run_intervals"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestWriteRunAndGet(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "run-a")
	schedule, res := testResult(t)

	stored, err := s.WriteRun(ctx, NewRun("ramp", schedule, 25, res, "abc123", "out.json"), IntervalsOf(res))
	require.NoError(t, err)
	assert.Equal(t, "run-a", stored.ID)
	assert.Equal(t, int64(1), stored.CreatedSeq)

	got, err := s.GetRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	assert.Equal(t, int64(9), got.Seed)
	assert.Equal(t, 2, got.Workers)
	assert.Equal(t, res.TotalOps, got.TotalOps)
	assert.Equal(t, 1, got.Spare)
	assert.Equal(t, schedule, got.Schedule)
}

func TestReadIntervals(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "run-a")
	schedule, res := testResult(t)

	_, err := s.WriteRun(ctx, NewRun("ramp", schedule, 25, res, "d", ""), IntervalsOf(res))
	require.NoError(t, err)

	intervals, err := s.ReadIntervals(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, intervals, len(res.Series))

	// series 3,5,7,9 over two lanes
	assert.Equal(t, Interval{Interval: 0, Rate: 3, PerCell: 1, Remainder: 1}, intervals[0])
	assert.Equal(t, Interval{Interval: 3, Rate: 9, PerCell: 4, Remainder: 1}, intervals[3])

	var remainder int64
	for _, iv := range intervals {
		remainder += iv.Remainder
	}
	assert.Equal(t, res.Remainder, remainder)

	none, err := s.ReadIntervals(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListRunsOrdering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "zzz", "aaa", "mmm")
	schedule, res := testResult(t)

	for _, name := range []string{"ramp", "flat", "ramp"} {
		_, err := s.WriteRun(ctx, NewRun(name, schedule, 25, res, "d", ""), nil)
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "zzz", all[0].ID)
	assert.Equal(t, "aaa", all[1].ID)
	assert.Equal(t, "mmm", all[2].ID)
	assert.Equal(t, int64(3), all[2].CreatedSeq)

	ramps, err := s.ListRuns(ctx, "ramp")
	require.NoError(t, err)
	require.Len(t, ramps, 2)
	assert.Equal(t, "zzz", ramps[0].ID)
	assert.Equal(t, "mmm", ramps[1].ID)

	none, err := s.ListRuns(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindByDigest(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "r1", "r2")
	schedule, res := testResult(t)

	_, err := s.WriteRun(ctx, NewRun("a", schedule, 25, res, "digest-1", ""), nil)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, NewRun("b", schedule, 25, res, "digest-2", ""), nil)
	require.NoError(t, err)

	found, err := s.FindByDigest(ctx, "digest-2")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "r2", found[0].ID)
}

func TestGetRunNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriteRunDuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	schedule, res := testResult(t)

	run := NewRun("ramp", schedule, 25, res, "d", "")
	run.ID = "same"
	_, err := s.WriteRun(ctx, run, IntervalsOf(res))
	require.NoError(t, err)

	_, err = s.WriteRun(ctx, run, IntervalsOf(res))
	assert.Error(t, err)

	runs, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}

func TestFixedGeneratorPanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("one")
	assert.Equal(t, "one", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
