package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contend/internal/codec"
)

func TestGenerate_WritesWorkload(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	out := filepath.Join(dir, "workload.json")

	stdout, err := execute(t, "generate", cfg, "-o", out, "--format", "json")
	require.NoError(t, err)

	var result GenerateResult
	assert.Equal(t, "ok", decodeData(t, stdout, &result))
	assert.Equal(t, "ramp", result.Name)
	assert.Equal(t, int64(42), result.Seed)
	assert.Equal(t, int64(5), result.TotalOps)
	assert.Equal(t, int64(4), result.Creating)
	assert.Equal(t, int64(2), result.Mutating)
	assert.Equal(t, int64(1), result.Remainder)
	assert.Equal(t, 1, result.Spare)
	assert.Empty(t, result.RunID)

	doc, err := codec.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Len())
	assert.NoError(t, codec.CheckIdentity(doc))

	digest, err := codec.Digest(doc)
	require.NoError(t, err)
	assert.Equal(t, digest, result.Digest)
}

func TestGenerate_SameSeedSameBytes(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")

	_, err := execute(t, "generate", cfg, "-o", a)
	require.NoError(t, err)
	_, err = execute(t, "generate", cfg, "-o", b)
	require.NoError(t, err)

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_DefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	t.Chdir(dir)

	stdout, err := execute(t, "generate", cfg, "--contention", "70")
	require.NoError(t, err)
	assert.Contains(t, stdout, "premade_data_contention_70.json")
	assert.Contains(t, stdout, "seed: 42")

	_, err = os.Stat(filepath.Join(dir, "premade_data_contention_70.json"))
	assert.NoError(t, err)
}

func TestGenerate_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	out := filepath.Join(dir, "w.json")

	stdout, err := execute(t, "generate", cfg, "-o", out, "--secondaries", "2", "--threads", "1", "--seed", "9", "--format", "json")
	require.NoError(t, err)

	var result GenerateResult
	decodeData(t, stdout, &result)
	assert.Equal(t, 2, result.Workers)
	assert.Equal(t, 1, result.Threads)
	assert.Equal(t, int64(9), result.Seed)

	doc, err := codec.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, doc, 2)
	assert.Len(t, doc[0], 1)
}

func TestGenerate_RecordsRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	db := filepath.Join(dir, "runs.db")

	stdout, err := execute(t, "generate", cfg, "-o", filepath.Join(dir, "w.json"), "--db", db, "--format", "json")
	require.NoError(t, err)

	var result GenerateResult
	decodeData(t, stdout, &result)
	assert.Len(t, result.RunID, 36)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing config", []string{"generate", filepath.Join(dir, "nope.yaml")}, ErrCodeConfig},
		{"bad ratio", []string{"generate", cfg, "--contention", "101"}, ErrCodeInvalidFlag},
		{"bad threads", []string{"generate", cfg, "--threads", "0"}, ErrCodeInvalidFlag},
		{"unwritable output", []string{"generate", cfg, "-o", filepath.Join(dir, "missing", "w.json")}, ErrCodeWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, err := execute(t, append(tt.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Equal(t, "error", decodeData(t, stdout, nil))
			assert.Contains(t, stdout, tt.code)
		})
	}
}

func TestGenerate_DecliningSchedule(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", `name: decline
secondaries: 1
threads: 1
bench:
  txs: {0: 5, 10: 1}
contention: {ratio: 0}
`)
	stdout, err := execute(t, "generate", cfg, "-o", filepath.Join(dir, "w.json"), "--format", "json")
	require.NoError(t, err)

	var result GenerateResult
	decodeData(t, stdout, &result)
	assert.Equal(t, int64(15), result.TotalOps) // 5+4+3+2+1, then zeros
	assert.Equal(t, 10, result.Intervals)
}
