package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: single_lane
description: one lane holds every interval rate
config:
  name: single
  secondaries: 1
  threads: 1
  bench:
    txs: {0: 0, 4: 8}
  contention: {ratio: 40}
expect:
  series: [0, 2, 4, 6]
  total_ops: 12
  cell_counts: [[[0, 2, 4, 6]]]
`

const failingScenario = `name: wrong_total
description: expects the wrong total
config:
  name: single
  secondaries: 1
  threads: 1
  bench:
    txs: {0: 0, 4: 8}
  contention: {ratio: 40}
expect:
  total_ops: 13
`

func TestTestCommand_Passing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "single_lane.yaml", passingScenario)

	stdout, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ single_lane")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Failing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario)
	writeFile(t, dir, "b.yaml", failingScenario)

	stdout, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	assert.Equal(t, "error", decodeData(t, stdout, &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	require.Len(t, result.Scenarios, 2)
	assert.False(t, result.Scenarios[1].Pass)
	require.NotEmpty(t, result.Scenarios[1].Errors)
	assert.Contains(t, result.Scenarios[1].Errors[0], "total_ops")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario)
	writeFile(t, dir, "b.yaml", failingScenario)

	stdout, err := execute(t, "test", dir, "--filter", "a*", "--twice")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Golden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "single_lane.yaml", passingScenario)

	stdout, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "single_lane.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"single_lane"`)
	assert.Contains(t, string(golden), `"series":[0,2,4,6]`)

	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"stale"}`), 0644))
	stdout, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTestCommand_EmptyAndMissing(t *testing.T) {
	stdout, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, err = execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
