package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_ConfigSeed(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)
	out := filepath.Join(dir, "w.json")
	_, err := execute(t, "generate", cfg, "-o", out)
	require.NoError(t, err)

	stdout, err := execute(t, "verify", cfg, out, "--format", "json")
	require.NoError(t, err)

	var result VerifyResult
	decodeData(t, stdout, &result)
	assert.True(t, result.Match)
	assert.Equal(t, "config", result.SeedSource)
	assert.Equal(t, int64(42), result.Seed)
	assert.Equal(t, result.FileDigest, result.ExpectedDigest)
}

func TestVerify_WrongSeedMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", unseededBench)
	out := filepath.Join(dir, "w.json")
	_, err := execute(t, "generate", cfg, "-o", out, "--seed", "1")
	require.NoError(t, err)

	_, err = execute(t, "verify", cfg, out, "--seed", "1")
	require.NoError(t, err)

	stdout, err := execute(t, "verify", cfg, out, "--seed", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "does not match")
}

func TestVerify_SeedFromRunStore(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", unseededBench)
	out := filepath.Join(dir, "w.json")
	db := filepath.Join(dir, "runs.db")

	genOut, err := execute(t, "generate", cfg, "-o", out, "--db", db, "--format", "json")
	require.NoError(t, err)
	var generated GenerateResult
	decodeData(t, genOut, &generated)

	stdout, err := execute(t, "verify", cfg, out, "--db", db, "--format", "json")
	require.NoError(t, err)

	var result VerifyResult
	decodeData(t, stdout, &result)
	assert.True(t, result.Match)
	assert.Equal(t, "run", result.SeedSource)
	assert.Equal(t, generated.RunID, result.RunID)
	assert.Equal(t, generated.Seed, result.Seed)

	stdout, err = execute(t, "verify", cfg, out, "--db", db, "--run", generated.RunID, "--format", "json")
	require.NoError(t, err)
	decodeData(t, stdout, &result)
	assert.True(t, result.Match)
}

func TestVerify_NoSeed(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", unseededBench)
	out := filepath.Join(dir, "w.json")
	_, err := execute(t, "generate", cfg, "-o", out)
	require.NoError(t, err)

	stdout, err := execute(t, "verify", cfg, out)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "no seed")

	stdout, err = execute(t, "verify", cfg, out, "--db", filepath.Join(dir, "empty.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "no recorded run")
}

func TestVerify_RunRequiresDB(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", seededBench)

	_, err := execute(t, "verify", cfg, filepath.Join(dir, "w.json"), "--run", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerify_RunOutranksConfigSeed(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bench.yaml", unseededBench+"  seed: 42\n")
	out := filepath.Join(dir, "w.json")
	db := filepath.Join(dir, "runs.db")

	genOut, err := execute(t, "generate", cfg, "-o", out, "--seed", "7", "--db", db, "--format", "json")
	require.NoError(t, err)
	var generated GenerateResult
	decodeData(t, genOut, &generated)

	stdout, err := execute(t, "verify", cfg, out, "--db", db, "--run", generated.RunID, "--format", "json")
	require.NoError(t, err)
	var result VerifyResult
	decodeData(t, stdout, &result)
	assert.True(t, result.Match)
	assert.Equal(t, "run", result.SeedSource)
	assert.Equal(t, int64(7), result.Seed)

	// Without --run the config seed applies and the file no longer matches.
	_, err = execute(t, "verify", cfg, out, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	stdout, err = execute(t, "verify", cfg, out, "--db", db, "--run", generated.RunID, "--seed", "7")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "cannot be combined")
}
