package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contend/internal/codec"
	"github.com/roach88/contend/internal/ir"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load("testdata/ramp.yaml")
	require.NoError(t, err)

	assert.Equal(t, "contention-40", cfg.Name)
	assert.Equal(t, 2, cfg.Secondaries)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 40, cfg.Contention.Ratio)
	require.NotNil(t, cfg.Contention.Seed)
	assert.Equal(t, int64(42), *cfg.Contention.Seed)

	assert.Equal(t, ir.Schedule{{Marker: 0, Rate: 10}, {Marker: 30, Rate: 100}, {Marker: 60, Rate: 100}}, cfg.Schedule())
}

func TestLoadCUEMatchesYAML(t *testing.T) {
	fromYAML, err := Load("testdata/ramp.yaml")
	require.NoError(t, err)
	fromCUE, err := Load("testdata/ramp.cue")
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromCUE)
}

func TestLoadTemplate(t *testing.T) {
	cfg, err := Load("testdata/templated.yml")
	require.NoError(t, err)

	assert.Equal(t, codec.Template{Create: "OpenAccount", Update: "Transfer", HotKey: "7"}, cfg.Template)
	assert.Nil(t, cfg.Contention.Seed)
	assert.Nil(t, cfg.Options().Seed)
}

func TestOptions(t *testing.T) {
	cfg, err := Load("testdata/ramp.yaml")
	require.NoError(t, err)

	opts := cfg.Options()
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, 4, opts.Threads)
	assert.Equal(t, 40, opts.ContentionPercent)
	require.NotNil(t, opts.Seed)
	assert.Equal(t, int64(42), *opts.Seed)
	assert.Equal(t, "premade_data_contention_40.json", cfg.OutputName())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "bad.yaml", `
name: x
secondaries: 1
threads: 1
workers: 3
bench:
  txs: {0: 1, 5: 1}
contention:
  ratio: 0
`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, "bad.cue", `
name: "x"
secondaries: 1
threads: 1
workers: 3
bench: txs: {"0": 1, "5": 1}
contention: ratio: 0
`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", "secondaries: 1\nthreads: 1\nbench: {txs: {0: 1, 5: 1}}\ncontention: {ratio: 0}\n", "name"},
		{"no workers", "name: x\nsecondaries: 0\nthreads: 1\nbench: {txs: {0: 1, 5: 1}}\ncontention: {ratio: 0}\n", "secondaries"},
		{"no threads", "name: x\nsecondaries: 1\nthreads: 0\nbench: {txs: {0: 1, 5: 1}}\ncontention: {ratio: 0}\n", "threads"},
		{"ratio high", "name: x\nsecondaries: 1\nthreads: 1\nbench: {txs: {0: 1, 5: 1}}\ncontention: {ratio: 101}\n", "contention.ratio"},
		{"one marker", "name: x\nsecondaries: 1\nthreads: 1\nbench: {txs: {0: 1}}\ncontention: {ratio: 0}\n", "bench.txs"},
		{"negative rate", "name: x\nsecondaries: 1\nthreads: 1\nbench: {txs: {0: 1, 5: -1}}\ncontention: {ratio: 0}\n", "bench.txs"},
		{"negative marker", "name: x\nsecondaries: 1\nthreads: 1\nbench: {txs: {-5: 1, 5: 1}}\ncontention: {ratio: 0}\n", "bench.txs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.body))
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestLoadCUESchemaViolation(t *testing.T) {
	path := writeConfig(t, "bad.cue", `
name: "x"
secondaries: 1
threads: 1
bench: txs: {"0": 1, "5": 1}
contention: ratio: 150
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "bench.toml", "name = 'x'\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Load("testdata/ramp.yaml")
	require.NoError(t, err)

	ratio, seed, threads := 10, int64(7), 1
	out, err := cfg.Apply(Overrides{Ratio: &ratio, Seed: &seed, Threads: &threads})
	require.NoError(t, err)

	assert.Equal(t, 10, out.Contention.Ratio)
	assert.Equal(t, int64(7), *out.Contention.Seed)
	assert.Equal(t, 1, out.Threads)
	assert.Equal(t, 2, out.Secondaries)

	// the original is untouched
	assert.Equal(t, 40, cfg.Contention.Ratio)
	assert.Equal(t, int64(42), *cfg.Contention.Seed)

	bad := -1
	_, err = cfg.Apply(Overrides{Secondaries: &bad})
	assert.True(t, IsValidationError(err))
}
