// Package config loads bench configuration files: the target throughput
// schedule, the worker/thread layout and the contention ratio of a workload.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/contend/internal/codec"
	"github.com/roach88/contend/internal/ir"
	"github.com/roach88/contend/internal/synth"
)

// BenchConfig is one benchmark description.
type BenchConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Secondaries is the number of load-generating workers.
	Secondaries int `yaml:"secondaries" json:"secondaries"`

	// Threads is the number of threads per worker.
	Threads int `yaml:"threads" json:"threads"`

	Bench      Bench          `yaml:"bench" json:"bench"`
	Contention Contention     `yaml:"contention" json:"contention"`
	Template   codec.Template `yaml:"template,omitempty" json:"template,omitempty"`
}

// Bench holds the throughput schedule.
type Bench struct {
	// Txs maps a time marker to the target rate reached at that marker.
	Txs map[int64]int64 `yaml:"txs" json:"txs"`
}

// Contention controls the operation mix.
type Contention struct {
	// Ratio is the percentage of operations that mutate the hot resource.
	Ratio int `yaml:"ratio" json:"ratio"`

	// Seed pins the shuffle. Nil means a fresh seed per run.
	Seed *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads path, choosing the decoder by extension (.yaml, .yml or .cue),
// and validates the result.
func Load(path string) (*BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg *BenchConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".cue":
		cfg, err = ParseCUE(data, filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML bench config. Unknown fields are
// rejected.
func ParseYAML(data []byte) (*BenchConfig, error) {
	var cfg BenchConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges.
func (c *BenchConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if c.Secondaries < 1 {
		return &ValidationError{Field: "secondaries", Message: fmt.Sprintf("must be at least 1, got %d", c.Secondaries)}
	}
	if c.Threads < 1 {
		return &ValidationError{Field: "threads", Message: fmt.Sprintf("must be at least 1, got %d", c.Threads)}
	}
	if c.Contention.Ratio < 0 || c.Contention.Ratio > 100 {
		return &ValidationError{Field: "contention.ratio", Message: fmt.Sprintf("must be within [0,100], got %d", c.Contention.Ratio)}
	}
	if len(c.Bench.Txs) < 2 {
		return &ValidationError{Field: "bench.txs", Message: fmt.Sprintf("need at least two markers, got %d", len(c.Bench.Txs))}
	}
	for _, p := range c.Schedule() {
		if p.Marker < 0 {
			return &ValidationError{Field: "bench.txs", Message: fmt.Sprintf("marker %d is negative", p.Marker)}
		}
		if p.Rate < 0 {
			return &ValidationError{Field: "bench.txs", Message: fmt.Sprintf("rate %d at marker %d is negative", p.Rate, p.Marker)}
		}
	}
	return nil
}

// Schedule returns the throughput schedule sorted by marker.
func (c *BenchConfig) Schedule() ir.Schedule {
	return ir.NewSchedule(c.Bench.Txs)
}

// Options returns the synthesis options described by the config.
func (c *BenchConfig) Options() synth.Options {
	opts := synth.Options{
		Workers:           c.Secondaries,
		Threads:           c.Threads,
		ContentionPercent: c.Contention.Ratio,
	}
	if c.Contention.Seed != nil {
		opts.Seed = synth.Int64(*c.Contention.Seed)
	}
	return opts
}

// OutputName is the default workload file name for the config's ratio.
func (c *BenchConfig) OutputName() string {
	return fmt.Sprintf("premade_data_contention_%d.json", c.Contention.Ratio)
}

// Overrides replace config values from the command line. Nil fields are
// left alone.
type Overrides struct {
	Ratio       *int
	Seed        *int64
	Secondaries *int
	Threads     *int
}

// Apply returns a copy of c with o applied, revalidated.
func (c *BenchConfig) Apply(o Overrides) (*BenchConfig, error) {
	out := *c
	if o.Ratio != nil {
		out.Contention.Ratio = *o.Ratio
	}
	if o.Seed != nil {
		out.Contention.Seed = synth.Int64(*o.Seed)
	}
	if o.Secondaries != nil {
		out.Secondaries = *o.Secondaries
	}
	if o.Threads != nil {
		out.Threads = *o.Threads
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
