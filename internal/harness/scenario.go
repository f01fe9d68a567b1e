package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/contend/internal/config"
	"github.com/roach88/contend/internal/ir"
)

// Scenario is one synthesis conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the inline bench config to synthesize.
	Config config.BenchConfig `yaml:"config"`

	// Expect lists the facts the synthesis must produce.
	Expect Expect `yaml:"expect"`
}

// Expect holds optional expectations. Nil fields are not checked.
type Expect struct {
	Series         []int64   `yaml:"series,omitempty"`
	TotalOps       *int64    `yaml:"total_ops,omitempty"`
	Creating       *int64    `yaml:"creating,omitempty"`
	Mutating       *int64    `yaml:"mutating,omitempty"`
	Remainder      *int64    `yaml:"remainder,omitempty"`
	Spare          *int      `yaml:"spare,omitempty"`
	FirstKind      string    `yaml:"first_kind,omitempty"`
	IntervalTotals []int64   `yaml:"interval_totals,omitempty"`
	CellCounts     [][][]int `yaml:"cell_counts,omitempty"`

	// Error is the synth error code the run must fail with.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every .yaml/.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields. The inline config is only
// checked for presence of a name here; range validation happens in Run so
// that scenarios can expect a parameter error.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Config.Name == "" {
		return fmt.Errorf("config.name is required")
	}

	if s.Expect.FirstKind != "" {
		if _, err := ir.ParseKind(s.Expect.FirstKind); err != nil {
			return fmt.Errorf("expect.first_kind: %w", err)
		}
	}

	if s.Expect.Error != "" && s.Expect.hasValues() {
		return fmt.Errorf("expect.error cannot be combined with value expectations")
	}

	return nil
}

func (e Expect) hasValues() bool {
	return e.Series != nil || e.TotalOps != nil || e.Creating != nil || e.Mutating != nil ||
		e.Remainder != nil || e.Spare != nil || e.FirstKind != "" ||
		e.IntervalTotals != nil || e.CellCounts != nil
}
