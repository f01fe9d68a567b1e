package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// benchSchema constrains CUE bench configs. Definitions are closed, so
// unknown fields fail unification the same way KnownFields rejects them in
// YAML.
const benchSchema = `
#BenchConfig: {
	name:         string & !=""
	description?: string
	secondaries:  int & >=1
	threads:      int & >=1
	bench: txs: [=~"^[0-9]+$"]: int & >=0
	contention: {
		ratio: int & >=0 & <=100
		seed?: int
	}
	template?: {
		create?:  string
		update?:  string
		txtype?:  string
		hot_key?: string
	}
}
`

// ParseCUE evaluates a CUE bench config against the bench schema and
// validates the result. Markers are written as quoted labels:
//
//	bench: txs: {"0": 10, "30": 100}
func ParseCUE(data []byte, filename string) (*BenchConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(benchSchema, cue.Filename("bench.schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile bench schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile CUE: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#BenchConfig")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate CUE: %w", err)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export CUE: %w", err)
	}

	var cfg BenchConfig
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode CUE export: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
