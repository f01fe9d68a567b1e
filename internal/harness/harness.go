package harness

import (
	"fmt"

	"github.com/roach88/contend/internal/codec"
	"github.com/roach88/contend/internal/synth"
)

// Run synthesizes the scenario's config and checks its expectations.
//
// The returned error is reserved for harness failures (a workload that
// cannot be rendered); expectation mismatches are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return run(scenario, scenario.Config.Options())
}

func run(scenario *Scenario, opts synth.Options) (*Result, error) {
	result := NewResult()
	cfg := scenario.Config

	res, err := synth.Synthesize(cfg.Schedule(), opts)
	if err != nil {
		if scenario.Expect.Error == "" {
			result.AddError(fmt.Sprintf("synthesis failed: %v", err))
			return result, nil
		}
		for _, e := range checkError(scenario.Expect, err) {
			result.AddError(e.Error())
		}
		return result, nil
	}

	result.Synthesis = res
	result.Digest, err = codec.DigestHierarchy(res.Hierarchy, cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("digest workload: %w", err)
	}

	for _, e := range checkResult(scenario.Expect, res) {
		result.AddError(e.Error())
	}
	return result, nil
}

// RunTwice runs the scenario, then runs it again pinned to the seed the
// first run used, and fails the result unless both workloads share a digest.
func RunTwice(scenario *Scenario) (*Result, error) {
	first, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if !first.Pass || first.Synthesis == nil {
		return first, nil
	}

	opts := scenario.Config.Options()
	opts.Seed = synth.Int64(first.Synthesis.Seed)
	second, err := run(scenario, opts)
	if err != nil {
		return nil, err
	}
	if second.Digest != first.Digest {
		first.AddError(mismatch("digest", first.Digest, second.Digest).Error())
	}
	return first, nil
}
