// Package harness runs workload synthesis scenarios: a bench config paired
// with the results it must produce.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: ramp_two_lanes
//	description: "ramp split over one worker and two threads"
//	config:
//	  name: ramp
//	  secondaries: 1
//	  threads: 2
//	  bench:
//	    txs: {0: 2, 2: 4}
//	  contention: {ratio: 40, seed: 7}
//	expect:
//	  series: [2, 3]
//	  total_ops: 5
//	  creating: 4
//	  mutating: 2
//	  remainder: 1
//	  spare: 1
//	  first_kind: creating
//	  interval_totals: [2, 3]
//	  cell_counts: [[[1, 2], [1, 1]]]
//
// Every expect field is optional; only the ones present are checked. A
// scenario that expects synthesis to fail names the error code instead:
//
//	expect:
//	  error: INVALID_SCHEDULE
//
// # Determinism
//
// Run checks only shuffle-independent facts. RunTwice synthesizes a scenario
// twice with one seed and requires identical workload digests.
package harness
