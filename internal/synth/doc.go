// Package synth implements the workload schedule synthesizer.
//
// Synthesis runs in two stages:
//
//  1. BuildRateCurve turns a sparse schedule (time marker -> target rate) into
//     a dense per-step RateSeries and the total operation count, using
//     piecewise-linear interpolation with truncate-and-accumulate rounding.
//  2. Partition builds an operation pool sized from that total, mixes
//     creating and mutating operations to hit the contention ratio, shuffles
//     everything but the first operation, assigns sequence ids and slices the
//     pool across workers, threads and intervals.
//
// Synthesize chains both stages. Everything here is pure: inputs are explicit
// arguments, outputs are fresh values, randomness comes only from the
// Shuffler handed in (or the seed in Options).
//
// # Rounding policy
//
// Rates are truncated toward zero after every step and the total is the exact
// sum of the emitted series. The pool holds totalOps+1 operations; the extra
// one is never placed in a cell and is reported in Hierarchy.Spare.
package synth
