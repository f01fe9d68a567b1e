// Package ir provides the data model shared by the synthesizer, the codec and
// the adapters around them.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types in any serialized value; rates and ids are int64
//   - Values are write-once: a Schedule is supplied once, a RateSeries and a
//     Hierarchy are produced once per synthesis run and never mutated
//   - Ordering is positional (sequence ids, interval indexes), never wall-clock
package ir
