package ir

import (
	"cmp"
	"slices"
)

// RatePoint anchors the rate curve: at Marker (a unit-time offset, usually
// seconds) the target throughput is Rate operations per unit.
type RatePoint struct {
	Marker int64 `json:"marker" yaml:"marker"`
	Rate   int64 `json:"rate" yaml:"rate"`
}

// Schedule is a sparse set of rate anchors. The curve it describes is defined
// over [min(Marker), max(Marker)).
type Schedule []RatePoint

// NewSchedule builds a Schedule from a marker -> rate mapping, as read from a
// configuration store. Map iteration order is irrelevant; the result is sorted.
func NewSchedule(points map[int64]int64) Schedule {
	s := make(Schedule, 0, len(points))
	for marker, rate := range points {
		s = append(s, RatePoint{Marker: marker, Rate: rate})
	}
	return s.Sorted()
}

// Sorted returns a copy ordered by marker. Duplicate markers are kept, in
// their original relative order, so validation can still see them.
func (s Schedule) Sorted() Schedule {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b RatePoint) int {
		return cmp.Compare(a.Marker, b.Marker)
	})
	return out
}

// Span returns max(Marker) - min(Marker), the number of unit steps the dense
// series covers. Returns 0 for schedules with fewer than two points.
func (s Schedule) Span() int64 {
	if len(s) < 2 {
		return 0
	}
	lo, hi := s[0].Marker, s[0].Marker
	for _, p := range s[1:] {
		lo = min(lo, p.Marker)
		hi = max(hi, p.Marker)
	}
	return hi - lo
}

// Map returns the schedule as a marker -> rate mapping.
func (s Schedule) Map() map[int64]int64 {
	m := make(map[int64]int64, len(s))
	for _, p := range s {
		m[p.Marker] = p.Rate
	}
	return m
}

// RateSeries is the dense per-unit-time rate curve, one entry per step.
type RateSeries []int64

// Sum returns the total number of operations the series asks for.
func (r RateSeries) Sum() int64 {
	var total int64
	for _, v := range r {
		total += v
	}
	return total
}
