package synth

import "github.com/roach88/contend/internal/ir"

// BuildRateCurve interpolates a sparse schedule into a dense per-step rate
// series and returns it with the total operation count.
//
// Each segment (t0, r0) -> (t1, r1) walks t0..t1-1. At every step the current
// rate is emitted and added to the total, then advanced by
// (r1-r0)/(t1-t0) and truncated toward zero. The truncation is cumulative and
// deliberately under-shoots the continuous curve; it must stay bit-for-bit
// stable because generated workloads are compared across runs. The final
// point's rate is never emitted.
//
// The running rate is clamped at zero: on steep decreasing segments the
// accumulated truncation could otherwise drive it negative.
func BuildRateCurve(schedule ir.Schedule) (ir.RateSeries, int64, error) {
	points, err := validateSchedule(schedule)
	if err != nil {
		return nil, 0, err
	}

	series := make(ir.RateSeries, 0, points.Span())
	var total int64

	for k := 0; k+1 < len(points); k++ {
		start, end := points[k], points[k+1]
		inc := float64(end.Rate-start.Rate) / float64(end.Marker-start.Marker)

		current := start.Rate
		for t := start.Marker; t < end.Marker; t++ {
			series = append(series, current)
			total += current

			current = int64(float64(current) + inc)
			if current < 0 {
				current = 0
			}
		}
	}

	return series, total, nil
}

// MaxScheduleSpan bounds the number of unit steps a schedule may cover, and
// so the length of the dense rate series.
const MaxScheduleSpan int64 = 1 << 24

// validateSchedule returns the schedule sorted by marker, or an
// InvalidScheduleError.
func validateSchedule(schedule ir.Schedule) (ir.Schedule, error) {
	if len(schedule) < 2 {
		return nil, newScheduleError("schedule needs at least two points, got %d", len(schedule))
	}

	points := schedule.Sorted()
	for i, p := range points {
		if p.Marker < 0 {
			return nil, newScheduleError("time marker %d cannot be negative", p.Marker)
		}
		if p.Rate < 0 {
			return nil, newScheduleError("rate %d at marker %d cannot be negative", p.Rate, p.Marker)
		}
		if i > 0 && p.Marker <= points[i-1].Marker {
			return nil, newScheduleError("time markers must be strictly increasing (duplicate marker %d)", p.Marker)
		}
	}
	if span := points.Span(); span > MaxScheduleSpan {
		return nil, newScheduleError("schedule spans %d steps, at most %d are supported", span, MaxScheduleSpan)
	}
	return points, nil
}
