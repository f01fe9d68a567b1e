package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/contend/internal/ir"
)

// marshalSchedule stores a schedule as canonical JSON TEXT.
func marshalSchedule(s ir.Schedule) (string, error) {
	points := make([]any, len(s))
	for i, p := range s {
		points[i] = map[string]any{
			"marker": p.Marker,
			"rate":   p.Rate,
		}
	}
	data, err := ir.MarshalCanonical(points)
	if err != nil {
		return "", fmt.Errorf("marshal schedule: %w", err)
	}
	return string(data), nil
}

func unmarshalSchedule(text string) (ir.Schedule, error) {
	var s ir.Schedule
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	if s == nil {
		s = ir.Schedule{}
	}
	return s, nil
}
