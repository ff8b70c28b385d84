package align

import (
	"fmt"
	"sort"
)

// TimeRange is a [start, end] interval in seconds on a media file's timeline
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the range in seconds
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Validate checks if the TimeRange has valid values
func (r TimeRange) Validate() error {
	if r.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if r.End < r.Start {
		return fmt.Errorf("end must not be before start")
	}

	return nil
}

// MergeTimeRanges sorts the given ranges by start time and coalesces any
// range that begins within threshold seconds of the previous range's end.
// The sort is stable, so ranges with equal starts keep their input order.
// The input slice is not modified.
func MergeTimeRanges(ranges []TimeRange, threshold float64) []TimeRange {
	if len(ranges) == 0 {
		return []TimeRange{}
	}

	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+threshold {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

// InvertTimeRanges computes the complement of the given ranges within
// [0, totalDuration]. An empty input yields the whole duration as a single
// range. Overlapping inputs would produce degenerate gaps, so non-positive
// gaps are skipped rather than emitted; callers that need exact inversion
// should merge their ranges first.
func InvertTimeRanges(ranges []TimeRange, totalDuration float64) []TimeRange {
	if len(ranges) == 0 {
		return []TimeRange{{Start: 0, End: totalDuration}}
	}

	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	inverted := []TimeRange{}
	if sorted[0].Start > 0 {
		inverted = append(inverted, TimeRange{Start: 0, End: sorted[0].Start})
	}

	for i := 0; i < len(sorted)-1; i++ {
		gap := TimeRange{Start: sorted[i].End, End: sorted[i+1].Start}
		if gap.End > gap.Start {
			inverted = append(inverted, gap)
		}
	}

	if last := sorted[len(sorted)-1]; last.End < totalDuration {
		inverted = append(inverted, TimeRange{Start: last.End, End: totalDuration})
	}

	return inverted
}
