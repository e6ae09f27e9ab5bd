package entities

import (
	"sort"
	"time"
)

// Interval is a half-open time window [Start, End)
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Empty reports whether the interval has no extent.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// MergeIntervals unions overlapping or touching intervals. The input is not
// modified; the result is sorted by start time.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// SubtractInterval removes cut from each window, splitting windows that
// surround it.
func SubtractInterval(windows []Interval, cut Interval) []Interval {
	if cut.Empty() {
		return windows
	}

	var result []Interval
	for _, w := range windows {
		if !w.Overlaps(cut) {
			result = append(result, w)
			continue
		}
		if cut.Start.After(w.Start) {
			result = append(result, Interval{Start: w.Start, End: cut.Start})
		}
		if cut.End.Before(w.End) {
			result = append(result, Interval{Start: cut.End, End: w.End})
		}
	}
	return result
}

// IntersectIntervals returns the pairwise intersection of two merged,
// sorted window sets.
func IntersectIntervals(a, b []Interval) []Interval {
	var result []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			result = append(result, Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return result
}

// DateRange is a half-open range of instants [From, To)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Valid reports whether the range has positive extent.
func (r DateRange) Valid() bool {
	return r.From.Before(r.To)
}
