package scheduling

import (
	"time"

	"agenda/pkg/model"
)

// FreeSlots walks the grid for the working window and keeps every candidate
// of the given duration that overlaps none of the busy intervals. The result
// is in ascending start order.
func FreeSlots(windowStart, windowEnd time.Time, duration, step time.Duration, busy []Interval) []model.Slot {
	slots := make([]model.Slot, 0)
	for start := range Grid(windowStart, windowEnd, duration, step) {
		candidate := Interval{Start: start, End: start.Add(duration)}
		if OverlapsAny(candidate, busy) {
			continue
		}
		slots = append(slots, model.Slot{Start: candidate.Start, End: candidate.End})
	}
	return slots
}

// BusyIntervals converts bookings into intervals, skipping those whose
// status releases the time.
func BusyIntervals(bookings []*model.Booking) []Interval {
	busy := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.Status.Blocking() {
			continue
		}
		busy = append(busy, Interval{Start: b.StartTS, End: b.EndTS})
	}
	return busy
}
