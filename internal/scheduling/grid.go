package scheduling

import (
	"fmt"
	"iter"
	"time"
)

const DateLayout = "2006-01-02"

// WorkingHours is a daily window expressed as offsets from midnight UTC.
type WorkingHours struct {
	Start time.Duration
	End   time.Duration
}

// ParseWorkingHours parses "HH:MM" literals into a window.
func ParseWorkingHours(start, end string) (WorkingHours, error) {
	s, err := parseClock(start)
	if err != nil {
		return WorkingHours{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return WorkingHours{}, err
	}
	if e <= s {
		return WorkingHours{}, fmt.Errorf("working hours end %s must be after start %s", end, start)
	}
	return WorkingHours{Start: s, End: e}, nil
}

func parseClock(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseDay parses a YYYY-MM-DD date as midnight UTC.
func ParseDay(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.UTC)
}

// Window returns the UTC instants at which the working day opens and closes.
func (w WorkingHours) Window(day time.Time) (time.Time, time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(w.Start), midnight.Add(w.End)
}

// Grid yields candidate slot starts t with t+duration <= end, stepping from
// start. Each call to the returned sequence starts over.
func Grid(start, end time.Time, duration, step time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if duration <= 0 || step <= 0 {
			return
		}
		for t := start; !t.Add(duration).After(end); t = t.Add(step) {
			if !yield(t) {
				return
			}
		}
	}
}
