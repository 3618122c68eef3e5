package schedule

import (
	"fmt"
	"time"
)

// TimeLayout is the storage form for wall-clock times, e.g. "0900".
// Zero-padded HHMM strings compare lexicographically in time order.
const TimeLayout = "1504"

// Clock is a naive wall-clock time of day. No date, no zone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses the HHMM storage form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(other Clock) bool {
	return c.minutes() < other.minutes()
}

func (c Clock) After(other Clock) bool {
	return c.minutes() > other.minutes()
}

func (c Clock) Equal(other Clock) bool {
	return c.minutes() == other.minutes()
}

// AddHours advances the clock within the same day, clamping at 23:59
// rather than wrapping.
func (c Clock) AddHours(hours int) Clock {
	h := c.Hour + hours
	if h > 23 {
		return Clock{Hour: 23, Minute: 59}
	}
	return Clock{Hour: h, Minute: c.Minute}
}

// Interval is a half-open [Start, End) span within one day.
type Interval struct {
	Start Clock
	End   Clock
}

// Overlaps reports whether two half-open intervals intersect. Intervals
// that merely touch at a boundary do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t lies strictly inside the interval.
// Both boundaries are excluded.
func (i Interval) Contains(t Clock) bool {
	return i.Start.Before(t) && t.Before(i.End)
}
