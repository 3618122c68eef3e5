package schedule

import "sort"

// Window is the bookable part of a day. Start slots are offered on the
// hour from FirstHour through LastStartHour; no booking may end after
// LatestEndHour.
type Window struct {
	FirstHour     int
	LastStartHour int
	LatestEndHour int
}

// DefaultWindow is the 09:00-18:00 business day with the last one-hour
// slot starting at 17:00.
var DefaultWindow = Window{FirstHour: 9, LastStartHour: 17, LatestEndHour: 18}

// StartTimes returns the on-the-hour start times whose minimal one-hour
// slot [t, t+1h) does not collide with any booked interval. The booked
// intervals may arrive in any order.
func (w Window) StartTimes(booked []Interval) []Clock {
	var slots []Clock
	for hour := w.FirstHour; hour <= w.LastStartHour; hour++ {
		t := Clock{Hour: hour}
		next := t.AddHours(1)

		available := true
		for _, b := range booked {
			// The slot is blocked when its start falls inside a booking,
			// its end falls inside one (boundary touch at the end counts),
			// or a booking begins within it.
			if (!b.Start.After(t) && t.Before(b.End)) ||
				(b.Start.Before(next) && !next.After(b.End)) ||
				(!t.After(b.Start) && b.Start.Before(next)) {
				available = false
				break
			}
		}
		if available {
			slots = append(slots, t)
		}
	}
	return slots
}

// EndTimes returns the legal end times for a booking beginning at start:
// on the hour from start+1h up to the end of day or the next booking,
// whichever comes first. The next booking's own start time is always a
// legal end, so the gap right before it can be filled exactly.
func (w Window) EndTimes(start Clock, booked []Interval) []Clock {
	sorted := append([]Interval(nil), booked...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var next *Clock
	for _, b := range sorted {
		if b.Start.After(start) {
			s := b.Start
			next = &s
			break
		}
	}

	endHour := w.LatestEndHour
	if next != nil && next.Hour < endHour {
		endHour = next.Hour
	}
	limit := Clock{Hour: endHour}

	var slots []Clock
	for t := start.AddHours(1); !t.After(limit); t = t.AddHours(1) {
		if next != nil && t.After(*next) {
			break
		}

		available := true
		for _, b := range sorted {
			if b.Contains(t) {
				available = false
				break
			}
		}
		if available {
			slots = append(slots, t)
		}
	}

	if next != nil && !containsClock(slots, *next) {
		slots = append(slots, *next)
	}

	return slots
}

func containsClock(slots []Clock, t Clock) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}
