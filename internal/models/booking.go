package models

import (
	"time"

	"roombot/internal/schedule"
)

// Booking is a committed reservation of the conference room. Rows are
// created at the commit step of a booking session and deleted by their
// owner; they are never mutated in place.
type Booking struct {
	ID        int64          `json:"id"`
	Date      schedule.Date  `json:"date"`
	Start     schedule.Clock `json:"start_time"`
	End       schedule.Clock `json:"end_time"`
	Owner     string         `json:"owner"`
	Details   string         `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

// Interval returns the booked [Start, End) range.
func (b *Booking) Interval() schedule.Interval {
	return schedule.Interval{Start: b.Start, End: b.End}
}

// EndsBefore reports whether the booking is entirely in the past
// relative to now. A booking ending exactly at now is past.
func (b *Booking) EndsBefore(now time.Time) bool {
	return !b.Date.At(b.End).After(now)
}
