package database

import "errors"

var (
	// ErrSlotTaken means the requested interval overlaps a committed booking.
	ErrSlotTaken = errors.New("requested time slot is already booked")

	// ErrBookingNotFound means no booking exists with the given id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner means the booking belongs to a different owner.
	ErrNotOwner = errors.New("booking is owned by another user")

	// ErrPastDate means the booking date lies in the past.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar means the booking date is beyond the forward window.
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrEmptyDetails means the details text is empty or whitespace.
	ErrEmptyDetails = errors.New("booking details must not be empty")
)
