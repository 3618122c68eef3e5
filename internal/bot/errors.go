package bot

import (
	"errors"

	"roombot/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSlotTaken) {
		return "Sorry, that slot is already booked. Please pick another time."
	}

	if errors.Is(err, database.ErrPastDate) {
		return "You cannot book a date in the past."
	}

	if errors.Is(err, database.ErrDateTooFar) {
		return "That date is too far in the future. Please pick an earlier one."
	}

	if errors.Is(err, database.ErrEmptyDetails) {
		return "Details must not be empty."
	}

	if errors.Is(err, database.ErrBookingNotFound) {
		return "That booking does not exist."
	}

	if errors.Is(err, database.ErrNotOwner) {
		return "Only the owner of a booking can delete it."
	}

	return "Something went wrong while processing your request. Please try again later."
}
