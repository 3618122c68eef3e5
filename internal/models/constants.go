package models

// Booking flow steps. Each state is entered only from its predecessor or a
// back edge; cancellation is legal from any of them.
const (
	StateSelectingMonth = "selecting_month"
	StateSelectingDate  = "selecting_date"
	StateSelectingStart = "selecting_start"
	StateSelectingEnd   = "selecting_end"
	StateTypingDetails  = "typing_details"

	// Delete sub-flow.
	StateAwaitingBookingID = "awaiting_booking_id"
)

// TempData keys used by the booking flow.
const (
	KeyDate  = "date"
	KeyStart = "start_time"
	KeyEnd   = "end_time"
	KeyMonth = "month"
)

const (
	// DefaultRedisTTL is the session lifetime in Redis; abandoned flows
	// expire instead of lingering forever.
	DefaultRedisTTL = 24 * 60 * 60 // seconds

	// DefaultForwardMonths bounds how far ahead a date may be selected.
	DefaultForwardMonths = 6

	// RateLimitMessages / RateLimitWindow throttle inbound updates per user.
	RateLimitMessages = 20
	RateLimitWindow   = 60 // seconds

	// WorkerQueueSize is the notification worker queue capacity.
	WorkerQueueSize = 1000
)
