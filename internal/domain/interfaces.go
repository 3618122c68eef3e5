package domain

import (
	"context"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the persistence collaborator. It is a dumb store: dates and
// times cross the boundary as semantic types and are serialized to the fixed
// string forms inside the implementation; all interval logic stays in the
// core.
type Repository interface {
	// CreateBooking inserts without a conflict check. Only safe when the
	// caller holds no concurrency assumptions (tests, imports).
	CreateBooking(ctx context.Context, booking *models.Booking) error
	// CreateBookingChecked re-validates the no-overlap invariant and inserts
	// as one atomic unit, returning ErrSlotTaken on conflict.
	CreateBookingChecked(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetBookingsByDate(ctx context.Context, date schedule.Date) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, owner string) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
}

// StateRepository stores ephemeral per-user session state.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// StateManager is the session lifecycle surface the bot works against.
type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// BookingService orchestrates availability queries and booking writes.
type BookingService interface {
	ValidateBookingDate(date schedule.Date) error
	AvailableStartTimes(ctx context.Context, date schedule.Date) ([]schedule.Clock, error)
	AvailableEndTimes(ctx context.Context, date schedule.Date, start schedule.Clock) ([]schedule.Clock, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id int64, owner string) (*models.Booking, error)
	GetUpcomingBookings(ctx context.Context, now time.Time) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, owner string) ([]*models.Booking, error)
	GetBookingsByDate(ctx context.Context, date schedule.Date) ([]*models.Booking, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// NotifyWorker fans committed bookings out to the secondary channel.
// Best-effort by contract: enqueue failures never fail a commit.
type NotifyWorker interface {
	EnqueueCreated(ctx context.Context, booking *models.Booking) error
	EnqueueDeleted(ctx context.Context, booking *models.Booking) error
}

// SheetsWriter appends booking rows to the notification spreadsheet.
type SheetsWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
	MarkBookingDeleted(ctx context.Context, booking *models.Booking) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
