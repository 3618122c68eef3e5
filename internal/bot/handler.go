package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roombot/internal/database"
	"roombot/internal/models"
	"roombot/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	switch text {
	case "/start":
		b.clearUserState(ctx, userID)
		b.handleStart(update)
		return
	case "/help":
		b.sendMessage(chatID, "Use /book to book the conference room, /list to view upcoming bookings, /delete to cancel one of your bookings.")
		return
	case "/book":
		b.handleBook(ctx, update)
		return
	case "/list":
		b.handleList(ctx, update)
		return
	case "/delete":
		b.handleDeleteStart(ctx, update)
		return
	case "/export":
		b.handleExport(ctx, update)
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil {
		b.sendMessage(chatID, "Use /book to make a booking, or /list to view upcoming bookings.")
		return
	}

	switch state.CurrentStep {
	case models.StateTypingDetails:
		b.handleDetailsInput(ctx, update, state)
	case models.StateAwaitingBookingID:
		b.handleDeleteInput(ctx, update)
	default:
		// Mid-flow text while a keyboard is pending; point back at the flow.
		b.sendMessage(chatID, "Please use the buttons above, or send /start to reset.")
	}
}

func (b *Bot) handleStart(update tgbotapi.Update) {
	user := update.Message.From
	name := user.FirstName
	if name == "" {
		name = user.UserName
	}
	b.sendMessage(update.Message.Chat.ID,
		fmt.Sprintf("Hi %s! Use /book to make a booking, or /list to view upcoming bookings.", name))
}

// handleBook opens a fresh booking session at the month-selection step.
func (b *Bot) handleBook(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID

	b.setUserState(ctx, userID, models.StateSelectingMonth, nil)

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Select a month:")
	msg.ReplyMarkup = b.monthKeyboard()
	b.send(msg)
}

func (b *Bot) handleList(ctx context.Context, update tgbotapi.Update) {
	bookings, err := b.bookingService.GetUpcomingBookings(ctx, time.Now())
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list bookings")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if len(bookings) == 0 {
		b.sendMessage(update.Message.Chat.ID, "There are no upcoming bookings.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Upcoming bookings:\n\n")
	for _, booking := range bookings {
		sb.WriteString(fmt.Sprintf("%s from %s to %s by @%s - %s\n\n",
			booking.Date, booking.Start, booking.End, booking.Owner, booking.Details))
	}

	b.sendMessage(update.Message.Chat.ID, sb.String())
}

// handleDetailsInput finishes the booking flow: non-empty details commit
// the accumulated session as a booking row.
func (b *Bot) handleDetailsInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	details := strings.TrimSpace(update.Message.Text)
	if details == "" {
		b.sendMessage(chatID, "Details must not be empty. Please type in the details for the meeting:")
		return
	}

	date := state.GetDate(models.KeyDate)
	start, okStart := state.GetClock(models.KeyStart)
	end, okEnd := state.GetClock(models.KeyEnd)
	if date.IsZero() || !okStart || !okEnd {
		// Session lost a field, most likely an expired redis entry.
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Your booking session has expired. Please start again with /book.")
		return
	}

	booking := &models.Booking{
		Date:    date,
		Start:   start,
		End:     end,
		Owner:   ownerName(update.Message.From),
		Details: details,
	}

	err := b.bookingService.CreateBooking(ctx, booking)
	if errors.Is(err, database.ErrSlotTaken) {
		// Someone committed an overlapping booking between our selection
		// steps and now. Re-derive the options and put the user back at
		// the start-time step.
		if b.metrics != nil {
			b.metrics.BookingConflicts.Inc()
		}
		b.sendMessage(chatID, "Sorry, that slot was just booked by someone else.")
		b.presentStartTimes(ctx, chatID, 0, userID, date, state.GetString(models.KeyMonth))
		return
	}
	if err != nil {
		// Commit failed but nothing was written; the session stays at
		// TypingDetails so the user can retry by sending the text again.
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to create booking")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.Inc()
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, fmt.Sprintf(
		"Conference room booked for %s from %s to %s by @%s.\nDetails: %s",
		booking.Date, booking.Start, booking.End, booking.Owner, booking.Details))
}

// handleDeleteStart lists the requester's bookings and awaits an id.
func (b *Bot) handleDeleteStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	owner := ownerName(update.Message.From)

	bookings, err := b.bookingService.GetBookingsByOwner(ctx, owner)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list own bookings")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(bookings) == 0 {
		b.sendMessage(chatID, "You have no bookings to delete.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your bookings:\n\n")
	for _, booking := range bookings {
		sb.WriteString(fmt.Sprintf("#%d: %s from %s to %s - %s\n",
			booking.ID, booking.Date, booking.Start, booking.End, booking.Details))
	}
	sb.WriteString("\nSend the number of the booking to delete, or 'cancel' to abort.")

	b.setUserState(ctx, userID, models.StateAwaitingBookingID, nil)
	b.sendMessage(chatID, sb.String())
}

// handleDeleteInput resolves the typed identifier. Malformed, unknown and
// foreign-owner ids each fail with their own message; every outcome ends
// the flow.
func (b *Bot) handleDeleteInput(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	b.clearUserState(ctx, userID)

	if strings.EqualFold(text, "cancel") {
		b.sendMessage(chatID, "Deletion canceled.")
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(text, "#"), 10, 64)
	if err != nil {
		b.sendMessage(chatID, "That is not a valid booking number. Deletion canceled.")
		return
	}

	booking, err := b.bookingService.DeleteBooking(ctx, id, ownerName(update.Message.From))
	switch {
	case errors.Is(err, database.ErrBookingNotFound):
		b.sendMessage(chatID, fmt.Sprintf("No booking #%d exists.", id))
	case errors.Is(err, database.ErrNotOwner):
		b.sendMessage(chatID, fmt.Sprintf("Booking #%d belongs to someone else; only its owner can delete it.", id))
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Int64("booking_id", id).Msg("Failed to delete booking")
		b.sendMessage(chatID, b.getErrorMessage(err))
	default:
		if b.metrics != nil {
			b.metrics.BookingsDeleted.Inc()
		}
		b.sendMessage(chatID, fmt.Sprintf("Booking #%d (%s %s-%s) deleted.",
			booking.ID, booking.Date, booking.Start, booking.End))
	}
}

// ownerName is the opaque identity string stored with bookings. Telegram
// usernames are optional, so fall back to the numeric id.
func ownerName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return strconv.FormatInt(user.ID, 10)
}

// presentStartTimes derives the start options for a date and shows them.
// messageID > 0 edits an existing inline message, otherwise a new message
// is sent. Options are always freshly derived; nothing is cached between
// steps.
func (b *Bot) presentStartTimes(ctx context.Context, chatID int64, messageID int, userID int64, date schedule.Date, month string) {
	starts, err := b.bookingService.AvailableStartTimes(ctx, date)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("date", date.String()).Msg("Failed to compute start times")
		b.replyOrEdit(chatID, messageID, b.getErrorMessage(err), nil)
		return
	}

	b.setUserState(ctx, userID, models.StateSelectingStart, map[string]interface{}{
		models.KeyDate:  date.String(),
		models.KeyMonth: month,
	})

	text := fmt.Sprintf("You have chosen %s. Select a start time:", date)
	if len(starts) == 0 {
		text = fmt.Sprintf("No free start times on %s.", date)
	}
	keyboard := b.startTimeKeyboard(starts)
	b.replyOrEdit(chatID, messageID, text, &keyboard)
}
