package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Callback data is "verb:argument". Every value a button carries is
// re-validated against freshly computed availability before it is used;
// buttons can be stale by the time they are pressed.
func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	userID := cb.From.ID
	data := cb.Data

	// Inline-mode callbacks and callbacks on very old messages carry no
	// Message; there is nothing to edit, so acknowledge and drop.
	if cb.Message == nil {
		zerolog.Ctx(ctx).Warn().Int64("user_id", userID).Str("data", data).Msg("Callback without message")
		if err := b.tgService.AnswerCallback(cb.ID, ""); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to answer callback")
		}
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	// Acknowledge the press so the client stops its spinner.
	if err := b.tgService.AnswerCallback(cb.ID, ""); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to answer callback")
	}

	if data == "cancel" {
		b.clearUserState(ctx, userID)
		b.editMessage(chatID, messageID, "Booking process canceled.", nil)
		return
	}

	verb, arg, _ := strings.Cut(data, ":")
	switch verb {
	case "month":
		b.handleMonthSelection(ctx, chatID, messageID, userID, arg)
	case "date":
		b.handleDateSelection(ctx, chatID, messageID, userID, arg)
	case "start":
		b.handleStartSelection(ctx, chatID, messageID, userID, arg)
	case "end":
		b.handleEndSelection(ctx, chatID, messageID, userID, arg)
	case "back":
		b.handleBack(ctx, chatID, messageID, userID, arg)
	default:
		zerolog.Ctx(ctx).Warn().Str("data", data).Msg("Unknown callback data")
	}
}

func (b *Bot) handleMonthSelection(ctx context.Context, chatID int64, messageID int, userID int64, arg string) {
	if _, err := time.Parse("2006-01", arg); err != nil {
		zerolog.Ctx(ctx).Warn().Str("month", arg).Msg("Malformed month callback")
		b.editMessage(chatID, messageID, "Select a month:", keyboardPtr(b.monthKeyboard()))
		return
	}

	b.setUserState(ctx, userID, models.StateSelectingDate, map[string]interface{}{
		models.KeyMonth: arg,
	})

	keyboard := b.dateKeyboard(arg)
	b.editMessage(chatID, messageID, "Select a date:", &keyboard)
}

func (b *Bot) handleDateSelection(ctx context.Context, chatID int64, messageID int, userID int64, arg string) {
	date, err := schedule.ParseDate(arg)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("date", arg).Msg("Malformed date callback")
		b.editMessage(chatID, messageID, "Select a month:", keyboardPtr(b.monthKeyboard()))
		return
	}

	if err := b.bookingService.ValidateBookingDate(date); err != nil {
		b.editMessage(chatID, messageID, b.getErrorMessage(err), keyboardPtr(b.monthKeyboard()))
		return
	}

	state := b.getUserState(ctx, userID)
	month := ""
	if state != nil {
		month = state.GetString(models.KeyMonth)
	}

	b.presentStartTimes(ctx, chatID, messageID, userID, date, month)
}

func (b *Bot) handleStartSelection(ctx context.Context, chatID int64, messageID int, userID int64, arg string) {
	state := b.getUserState(ctx, userID)
	if state == nil || state.GetDate(models.KeyDate).IsZero() {
		b.editMessage(chatID, messageID, "Your booking session has expired. Please start again with /book.", nil)
		return
	}
	date := state.GetDate(models.KeyDate)

	start, err := schedule.ParseClock(arg)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("start", arg).Msg("Malformed start callback")
		b.presentStartTimes(ctx, chatID, messageID, userID, date, state.GetString(models.KeyMonth))
		return
	}

	// Re-fetch rather than trusting the button: another session may have
	// committed since the options were rendered.
	starts, err := b.bookingService.AvailableStartTimes(ctx, date)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to compute start times")
		b.editMessage(chatID, messageID, b.getErrorMessage(err), nil)
		return
	}
	if !clockIn(starts, start) {
		b.sendMessage(chatID, "That start time is no longer available.")
		b.presentStartTimes(ctx, chatID, messageID, userID, date, state.GetString(models.KeyMonth))
		return
	}

	b.presentEndTimes(ctx, chatID, messageID, userID, date, start, state.GetString(models.KeyMonth))
}

func (b *Bot) handleEndSelection(ctx context.Context, chatID int64, messageID int, userID int64, arg string) {
	state := b.getUserState(ctx, userID)
	if state == nil {
		b.editMessage(chatID, messageID, "Your booking session has expired. Please start again with /book.", nil)
		return
	}
	date := state.GetDate(models.KeyDate)
	start, okStart := state.GetClock(models.KeyStart)
	if date.IsZero() || !okStart {
		b.clearUserState(ctx, userID)
		b.editMessage(chatID, messageID, "Your booking session has expired. Please start again with /book.", nil)
		return
	}

	end, err := schedule.ParseClock(arg)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("end", arg).Msg("Malformed end callback")
		b.presentEndTimes(ctx, chatID, messageID, userID, date, start, state.GetString(models.KeyMonth))
		return
	}

	ends, err := b.bookingService.AvailableEndTimes(ctx, date, start)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to compute end times")
		b.editMessage(chatID, messageID, b.getErrorMessage(err), nil)
		return
	}
	if !clockIn(ends, end) {
		b.sendMessage(chatID, "That end time is no longer available.")
		b.presentEndTimes(ctx, chatID, messageID, userID, date, start, state.GetString(models.KeyMonth))
		return
	}

	b.setUserState(ctx, userID, models.StateTypingDetails, map[string]interface{}{
		models.KeyDate:  date.String(),
		models.KeyStart: start.String(),
		models.KeyEnd:   end.String(),
		models.KeyMonth: state.GetString(models.KeyMonth),
	})

	b.editMessage(chatID, messageID,
		fmt.Sprintf("You have chosen end time %s. Please type in the details for the meeting:", end), nil)
}

// handleBack returns to the preceding step, re-deriving its options.
func (b *Bot) handleBack(ctx context.Context, chatID int64, messageID int, userID int64, target string) {
	state := b.getUserState(ctx, userID)

	switch target {
	case "months":
		b.setUserState(ctx, userID, models.StateSelectingMonth, nil)
		b.editMessage(chatID, messageID, "Select a month:", keyboardPtr(b.monthKeyboard()))

	case "dates":
		month := ""
		if state != nil {
			month = state.GetString(models.KeyMonth)
		}
		if month == "" {
			b.setUserState(ctx, userID, models.StateSelectingMonth, nil)
			b.editMessage(chatID, messageID, "Select a month:", keyboardPtr(b.monthKeyboard()))
			return
		}
		b.setUserState(ctx, userID, models.StateSelectingDate, map[string]interface{}{
			models.KeyMonth: month,
		})
		b.editMessage(chatID, messageID, "Select a date:", keyboardPtr(b.dateKeyboard(month)))

	case "starts":
		if state == nil || state.GetDate(models.KeyDate).IsZero() {
			b.setUserState(ctx, userID, models.StateSelectingMonth, nil)
			b.editMessage(chatID, messageID, "Select a month:", keyboardPtr(b.monthKeyboard()))
			return
		}
		b.presentStartTimes(ctx, chatID, messageID, userID, state.GetDate(models.KeyDate), state.GetString(models.KeyMonth))

	default:
		zerolog.Ctx(ctx).Warn().Str("target", target).Msg("Unknown back target")
	}
}

// presentEndTimes derives end options for date+start and shows them.
func (b *Bot) presentEndTimes(ctx context.Context, chatID int64, messageID int, userID int64, date schedule.Date, start schedule.Clock, month string) {
	ends, err := b.bookingService.AvailableEndTimes(ctx, date, start)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to compute end times")
		b.editMessage(chatID, messageID, b.getErrorMessage(err), nil)
		return
	}

	b.setUserState(ctx, userID, models.StateSelectingEnd, map[string]interface{}{
		models.KeyDate:  date.String(),
		models.KeyStart: start.String(),
		models.KeyMonth: month,
	})

	text := fmt.Sprintf("You have chosen start time %s. Select an end time:", start)
	if len(ends) == 0 {
		// A start with no legal end is a valid engine outcome; offer the
		// way out instead of crashing or dead-ending.
		text = fmt.Sprintf("No free end times after %s.", start)
	}
	keyboard := b.endTimeKeyboard(ends)
	b.replyOrEdit(chatID, messageID, text, &keyboard)
}

func clockIn(slots []schedule.Clock, t schedule.Clock) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

func keyboardPtr(k tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &k
}
