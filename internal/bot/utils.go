package bot

import (
	"context"

	"roombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// State helpers. Session persistence is best-effort for writes; a failed
// write is logged and the flow continues, a failed read counts as no
// session.

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, step, tempData); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("Failed to save user state")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to load user state")
		return nil
	}
	return state
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}
}

func (b *Bot) isManager(userID int64) bool {
	for _, managerID := range b.config.Managers {
		if userID == managerID {
			return true
		}
	}
	return false
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.tgService.Send(c); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send message")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.tgService.EditMessage(chatID, messageID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Msg("Failed to edit message")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
	}
}

// replyOrEdit edits the inline message when there is one to edit and sends
// a fresh message otherwise.
func (b *Bot) replyOrEdit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if messageID > 0 {
		b.editMessage(chatID, messageID, text, keyboard)
		return
	}
	if keyboard != nil {
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, *keyboard); err != nil {
			b.logger.Error().Err(err).Msg("Failed to send message")
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
		}
		return
	}
	b.sendMessage(chatID, text)
}
