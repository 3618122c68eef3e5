package bot

import (
	"fmt"
	"time"

	"roombot/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	monthsPerRow = 2
	datesPerRow  = 5
	timesPerRow  = 4
)

// monthKeyboard offers the current month and the configured number of
// months ahead.
func (b *Bot) monthKeyboard() tgbotapi.InlineKeyboardMarkup {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	var buttons []tgbotapi.InlineKeyboardButton
	for i := 0; i <= b.config.Bot.ForwardMonths; i++ {
		month := first.AddDate(0, i, 0)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			month.Format("Jan 2006"),
			"month:"+month.Format("2006-01"),
		))
	}

	rows := chunkButtons(buttons, monthsPerRow)
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// dateKeyboard lists the days of a month, skipping days already in the
// past. month is "2006-01"; a malformed value yields just the nav rows.
func (b *Bot) dateKeyboard(month string) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton

	if parsed, err := time.Parse("2006-01", month); err == nil {
		today := schedule.Today()
		daysInMonth := parsed.AddDate(0, 1, -1).Day()
		for day := 1; day <= daysInMonth; day++ {
			date := schedule.Date{Year: parsed.Year(), Month: parsed.Month(), Day: day}
			if date.Before(today) {
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d", day),
				"date:"+date.String(),
			))
		}
	}

	rows := chunkButtons(buttons, datesPerRow)
	rows = append(rows, backRow("back:months"), cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) startTimeKeyboard(starts []schedule.Clock) tgbotapi.InlineKeyboardMarkup {
	rows := chunkButtons(clockButtons(starts, "start:"), timesPerRow)
	rows = append(rows, backRow("back:dates"), cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) endTimeKeyboard(ends []schedule.Clock) tgbotapi.InlineKeyboardMarkup {
	rows := chunkButtons(clockButtons(ends, "end:"), timesPerRow)
	rows = append(rows, backRow("back:starts"), cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func clockButtons(slots []schedule.Clock, prefix string) []tgbotapi.InlineKeyboardButton {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, t := range slots {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%02d:%02d", t.Hour, t.Minute),
			prefix+t.String(),
		))
	}
	return buttons
}

func chunkButtons(buttons []tgbotapi.InlineKeyboardButton, perRow int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > 0 {
		n := perRow
		if n > len(buttons) {
			n = len(buttons)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons[:n]...))
		buttons = buttons[n:]
	}
	return rows
}

func backRow(data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Back", data),
	)
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
	)
}
