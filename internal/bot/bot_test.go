package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"roombot/internal/config"
	"roombot/internal/database"
	"roombot/internal/events"
	"roombot/internal/models"
	"roombot/internal/repository"
	"roombot/internal/schedule"
	"roombot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram records everything the bot tries to send.
type fakeTelegram struct {
	mu        sync.Mutex
	texts     []string
	keyboards []tgbotapi.InlineKeyboardMarkup
}

func (f *fakeTelegram) record(text string, kb *tgbotapi.InlineKeyboardMarkup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if kb != nil {
		f.keyboards = append(f.keyboards, *kb)
	}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		var kb *tgbotapi.InlineKeyboardMarkup
		if markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			kb = &markup
		}
		f.record(msg.Text, kb)
	case tgbotapi.EditMessageTextConfig:
		f.record(msg.Text, msg.ReplyMarkup)
	case tgbotapi.DocumentConfig:
		f.record(msg.Caption, nil)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	f.record(text, nil)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) SendWithKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	f.record(text, nil)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) SendWithInlineKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	f.record(text, &kb)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) EditMessage(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	f.record(text, kb)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) AnswerCallback(string, string) error { return nil }

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeTelegram) GetSelf() tgbotapi.User { return tgbotapi.User{UserName: "roombot"} }

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.texts)
	return f.texts[len(f.texts)-1]
}

func (f *fakeTelegram) lastKeyboard(t *testing.T) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.keyboards)
	return f.keyboards[len(f.keyboards)-1]
}

func (f *fakeTelegram) allTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type botFixture struct {
	bot      *Bot
	tg       *fakeTelegram
	bookings *service.BookingService
	states   *service.StateService
	ctx      context.Context
}

func setupBot(t *testing.T) *botFixture {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.Telegram.BotToken = "test-token"
	cfg.Database.Path = "unused"
	cfg.Bot = config.BotConfig{
		FirstHour:         9,
		LastStartHour:     17,
		LatestEndHour:     18,
		ForwardMonths:     6,
		RateLimitMessages: 100,
		RateLimitWindow:   60,
	}

	states := service.NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
	bookings := service.NewBookingService(db, schedule.DefaultWindow, events.NewEventBus(), nil, 6, &logger)
	tg := &fakeTelegram{}

	b, err := NewBot(tg, cfg, states, bookings, nil, &logger)
	require.NoError(t, err)

	return &botFixture{
		bot:      b,
		tg:       tg,
		bookings: bookings,
		states:   states,
		ctx:      logger.WithContext(context.Background()),
	}
}

func messageUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			From: &tgbotapi.User{ID: 1, UserName: "alice"},
			Chat: &tgbotapi.Chat{ID: 1},
		},
	}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: 1, UserName: "alice"},
			Message: &tgbotapi.Message{
				MessageID: 10,
				Chat:      &tgbotapi.Chat{ID: 1},
			},
			Data: data,
		},
	}
}

func (fx *botFixture) userStep(t *testing.T) string {
	t.Helper()
	state, err := fx.states.GetUserState(fx.ctx, 1)
	require.NoError(t, err)
	if state == nil {
		return ""
	}
	return state.CurrentStep
}

// walkToDetails drives the flow up to the details prompt for a date a week
// out, starting at 0900 and ending at 1100.
func (fx *botFixture) walkToDetails(t *testing.T) schedule.Date {
	t.Helper()
	date := schedule.Today().AddDays(7)
	month := date.Time().Format("2006-01")

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	assert.Equal(t, models.StateSelectingMonth, fx.userStep(t))

	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("month:"+month))
	assert.Equal(t, models.StateSelectingDate, fx.userStep(t))

	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("date:"+date.String()))
	assert.Equal(t, models.StateSelectingStart, fx.userStep(t))

	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("start:0900"))
	assert.Equal(t, models.StateSelectingEnd, fx.userStep(t))

	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("end:1100"))
	assert.Equal(t, models.StateTypingDetails, fx.userStep(t))

	return date
}

func TestBookingFlow_HappyPath(t *testing.T) {
	fx := setupBot(t)
	date := fx.walkToDetails(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("Team sync"))

	assert.Empty(t, fx.userStep(t), "state cleared after commit")
	assert.Contains(t, fx.tg.lastText(t), "Conference room booked")

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "alice", stored[0].Owner)
	assert.Equal(t, schedule.Clock{Hour: 9}, stored[0].Start)
	assert.Equal(t, schedule.Clock{Hour: 11}, stored[0].End)
	assert.Equal(t, "Team sync", stored[0].Details)
}

func TestBookingFlow_EmptyDetailsReprompts(t *testing.T) {
	fx := setupBot(t)
	date := fx.walkToDetails(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("   "))

	assert.Equal(t, models.StateTypingDetails, fx.userStep(t), "flow stays at details")
	assert.Contains(t, fx.tg.lastText(t), "Details must not be empty")

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing committed")
}

func TestBookingFlow_ConflictAtCommit(t *testing.T) {
	fx := setupBot(t)
	date := fx.walkToDetails(t)

	// Another user grabs an overlapping slot between selection and commit.
	rival := &models.Booking{
		Date:    date,
		Start:   schedule.Clock{Hour: 10},
		End:     schedule.Clock{Hour: 12},
		Owner:   "bob",
		Details: "standup",
	}
	require.NoError(t, fx.bookings.CreateBooking(fx.ctx, rival))

	fx.bot.handleMessage(fx.ctx, messageUpdate("Team sync"))

	assert.Equal(t, models.StateSelectingStart, fx.userStep(t), "flow restarts at start selection")

	texts := fx.tg.allTexts()
	assert.Contains(t, texts[len(texts)-2], "just booked")

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "bob", stored[0].Owner)
}

func TestBookingFlow_StaleStartRejected(t *testing.T) {
	fx := setupBot(t)
	date := schedule.Today().AddDays(7)
	month := date.Time().Format("2006-01")

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("month:"+month))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("date:"+date.String()))

	// The slot disappears while the keyboard is on screen.
	rival := &models.Booking{
		Date:    date,
		Start:   schedule.Clock{Hour: 9},
		End:     schedule.Clock{Hour: 10},
		Owner:   "bob",
		Details: "standup",
	}
	require.NoError(t, fx.bookings.CreateBooking(fx.ctx, rival))

	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("start:0900"))

	assert.Equal(t, models.StateSelectingStart, fx.userStep(t), "back to start selection")
	texts := fx.tg.allTexts()
	assert.Contains(t, texts, "That start time is no longer available.")
}

func TestCallback_WithoutMessageIsDropped(t *testing.T) {
	fx := setupBot(t)
	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	sent := len(fx.tg.allTexts())

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: 1, UserName: "alice"},
			Data: "month:2026-09",
		},
	}
	fx.bot.handleCallbackQuery(fx.ctx, update)

	assert.Len(t, fx.tg.allTexts(), sent, "nothing sent for a message-less callback")
	assert.Equal(t, models.StateSelectingMonth, fx.userStep(t), "session untouched")
}

func TestBookingFlow_Cancel(t *testing.T) {
	fx := setupBot(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("cancel"))

	assert.Empty(t, fx.userStep(t))
	assert.Contains(t, fx.tg.lastText(t), "canceled")
}

func TestBookingFlow_BackToDates(t *testing.T) {
	fx := setupBot(t)
	date := schedule.Today().AddDays(7)
	month := date.Time().Format("2006-01")

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("month:"+month))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("date:"+date.String()))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("back:dates"))

	assert.Equal(t, models.StateSelectingDate, fx.userStep(t))
}

func TestDeleteFlow(t *testing.T) {
	fx := setupBot(t)
	date := fx.walkToDetails(t)
	fx.bot.handleMessage(fx.ctx, messageUpdate("Team sync"))

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	id := stored[0].ID

	fx.bot.handleMessage(fx.ctx, messageUpdate("/delete"))
	assert.Equal(t, models.StateAwaitingBookingID, fx.userStep(t))

	fx.bot.handleMessage(fx.ctx, messageUpdate(fmt.Sprintf("%d", id)))

	assert.Empty(t, fx.userStep(t))
	assert.Contains(t, fx.tg.lastText(t), "deleted")

	stored, err = fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDeleteFlow_MalformedID(t *testing.T) {
	fx := setupBot(t)
	date := fx.walkToDetails(t)
	fx.bot.handleMessage(fx.ctx, messageUpdate("Team sync"))

	fx.bot.handleMessage(fx.ctx, messageUpdate("/delete"))
	fx.bot.handleMessage(fx.ctx, messageUpdate("not-a-number"))

	assert.Empty(t, fx.userStep(t), "flow ends either way")
	assert.Contains(t, fx.tg.lastText(t), "not a valid booking number")

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "booking untouched")
}

func TestDeleteFlow_ForeignOwner(t *testing.T) {
	fx := setupBot(t)
	date := schedule.Today().AddDays(7)

	rival := &models.Booking{
		Date:    date,
		Start:   schedule.Clock{Hour: 9},
		End:     schedule.Clock{Hour: 10},
		Owner:   "bob",
		Details: "standup",
	}
	require.NoError(t, fx.bookings.CreateBooking(fx.ctx, rival))

	// alice has her own booking so /delete enters the flow.
	own := &models.Booking{
		Date:    date,
		Start:   schedule.Clock{Hour: 11},
		End:     schedule.Clock{Hour: 12},
		Owner:   "alice",
		Details: "1:1",
	}
	require.NoError(t, fx.bookings.CreateBooking(fx.ctx, own))

	fx.bot.handleMessage(fx.ctx, messageUpdate("/delete"))
	fx.bot.handleMessage(fx.ctx, messageUpdate(fmt.Sprintf("%d", rival.ID)))

	assert.Contains(t, fx.tg.lastText(t), "belongs to someone else")

	stored, err := fx.bookings.GetBookingsByDate(fx.ctx, date)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "nothing deleted")
}

func TestListCommand(t *testing.T) {
	fx := setupBot(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("/list"))
	assert.Contains(t, fx.tg.lastText(t), "no upcoming bookings")

	date := fx.walkToDetails(t)
	fx.bot.handleMessage(fx.ctx, messageUpdate("Team sync"))

	fx.bot.handleMessage(fx.ctx, messageUpdate("/list"))
	last := fx.tg.lastText(t)
	assert.Contains(t, last, date.String())
	assert.Contains(t, last, "@alice")
	assert.Contains(t, last, "Team sync")
}

func collectCallbackData(kb tgbotapi.InlineKeyboardMarkup) []string {
	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}
	return data
}

func TestBookCommand_MonthKeyboard(t *testing.T) {
	fx := setupBot(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))

	data := collectCallbackData(fx.tg.lastKeyboard(t))
	// Month arithmetic must anchor at the first of the month; adding months
	// to the current day would normalize past short months (Aug 29 + 6
	// months is Mar 1, not Feb).
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	// Current month plus six ahead, then the cancel row.
	assert.Len(t, data, 8)
	assert.Equal(t, "month:"+first.Format("2006-01"), data[0])
	assert.Equal(t, "month:"+first.AddDate(0, 6, 0).Format("2006-01"), data[6])
	assert.Equal(t, "cancel", data[7])
}

func TestStartTimeKeyboard_ReflectsAvailability(t *testing.T) {
	fx := setupBot(t)
	date := schedule.Today().AddDays(7)
	month := date.Time().Format("2006-01")

	rival := &models.Booking{
		Date:    date,
		Start:   schedule.Clock{Hour: 12},
		End:     schedule.Clock{Hour: 14},
		Owner:   "bob",
		Details: "standup",
	}
	require.NoError(t, fx.bookings.CreateBooking(fx.ctx, rival))

	fx.bot.handleMessage(fx.ctx, messageUpdate("/book"))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("month:"+month))
	fx.bot.handleCallbackQuery(fx.ctx, callbackUpdate("date:"+date.String()))

	data := collectCallbackData(fx.tg.lastKeyboard(t))
	assert.Contains(t, data, "start:1100")
	assert.Contains(t, data, "start:1400")
	assert.NotContains(t, data, "start:1200")
	assert.NotContains(t, data, "start:1300")
	assert.Contains(t, data, "back:dates")
	assert.Contains(t, data, "cancel")
}

func TestStartCommandResetsSession(t *testing.T) {
	fx := setupBot(t)
	fx.walkToDetails(t)

	fx.bot.handleMessage(fx.ctx, messageUpdate("/start"))

	assert.Empty(t, fx.userStep(t))
	assert.Contains(t, fx.tg.lastText(t), "/book")
}
