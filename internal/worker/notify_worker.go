package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roombot/internal/domain"
	"roombot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskCreated = "created"
	TaskDeleted = "deleted"
)

// NotifyTask is a unit of secondary-channel work for one booking.
type NotifyTask struct {
	Type      string          `json:"type"`
	Booking   *models.Booking `json:"booking"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotifyWorker drains booking notifications to the spreadsheet channel.
// Strictly best-effort: enqueue never blocks a commit, delivery failures
// are retried with backoff, and exhausted tasks land in a redis dead-letter
// list for manual replay.
type NotifyWorker struct {
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan NotifyTask
	deadLetterKey string
	logger        *zerolog.Logger
}

func NewNotifyWorker(sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifyWorker{
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan NotifyTask, models.WorkerQueueSize),
		deadLetterKey: "notify:deadletter",
		logger:        logger,
	}
}

func (w *NotifyWorker) EnqueueCreated(ctx context.Context, booking *models.Booking) error {
	return w.enqueue(NotifyTask{Type: TaskCreated, Booking: booking, CreatedAt: time.Now()})
}

func (w *NotifyWorker) EnqueueDeleted(ctx context.Context, booking *models.Booking) error {
	return w.enqueue(NotifyTask{Type: TaskDeleted, Booking: booking, CreatedAt: time.Now()})
}

func (w *NotifyWorker) enqueue(task NotifyTask) error {
	if task.Booking == nil {
		return errors.New("booking is required")
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("notify queue is full")
	}
}

// Start consumes tasks until the context is cancelled.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notify worker stopping")
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *NotifyWorker) process(ctx context.Context, task NotifyTask) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.apply(ctx, task)
		if lastErr == nil {
			return
		}

		w.logger.Warn().
			Err(lastErr).
			Str("task", task.Type).
			Int64("booking_id", task.Booking.ID).
			Int("attempt", attempt).
			Msg("notify delivery failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.deadLetter(ctx, task, lastErr)
}

func (w *NotifyWorker) apply(ctx context.Context, task NotifyTask) error {
	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch task.Type {
	case TaskCreated:
		return w.sheets.AppendBooking(callCtx, task.Booking)
	case TaskDeleted:
		return w.sheets.MarkBookingDeleted(callCtx, task.Booking)
	default:
		return errors.New("unknown task type: " + task.Type)
	}
}

func (w *NotifyWorker) deadLetter(ctx context.Context, task NotifyTask, cause error) {
	w.logger.Error().
		Err(cause).
		Str("task", task.Type).
		Int64("booking_id", task.Booking.ID).
		Msg("notify task exhausted retries")

	if w.redis == nil {
		return
	}

	raw, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, raw).Err(); err != nil {
		w.logger.Error().Err(err).Msg("failed to push notify task to dead letter")
	}
}

// QueueLen reports the number of pending tasks (for tests and metrics).
func (w *NotifyWorker) QueueLen() int {
	return len(w.queue)
}
