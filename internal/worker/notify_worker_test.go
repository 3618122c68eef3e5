package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	mu       sync.Mutex
	appended []int64
	deleted  []int64
	failures int
}

func (f *fakeSheets) AppendBooking(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, b.ID)
	return nil
}

func (f *fakeSheets) MarkBookingDeleted(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("sheets unavailable")
	}
	f.deleted = append(f.deleted, b.ID)
	return nil
}

func (f *fakeSheets) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended), len(f.deleted)
}

func sampleBooking(id int64) *models.Booking {
	return &models.Booking{
		ID:      id,
		Date:    schedule.Date{Year: 2025, Month: 3, Day: 5},
		Start:   schedule.Clock{Hour: 9},
		End:     schedule.Clock{Hour: 11},
		Owner:   "alice",
		Details: "planning",
	}
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 10*time.Second, p.NextDelay(10), "clamped at MaxDelay")
	assert.Equal(t, time.Second, p.NextDelay(0), "attempt below 1 treated as 1")
}

func TestNotifyWorker_DeliversTasks(t *testing.T) {
	logger := zerolog.Nop()
	sheets := &fakeSheets{}
	w := NewNotifyWorker(sheets, nil, fastRetry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueCreated(ctx, sampleBooking(1)))
	require.NoError(t, w.EnqueueDeleted(ctx, sampleBooking(2)))

	require.Eventually(t, func() bool {
		appended, deleted := sheets.counts()
		return appended == 1 && deleted == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNotifyWorker_RetriesBeforeSuccess(t *testing.T) {
	logger := zerolog.Nop()
	sheets := &fakeSheets{failures: 2}
	w := NewNotifyWorker(sheets, nil, fastRetry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueCreated(ctx, sampleBooking(1)))

	require.Eventually(t, func() bool {
		appended, _ := sheets.counts()
		return appended == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNotifyWorker_DeadLettersExhaustedTasks(t *testing.T) {
	logger := zerolog.Nop()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sheets := &fakeSheets{failures: 100}
	w := NewNotifyWorker(sheets, client, fastRetry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueCreated(ctx, sampleBooking(9)))

	require.Eventually(t, func() bool {
		n, err := client.LLen(ctx, "notify:deadletter").Result()
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	raw, err := client.LPop(ctx, "notify:deadletter").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"type":"created"`)
}

func TestNotifyWorker_RejectsNilBooking(t *testing.T) {
	logger := zerolog.Nop()
	w := NewNotifyWorker(&fakeSheets{}, nil, fastRetry(), &logger)

	assert.Error(t, w.EnqueueCreated(context.Background(), nil))
}
