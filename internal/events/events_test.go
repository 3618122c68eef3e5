package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got BookingEventPayload
	bus.Subscribe(EventBookingCreated, func(ev *Event) error {
		require.NoError(t, json.Unmarshal(ev.Payload, &got))
		return nil
	})

	payload := BookingEventPayload{
		BookingID: 7,
		Date:      "05 Mar 2025",
		StartTime: "0900",
		EndTime:   "1100",
		Owner:     "alice",
	}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	assert.Equal(t, payload, got)
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(*Event) error {
		calls++
		return nil
	}
	bus.Subscribe(EventBookingDeleted, handler)
	bus.Subscribe(EventBookingDeleted, handler)

	require.NoError(t, bus.PublishJSON(EventBookingDeleted, BookingEventPayload{BookingID: 1}))
	assert.Equal(t, 2, calls)
}

func TestEventBus_TypeIsolation(t *testing.T) {
	bus := NewEventBus()

	created := 0
	bus.Subscribe(EventBookingCreated, func(*Event) error {
		created++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingDeleted, BookingEventPayload{BookingID: 1}))
	assert.Zero(t, created)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	second := false
	bus.Subscribe(EventBookingCreated, func(*Event) error { return errors.New("boom") })
	bus.Subscribe(EventBookingCreated, func(*Event) error {
		second = true
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
	assert.True(t, second)
}
