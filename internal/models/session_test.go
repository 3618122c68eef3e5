package models

import (
	"encoding/json"
	"testing"
	"time"

	"roombot/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserState_GetString(t *testing.T) {
	state := &UserState{TempData: map[string]interface{}{
		"str": "hello",
		"num": 42,
	}}

	assert.Equal(t, "hello", state.GetString("str"))
	assert.Empty(t, state.GetString("num"), "non-string value")
	assert.Empty(t, state.GetString("missing"))

	empty := &UserState{}
	assert.Empty(t, empty.GetString("any"), "nil TempData")
}

func TestUserState_GetDate(t *testing.T) {
	state := &UserState{TempData: map[string]interface{}{
		KeyDate: "05 Mar 2025",
		"bad":   "2025-03-05",
	}}

	assert.Equal(t, schedule.Date{Year: 2025, Month: time.March, Day: 5}, state.GetDate(KeyDate))
	assert.True(t, state.GetDate("bad").IsZero())
	assert.True(t, state.GetDate("missing").IsZero())
}

func TestUserState_GetClock(t *testing.T) {
	state := &UserState{TempData: map[string]interface{}{
		KeyStart: "0930",
		"bad":    "9:30",
	}}

	got, ok := state.GetClock(KeyStart)
	require.True(t, ok)
	assert.Equal(t, schedule.Clock{Hour: 9, Minute: 30}, got)

	_, ok = state.GetClock("bad")
	assert.False(t, ok)
	_, ok = state.GetClock("missing")
	assert.False(t, ok)
}

// Accessors must tolerate the types json.Unmarshal produces after a trip
// through the redis store.
func TestUserState_SurvivesJSONRoundTrip(t *testing.T) {
	state := &UserState{
		UserID:      7,
		CurrentStep: StateSelectingEnd,
		TempData: map[string]interface{}{
			KeyDate:  "05 Mar 2025",
			KeyStart: "0900",
			KeyMonth: "2025-03",
		},
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var got UserState
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, StateSelectingEnd, got.CurrentStep)
	assert.False(t, got.GetDate(KeyDate).IsZero())
	start, ok := got.GetClock(KeyStart)
	require.True(t, ok)
	assert.Equal(t, schedule.Clock{Hour: 9}, start)
	assert.Equal(t, "2025-03", got.GetString(KeyMonth))
}
