package google

import (
	"testing"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRow(t *testing.T) {
	booking := &models.Booking{
		ID:      12,
		Date:    schedule.Date{Year: 2025, Month: time.March, Day: 5},
		Start:   schedule.Clock{Hour: 9},
		End:     schedule.Clock{Hour: 11},
		Owner:   "alice",
		Details: "planning",
	}

	row := BookingRow(booking, "booked")
	require.Len(t, row, 8)

	assert.Equal(t, int64(12), row[0])
	assert.Equal(t, "05 Mar 2025", row[1])
	assert.Equal(t, "0900", row[2])
	assert.Equal(t, "1100", row[3])
	assert.Equal(t, "alice", row[4])
	assert.Equal(t, "planning", row[5])
	assert.Equal(t, "booked", row[6])

	stamp, ok := row[7].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
}

func TestBookingRow_DeletedStatus(t *testing.T) {
	row := BookingRow(&models.Booking{ID: 3}, "deleted")
	assert.Equal(t, "deleted", row[6])
}
