package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("0900")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9}, c)

	c, err = ParseClock("1730")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 17, Minute: 30}, c)
}

func TestParseClock_Invalid(t *testing.T) {
	for _, raw := range []string{"", "9:00", "900", "2460", "abcd"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestClock_StringRoundTrip(t *testing.T) {
	c := Clock{Hour: 9, Minute: 5}
	parsed, err := ParseClock(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
	assert.Equal(t, "0905", c.String())
}

// The HHMM storage form must order lexicographically the same way the
// clocks order; the database overlap query depends on it.
func TestClock_StringOrderMatchesClockOrder(t *testing.T) {
	pairs := [][2]Clock{
		{{Hour: 9}, {Hour: 13}},
		{{Hour: 9, Minute: 30}, {Hour: 10}},
		{{Hour: 17, Minute: 59}, {Hour: 18}},
	}
	for _, p := range pairs {
		assert.True(t, p[0].Before(p[1]))
		assert.Less(t, p[0].String(), p[1].String())
	}
}

func TestClock_AddHoursClamps(t *testing.T) {
	assert.Equal(t, Clock{Hour: 10}, Clock{Hour: 9}.AddHours(1))
	assert.Equal(t, Clock{Hour: 23, Minute: 59}, Clock{Hour: 23}.AddHours(1))
}

func TestInterval_Overlaps(t *testing.T) {
	base := Interval{Start: Clock{Hour: 10}, End: Clock{Hour: 12}}

	assert.True(t, base.Overlaps(Interval{Start: Clock{Hour: 11}, End: Clock{Hour: 13}}))
	assert.True(t, base.Overlaps(Interval{Start: Clock{Hour: 9}, End: Clock{Hour: 11}}))
	assert.True(t, base.Overlaps(Interval{Start: Clock{Hour: 10, Minute: 30}, End: Clock{Hour: 11}}))

	// Boundary-adjacent intervals do not overlap.
	assert.False(t, base.Overlaps(Interval{Start: Clock{Hour: 12}, End: Clock{Hour: 13}}))
	assert.False(t, base.Overlaps(Interval{Start: Clock{Hour: 8}, End: Clock{Hour: 10}}))
}

func TestInterval_ContainsExcludesBoundaries(t *testing.T) {
	i := Interval{Start: Clock{Hour: 10}, End: Clock{Hour: 12}}

	assert.True(t, i.Contains(Clock{Hour: 11}))
	assert.False(t, i.Contains(Clock{Hour: 10}))
	assert.False(t, i.Contains(Clock{Hour: 12}))
}
