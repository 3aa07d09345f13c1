package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutes(t *testing.T) {
	cases := []struct {
		clock string
		want  int
		ok    bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"9:00", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := Minutes(tc.clock)
		if !tc.ok {
			assert.Error(t, err, "clock %q", tc.clock)
			continue
		}
		require.NoError(t, err, "clock %q", tc.clock)
		assert.Equal(t, tc.want, got, "clock %q", tc.clock)
	}
}

func TestGenerate(t *testing.T) {
	step := 30 * time.Minute

	cases := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"one hour window", "09:00", "10:00", []string{"09:00", "09:30"}},
		{"empty window", "09:00", "09:00", nil},
		{"inverted window", "10:00", "09:00", nil},
		{"offset start", "09:15", "10:00", []string{"09:15", "09:45"}},
		{"full morning", "08:00", "10:30", []string{"08:00", "08:30", "09:00", "09:30", "10:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Generate(tc.start, tc.end, step))
		})
	}
}

func TestGenerateOtherGranularity(t *testing.T) {
	got := Generate("09:00", "10:00", 15*time.Minute)
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45"}, got)

	assert.Nil(t, Generate("09:00", "10:00", 0))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		a1, a2, b1, b2 string
		want           bool
	}{
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"partial", "09:00", "11:00", "10:00", "12:00", true},
		{"adjacent", "09:00", "10:00", "10:00", "11:00", false},
		{"disjoint", "09:00", "10:00", "11:00", "12:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a1, tc.a2, tc.b1, tc.b2))
			// overlap is symmetric
			assert.Equal(t, tc.want, Overlaps(tc.b1, tc.b2, tc.a1, tc.a2))
		})
	}
}

func TestCombine(t *testing.T) {
	got, err := Combine("2025-07-05", "15:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 5, 15, 0, 0, 0, time.UTC), got)

	_, err = Combine("2025-13-05", "15:00")
	assert.Error(t, err)

	_, err = Combine("2025-07-05", "25:00")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 7, 5, 23, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), Today(now))
}
