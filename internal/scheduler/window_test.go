package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestNormalizeFillsDefaults(t *testing.T) {
	t.Parallel()

	window := Normalize(Window{ScheduledAt: ptr(now.Add(time.Hour))}, 48*time.Hour)

	assert.Equal(t, DefaultTimezone, window.Timezone)
	require.NotNil(t, window.ExpiresAt)
	assert.True(t, window.ExpiresAt.Equal(now.Add(49*time.Hour)))
}

func TestNormalizeKeepsExplicitExpiry(t *testing.T) {
	t.Parallel()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	start := now.Add(time.Hour).In(tokyo)
	window := Normalize(Window{ScheduledAt: &start, ExpiresAt: ptr(now.Add(2 * time.Hour)), Timezone: " Asia/Tokyo "}, 48*time.Hour)

	assert.Equal(t, "Asia/Tokyo", window.Timezone)
	assert.Equal(t, time.UTC, window.ScheduledAt.Location())
	assert.True(t, window.ExpiresAt.Equal(now.Add(2*time.Hour)))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		window Window
		want   []Violation
	}{
		{
			name:   "valid",
			window: Window{ScheduledAt: ptr(now.Add(time.Hour)), ExpiresAt: ptr(now.Add(2 * time.Hour)), Timezone: "Europe/Berlin"},
		},
		{
			name:   "missing start",
			window: Window{Timezone: "UTC"},
			want:   []Violation{{Field: "scheduled_at", Message: MessageScheduledAtRequired}},
		},
		{
			name:   "start in past",
			window: Window{ScheduledAt: ptr(now.Add(-time.Minute)), Timezone: "UTC"},
			want:   []Violation{{Field: "scheduled_at", Message: MessageScheduledAtInPast}},
		},
		{
			name:   "start equals now",
			window: Window{ScheduledAt: ptr(now), Timezone: "UTC"},
			want:   []Violation{{Field: "scheduled_at", Message: MessageScheduledAtInPast}},
		},
		{
			name:   "expiry equals start",
			window: Window{ScheduledAt: ptr(now.Add(time.Hour)), ExpiresAt: ptr(now.Add(time.Hour)), Timezone: "UTC"},
			want:   []Violation{{Field: "expires_at", Message: MessageExpiresBeforeStart}},
		},
		{
			name:   "bad timezone",
			window: Window{ScheduledAt: ptr(now.Add(time.Hour)), Timezone: "Mars/Olympus"},
			want:   []Violation{{Field: "timezone", Message: MessageTimezoneInvalid}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Validate(tc.window, now))
		})
	}
}

func TestIsExpiredBoundary(t *testing.T) {
	t.Parallel()

	deadline := now
	assert.False(t, IsExpired(&deadline, now.Add(-time.Millisecond)))
	assert.True(t, IsExpired(&deadline, now))
	assert.True(t, IsExpired(&deadline, now.Add(time.Millisecond)))
	assert.False(t, IsExpired(nil, now))
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	deadline := now.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, Remaining(&deadline, now))
	assert.Zero(t, Remaining(&deadline, now.Add(2*time.Minute)))
}

func TestWindowLocal(t *testing.T) {
	t.Parallel()

	window := Window{ScheduledAt: ptr(now), Timezone: "Asia/Tokyo"}
	local, ok := window.Local()
	require.True(t, ok)
	assert.Equal(t, 18, local.Hour())

	_, ok = Window{}.Local()
	assert.False(t, ok)
}

func TestValidateDeadline(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ValidateDeadline(now.Add(time.Second), now))
	assert.Len(t, ValidateDeadline(now, now), 1)
}
