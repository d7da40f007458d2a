package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTurnResultJSON(t *testing.T) {
	raw := `{"message":"Baik, Kamis jam 10 ya.","intent":"confirmed","booking_confirmed":true,"scheduled_date":"2026-09-10","scheduled_time":"10:00","needs_followup":false}`

	result := parseTurnResult(raw)
	require.NotNil(t, result)
	assert.Equal(t, "Baik, Kamis jam 10 ya.", result.Message)
	assert.Equal(t, "confirmed", result.Intent)
	assert.True(t, result.BookingConfirmed)
	assert.Equal(t, "2026-09-10", result.ScheduledDate)
	assert.Equal(t, "10:00", result.ScheduledTime)
	assert.False(t, result.NeedsFollowup)
}

func TestParseTurnResultPlainTextDegrades(t *testing.T) {
	result := parseTurnResult("Baik, kapan Bapak bisa datang?")
	assert.Equal(t, "Baik, kapan Bapak bisa datang?", result.Message)
	assert.Equal(t, "unknown", result.Intent)
	assert.True(t, result.NeedsFollowup)
	assert.False(t, result.BookingConfirmed)
}

func TestFallbackGreeting(t *testing.T) {
	greeting := FallbackGreeting("Budi Santoso", "Avanza")
	assert.Contains(t, greeting, "Budi Santoso")
	assert.Contains(t, greeting, "Avanza")
}
