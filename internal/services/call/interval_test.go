package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextServiceDate(t *testing.T) {
	lastService := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := NextServiceDate(lastService)
	assert.Equal(t, lastService.Add(180*24*time.Hour), next)
}

func TestNextServiceDateNeverServiced(t *testing.T) {
	next := NextServiceDate(time.Time{})
	assert.WithinDuration(t, time.Now(), next, time.Minute)
}

func TestShouldRemindService(t *testing.T) {
	// Serviced long ago: overdue, remind.
	assert.True(t, ShouldRemindService(time.Now().Add(-200*24*time.Hour)))

	// Due in exactly the lead window: remind.
	assert.True(t, ShouldRemindService(time.Now().Add(-(180-7)*24*time.Hour)))

	// Serviced recently: not due yet.
	assert.False(t, ShouldRemindService(time.Now().Add(-30*24*time.Hour)))

	// Never serviced: always due.
	assert.True(t, ShouldRemindService(time.Time{}))
}
