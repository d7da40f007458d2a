package repository

import (
	"testing"
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusUpdateColumnsValidTransition(t *testing.T) {
	record := &domain.CallRecord{CallSID: "CA100", Status: domain.CallStatusRinging}

	columns, ok := statusUpdateColumns(record, domain.CallStatusInProgress, 0)
	require.True(t, ok)
	assert.Equal(t, domain.CallStatusInProgress, columns["call_status"])
	assert.Equal(t, 0, columns["call_duration"])
	assert.NotContains(t, columns, "completed_at")
}

func TestStatusUpdateColumnsTerminalStampsCompletedAt(t *testing.T) {
	record := &domain.CallRecord{CallSID: "CA100", Status: domain.CallStatusInProgress}

	columns, ok := statusUpdateColumns(record, domain.CallStatusCompleted, 120)
	require.True(t, ok)
	assert.Equal(t, domain.CallStatusCompleted, columns["call_status"])
	assert.Equal(t, 120, columns["call_duration"])
	completedAt, stamped := columns["completed_at"].(time.Time)
	require.True(t, stamped)
	assert.WithinDuration(t, time.Now(), completedAt, time.Minute)
}

func TestStatusUpdateColumnsDuplicateRefreshesDurationOnly(t *testing.T) {
	now := time.Now()
	record := &domain.CallRecord{CallSID: "CA100", Status: domain.CallStatusCompleted, Duration: 90, CompletedAt: &now}

	columns, ok := statusUpdateColumns(record, domain.CallStatusCompleted, 95)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"call_duration": 95}, columns)
}

func TestStatusUpdateColumnsForbiddenTransition(t *testing.T) {
	record := &domain.CallRecord{CallSID: "CA100", Status: domain.CallStatusCompleted}

	columns, ok := statusUpdateColumns(record, domain.CallStatusRinging, 10)
	assert.False(t, ok)
	assert.Nil(t, columns)
}

// The column set is the whole contract: a status update must never carry
// record fields owned by the summary writer, whatever the transition.
func TestStatusUpdateColumnsNeverTouchSummaryFields(t *testing.T) {
	record := &domain.CallRecord{
		CallSID:             "CA100",
		Status:              domain.CallStatusInProgress,
		ConversationSummary: "Intent: booking",
		BookingConfirmed:    true,
		NeedsCallback:       true,
	}

	for _, next := range []domain.CallStatus{domain.CallStatusInProgress, domain.CallStatusCompleted} {
		columns, ok := statusUpdateColumns(record, next, 60)
		require.True(t, ok)
		assert.NotContains(t, columns, "conversation_summary")
		assert.NotContains(t, columns, "booking_confirmed")
		assert.NotContains(t, columns, "needs_callback")
	}
}
