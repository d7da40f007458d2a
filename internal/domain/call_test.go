package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallStatus(t *testing.T) {
	for _, valid := range []string{
		"initiated", "ringing", "in-progress", "completed", "failed", "busy", "no-answer",
	} {
		status, err := ParseCallStatus(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, CallStatus(valid), status)
	}

	for _, invalid := range []string{"", "queued", "answered", "COMPLETED", "no_answer"} {
		_, err := ParseCallStatus(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestCallStatusTerminal(t *testing.T) {
	assert.False(t, CallStatusInitiated.Terminal())
	assert.False(t, CallStatusRinging.Terminal())
	assert.False(t, CallStatusInProgress.Terminal())

	assert.True(t, CallStatusCompleted.Terminal())
	assert.True(t, CallStatusFailed.Terminal())
	assert.True(t, CallStatusBusy.Terminal())
	assert.True(t, CallStatusNoAnswer.Terminal())
}

func TestCallStatusTransitions(t *testing.T) {
	tests := []struct {
		from    CallStatus
		to      CallStatus
		allowed bool
	}{
		// Forward progress through the live states.
		{CallStatusInitiated, CallStatusRinging, true},
		{CallStatusInitiated, CallStatusInProgress, true},
		{CallStatusRinging, CallStatusInProgress, true},

		// Any live state may end the call.
		{CallStatusInitiated, CallStatusFailed, true},
		{CallStatusRinging, CallStatusNoAnswer, true},
		{CallStatusRinging, CallStatusBusy, true},
		{CallStatusInProgress, CallStatusCompleted, true},

		// No moving backwards.
		{CallStatusRinging, CallStatusInitiated, false},
		{CallStatusInProgress, CallStatusRinging, false},
		{CallStatusInProgress, CallStatusInitiated, false},

		// No self-loops.
		{CallStatusRinging, CallStatusRinging, false},

		// Terminal states never change, even to another terminal state.
		{CallStatusCompleted, CallStatusFailed, false},
		{CallStatusNoAnswer, CallStatusCompleted, false},
		{CallStatusFailed, CallStatusRinging, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestCallPurposeValid(t *testing.T) {
	assert.True(t, CallPurposeReminder.Valid())
	assert.True(t, CallPurposeBooking.Valid())
	assert.True(t, CallPurposeFollowUp.Valid())
	assert.False(t, CallPurpose("").Valid())
	assert.False(t, CallPurpose("sales").Valid())
}

func TestScheduleStatusTransitions(t *testing.T) {
	// Scheduled may move to any terminal state.
	assert.True(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusCompleted))
	assert.True(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusCancelled))
	assert.True(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusNoAnswer))

	// Terminal states are final.
	assert.False(t, ScheduleStatusCompleted.CanTransitionTo(ScheduleStatusCancelled))
	assert.False(t, ScheduleStatusCancelled.CanTransitionTo(ScheduleStatusScheduled))

	// No self-loop, no unknown states.
	assert.False(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusScheduled))
	assert.False(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatus("postponed")))
}

func TestCallContextAppendTurn(t *testing.T) {
	callContext := &CallContext{CallSID: "CA1"}
	callContext.AppendTurn(TranscriptRoleUser, "halo")
	callContext.AppendTurn(TranscriptRoleAssistant, "selamat pagi")

	require.Len(t, callContext.Transcript, 2)
	assert.Equal(t, TranscriptTurn{Role: "user", Content: "halo"}, callContext.Transcript[0])
	assert.Equal(t, TranscriptTurn{Role: "assistant", Content: "selamat pagi"}, callContext.Transcript[1])
}
