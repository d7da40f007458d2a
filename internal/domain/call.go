package domain

import (
	"fmt"
	"time"
)

// CallPurpose tags why an outbound call was placed.
type CallPurpose string

const (
	CallPurposeReminder CallPurpose = "reminder"
	CallPurposeBooking  CallPurpose = "booking"
	CallPurposeFollowUp CallPurpose = "follow_up"
)

// Valid reports whether p is a known call purpose.
func (p CallPurpose) Valid() bool {
	switch p {
	case CallPurposeReminder, CallPurposeBooking, CallPurposeFollowUp:
		return true
	}
	return false
}

// CallStatus is the closed set of states the telephony provider reports for
// one call leg. Transitions are validated against an explicit table instead
// of being re-derived by string comparison at each call site.
type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusNoAnswer   CallStatus = "no-answer"
)

// callStatusRank orders the non-terminal states; a call never moves
// backwards through them.
var callStatusRank = map[CallStatus]int{
	CallStatusInitiated:  0,
	CallStatusRinging:    1,
	CallStatusInProgress: 2,
}

// ParseCallStatus validates a provider status string.
func ParseCallStatus(s string) (CallStatus, error) {
	status := CallStatus(s)
	switch status {
	case CallStatusInitiated, CallStatusRinging, CallStatusInProgress,
		CallStatusCompleted, CallStatusFailed, CallStatusBusy, CallStatusNoAnswer:
		return status, nil
	}
	return "", fmt.Errorf("unknown call status %q", s)
}

// Terminal reports whether no further turns occur after s.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusBusy, CallStatusNoAnswer:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal: any state
// may jump to a terminal state, non-terminal states only move forward, and
// terminal states never change.
func (s CallStatus) CanTransitionTo(next CallStatus) bool {
	if s.Terminal() {
		return false
	}
	if next.Terminal() {
		return true
	}
	from, okFrom := callStatusRank[s]
	to, okTo := callStatusRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to > from
}

// CallRecord is the durable record of one outbound call leg. CallSID is the
// opaque identifier assigned by the telephony provider.
type CallRecord struct {
	ID                  uint        `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID          uint        `json:"customer_id" gorm:"column:customer_id;index"`
	ScheduleID          *uint       `json:"schedule_id,omitempty" gorm:"column:schedule_id"`
	CallSID             string      `json:"call_sid" gorm:"column:call_sid;uniqueIndex"`
	PhoneNumber         string      `json:"phone_number" gorm:"column:phone_number"`
	Purpose             CallPurpose `json:"call_type" gorm:"column:call_type"`
	Status              CallStatus  `json:"call_status" gorm:"column:call_status"`
	Duration            int         `json:"call_duration" gorm:"column:call_duration"`
	ConversationSummary string      `json:"conversation_summary" gorm:"column:conversation_summary;type:text"`
	BookingConfirmed    bool        `json:"booking_confirmed" gorm:"column:booking_confirmed"`
	NeedsCallback       bool        `json:"needs_callback" gorm:"column:needs_callback"`
	CreatedAt           time.Time   `json:"created_at" gorm:"column:created_at"`
	CompletedAt         *time.Time  `json:"completed_at,omitempty" gorm:"column:completed_at"`
}

func (CallRecord) TableName() string {
	return "call_history"
}

// CallStatistics is the aggregate view over all call records.
type CallStatistics struct {
	TotalCalls        int64   `json:"total_calls"`
	CompletedCalls    int64   `json:"completed_calls"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	SuccessRate       float64 `json:"success_rate"`
}
