package domain

import (
	"time"
)

// ServiceHistory is one completed workshop visit for a vehicle. Rows are
// append-only: once written they are never mutated.
type ServiceHistory struct {
	ID          uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	VehicleID   uint      `json:"vehicle_id" gorm:"column:vehicle_id;index"`
	NoInvoice   string    `json:"no_invoice" gorm:"column:no_invoice;uniqueIndex"`
	ServiceDate time.Time `json:"service_date" gorm:"column:service_date"`
	KM          int       `json:"km" gorm:"column:km"`
	RepairType  string    `json:"repair_type" gorm:"column:repair_type"`
	Labor       float64   `json:"labor" gorm:"column:labor"`
	Part        float64   `json:"part" gorm:"column:part"`
	Oli         float64   `json:"oli" gorm:"column:oli"`
	Total       float64   `json:"total" gorm:"column:total"`
	SAName      string    `json:"sa_name" gorm:"column:sa_name"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (ServiceHistory) TableName() string {
	return "service_history"
}

// CreateServiceHistoryRequest is the payload for recording a workshop visit.
type CreateServiceHistoryRequest struct {
	VehicleID   uint      `json:"vehicle_id"`
	NoInvoice   string    `json:"no_invoice"`
	ServiceDate time.Time `json:"service_date"`
	KM          int       `json:"km,omitempty"`
	RepairType  string    `json:"repair_type,omitempty"`
	Labor       float64   `json:"labor,omitempty"`
	Part        float64   `json:"part,omitempty"`
	Oli         float64   `json:"oli,omitempty"`
	Total       float64   `json:"total,omitempty"`
	SAName      string    `json:"sa_name,omitempty"`
}

// ScheduleStatus is the closed set of states a service schedule moves
// through. A schedule starts as scheduled and ends in exactly one of the
// terminal states.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
	ScheduleStatusNoAnswer  ScheduleStatus = "no_answer"
)

// Valid reports whether s is a known schedule status.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusCompleted, ScheduleStatusCancelled, ScheduleStatusNoAnswer:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s ScheduleStatus) Terminal() bool {
	return s.Valid() && s != ScheduleStatusScheduled
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Schedules only move scheduled -> terminal.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return s == ScheduleStatusScheduled && next.Terminal()
}

// ServiceSchedule is a booked (or proposed) workshop appointment for a
// vehicle. CallSID links a schedule back to the outbound call that created
// it and guarantees at most one schedule per call.
type ServiceSchedule struct {
	ID            uint           `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	VehicleID     uint           `json:"vehicle_id" gorm:"column:vehicle_id;index"`
	ScheduledDate time.Time      `json:"scheduled_date" gorm:"column:scheduled_date"`
	ScheduledTime string         `json:"scheduled_time" gorm:"column:scheduled_time"`
	ServiceType   string         `json:"service_type" gorm:"column:service_type"` // Regular, Reminder, Booking
	Status        ScheduleStatus `json:"status" gorm:"column:status;default:scheduled"`
	Notes         string         `json:"notes" gorm:"column:notes;type:text"`
	CallSID       *string        `json:"call_sid,omitempty" gorm:"column:call_sid;uniqueIndex"`
	CreatedAt     time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (ServiceSchedule) TableName() string {
	return "service_schedules"
}

// CreateServiceScheduleRequest is the payload for booking an appointment.
type CreateServiceScheduleRequest struct {
	VehicleID     uint      `json:"vehicle_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	ServiceType   string    `json:"service_type,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}
