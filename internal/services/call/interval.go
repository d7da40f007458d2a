package call

import "time"

const (
	// ServiceIntervalMonths is the routine service cadence.
	ServiceIntervalMonths = 6

	// ReminderLeadDays is how far ahead of the next due date a reminder
	// call should go out.
	ReminderLeadDays = 7
)

// NextServiceDate computes when a vehicle is next due, counting months as
// 30-day blocks from the last service. A zero last-service time means the
// vehicle is due now.
func NextServiceDate(lastService time.Time) time.Time {
	if lastService.IsZero() {
		return time.Now()
	}
	return lastService.Add(ServiceIntervalMonths * 30 * 24 * time.Hour)
}

// ShouldRemindService reports whether a reminder call is due for a vehicle
// given its last service date. Never-serviced vehicles are always due.
func ShouldRemindService(lastService time.Time) bool {
	if lastService.IsZero() {
		return true
	}
	reminderDate := NextServiceDate(lastService).Add(-ReminderLeadDays * 24 * time.Hour)
	return !time.Now().Before(reminderDate)
}
