package domain

import "errors"

// Sentinel errors surfaced by the call lifecycle controller. Handlers map
// them to HTTP status codes; callers test them with errors.Is.
var (
	// ErrCustomerNotFound: the requested customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoPhoneNumber: the customer exists but has no phone number on file.
	ErrNoPhoneNumber = errors.New("customer has no phone number")

	// ErrNoVehicle: the customer exists but owns no registered vehicle.
	ErrNoVehicle = errors.New("customer has no vehicles")

	// ErrCallPlacementFailed: the telephony provider rejected the call.
	// Nothing is persisted when this is returned.
	ErrCallPlacementFailed = errors.New("failed to place call")

	// ErrMissingContext: a webhook arrived for a call whose context was
	// evicted or never created. The call ends with an apology, not a crash.
	ErrMissingContext = errors.New("call context not found")

	// ErrScheduleNotFound: the requested service schedule does not exist.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrVehicleNotFound: the requested vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrInvalidTransition: a status change that the transition table
	// forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)
