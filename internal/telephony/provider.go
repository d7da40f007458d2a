// Package telephony is the adapter boundary to the voice call provider. The
// provider places outbound call legs and drives turn-taking through webhook
// callbacks; everything below the markup boundary (speech recognition,
// text-to-speech, the media path) belongs to the provider.
package telephony

import "context"

// PlaceCallRequest describes one outbound call leg to place.
type PlaceCallRequest struct {
	To   string
	From string

	// GreetingURL is invoked by the provider when the callee answers.
	GreetingURL string

	// StatusCallbackURL receives call-state transitions.
	StatusCallbackURL string

	// StatusEvents selects which transitions the provider reports.
	StatusEvents []string
}

// PlaceCallResult is the provider's acknowledgment of a placed call.
type PlaceCallResult struct {
	CallSID string
	Status  string
}

// Provider is the telephony capability consumed by the call lifecycle
// controller.
type Provider interface {
	PlaceCall(ctx context.Context, req PlaceCallRequest) (*PlaceCallResult, error)
}
