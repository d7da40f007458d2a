// Package dialogue produces conversational replies and structured intent
// data for outbound service calls. The language model is a black box behind
// the Engine interface; the controller only consumes the structured result.
package dialogue

import (
	"context"

	"github.com/garasindo/voice-crm-service/internal/domain"
)

// GreetParams parameterize the opening utterance of a call.
type GreetParams struct {
	CustomerName    string
	VehicleModel    string
	Purpose         domain.CallPurpose
	LastServiceDate string
}

// RespondParams carry the full transcript and call metadata for one turn.
type RespondParams struct {
	Transcript   []domain.TranscriptTurn
	CustomerName string
	VehicleModel string
}

// TurnResult is the structured outcome of one dialogue turn.
type TurnResult struct {
	Message          string `json:"message"`
	Intent           string `json:"intent"` // agree, decline, question, schedule, unknown
	BookingConfirmed bool   `json:"booking_confirmed"`
	ScheduledDate    string `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime    string `json:"scheduled_time,omitempty"` // HH:MM
	NeedsFollowup    bool   `json:"needs_followup"`
}

// Engine is the dialogue capability consumed by the call lifecycle
// controller.
type Engine interface {
	// Greet returns the opening utterance for a call.
	Greet(ctx context.Context, params GreetParams) (string, error)

	// Respond returns the reply and structured intent for the latest
	// customer utterance in the transcript.
	Respond(ctx context.Context, params RespondParams) (*TurnResult, error)
}
