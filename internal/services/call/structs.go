package call

import (
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
)

// Webhook paths registered with the telephony provider at call placement.
const (
	GreetingWebhookPath = "/api/voice/handle"
	TurnWebhookPath     = "/api/voice/process"
	StatusWebhookPath   = "/api/voice/status"
)

// statusEvents are the call-state transitions the provider reports to the
// status webhook.
var statusEvents = []string{"initiated", "ringing", "answered", "completed"}

// Scripted fallback utterances. Mid-call failures never reach the customer
// as anything other than these in-character lines.
const (
	// missingContextGreeting ends a call whose context was never created or
	// was already evicted when the greeting webhook fired.
	missingContextGreeting = "Maaf, terjadi kesalahan sistem. Silakan hubungi kami kembali."

	// missingContextTurn ends a call whose context disappeared mid
	// conversation.
	missingContextTurn = "Maaf, terjadi kesalahan. Terima kasih."

	// dialogueFailureApology keeps the conversation going when the dialogue
	// engine fails or times out on a turn.
	dialogueFailureApology = "Maaf, saya mengalami kendala. Apakah Bapak/Ibu bisa mengulangi?"
)

// neverServiced is the last-service-date sentinel for vehicles with no
// service history.
const neverServiced = "belum pernah"

// lastServiceDateLayout renders service dates the way the greeting prompt
// expects them.
const lastServiceDateLayout = "02 January 2006"

// DefaultDialogueTimeout bounds each dialogue engine round-trip; timeout is
// treated identically to failure.
const DefaultDialogueTimeout = 15 * time.Second

// Config holds the controller's wiring to the outside world.
type Config struct {
	// FromNumber is the workshop's outbound caller id.
	FromNumber string

	// PublicBaseURL is the externally reachable host the provider calls
	// back on, e.g. "https://crm.example.com".
	PublicBaseURL string

	// DialogueTimeout bounds dialogue engine calls. Zero means
	// DefaultDialogueTimeout.
	DialogueTimeout time.Duration
}

// InitiateCallRequest asks for an outbound call to a customer.
type InitiateCallRequest struct {
	CustomerID uint               `json:"customer_id"`
	Purpose    domain.CallPurpose `json:"call_type"`
	ScheduleID *uint              `json:"schedule_id,omitempty"`
}

// InitiateCallResult reports a successfully placed call.
type InitiateCallResult struct {
	CallSID      string `json:"call_sid"`
	CallRecordID uint   `json:"call_history_id"`
}
