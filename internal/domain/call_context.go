package domain

// Transcript roles. The provider's speech recognition produces user turns;
// the dialogue engine produces assistant turns.
const (
	TranscriptRoleUser      = "user"
	TranscriptRoleAssistant = "assistant"
)

// TranscriptTurn is one utterance in a call's conversation.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallContext is the ephemeral conversational state of one active call,
// keyed by the provider call SID. It is a denormalized snapshot taken at
// call initiation so webhook handlers never need to re-query master data
// mid-call. It lives in the context store only: any outcome that matters
// (booking, summary) must be durably persisted before the context is
// discarded.
type CallContext struct {
	CallSID         string           `json:"call_sid"`
	CustomerID      uint             `json:"customer_id"`
	CustomerName    string           `json:"customer_name"`
	VehicleID       uint             `json:"vehicle_id"`
	VehicleModel    string           `json:"vehicle_model"`
	Purpose         CallPurpose      `json:"call_type"`
	LastServiceDate string           `json:"last_service_date"`
	Transcript      []TranscriptTurn `json:"transcript"`
}

// AppendTurn adds one utterance to the transcript.
func (c *CallContext) AppendTurn(role, content string) {
	c.Transcript = append(c.Transcript, TranscriptTurn{Role: role, Content: content})
}
