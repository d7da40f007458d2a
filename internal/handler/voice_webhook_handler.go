package handler

import (
	"context"
	"net/http"
	"strconv"

	callsvc "github.com/garasindo/voice-crm-service/internal/services/call"
	"github.com/garasindo/voice-crm-service/internal/telephony"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CallLifecycle is the slice of the call service the voice webhooks drive.
type CallLifecycle interface {
	HandleGreeting(ctx context.Context, callSID string) *telephony.TurnResponse
	HandleTurn(ctx context.Context, callSID, spokenText string) *telephony.TurnResponse
	HandleStatusUpdate(ctx context.Context, callSID, status string, durationSeconds int) error
}

// VoiceWebhookHandler handles the telephony provider's webhook callbacks:
// the greeting leg, recognized speech turns, and call status updates. The
// provider posts application/x-www-form-urlencoded and expects TwiML back.
type VoiceWebhookHandler struct {
	lifecycle CallLifecycle
}

// NewVoiceWebhookHandler creates a new voice webhook handler.
func NewVoiceWebhookHandler(lifecycle CallLifecycle) *VoiceWebhookHandler {
	return &VoiceWebhookHandler{lifecycle: lifecycle}
}

// SetupVoiceWebhookRoutes registers the provider-facing webhook routes.
// These are deliberately outside the JWT-protected management API.
func (h *VoiceWebhookHandler) SetupVoiceWebhookRoutes(router *mux.Router) {
	router.HandleFunc(callsvc.GreetingWebhookPath, h.HandleGreetingWebhook).Methods("POST")
	router.HandleFunc(callsvc.TurnWebhookPath, h.HandleTurnWebhook).Methods("POST")
	router.HandleFunc(callsvc.StatusWebhookPath, h.HandleStatusWebhook).Methods("POST")

	logger.Base().Info("voice webhook routes registered")
}

// HandleGreetingWebhook handles the initial (and silence-retried) greeting
// leg.
// POST /api/voice/handle
func (h *VoiceWebhookHandler) HandleGreetingWebhook(w http.ResponseWriter, r *http.Request) {
	callSID, ok := h.parseForm(w, r, "greeting")
	if !ok {
		return
	}

	response := h.lifecycle.HandleGreeting(r.Context(), callSID)
	h.writeTwiML(w, response, callSID)
}

// HandleTurnWebhook handles one recognized speech turn.
// POST /api/voice/process
func (h *VoiceWebhookHandler) HandleTurnWebhook(w http.ResponseWriter, r *http.Request) {
	callSID, ok := h.parseForm(w, r, "turn")
	if !ok {
		return
	}
	spokenText := r.PostFormValue("SpeechResult")

	response := h.lifecycle.HandleTurn(r.Context(), callSID, spokenText)
	h.writeTwiML(w, response, callSID)
}

// HandleStatusWebhook handles call status updates.
// POST /api/voice/status
func (h *VoiceWebhookHandler) HandleStatusWebhook(w http.ResponseWriter, r *http.Request) {
	callSID, ok := h.parseForm(w, r, "status")
	if !ok {
		return
	}
	status := r.PostFormValue("CallStatus")
	duration, _ := strconv.Atoi(r.PostFormValue("CallDuration"))

	if err := h.lifecycle.HandleStatusUpdate(r.Context(), callSID, status, duration); err != nil {
		logger.Base().Error("status update failed",
			zap.String("call_sid", callSID), zap.Error(err))
		http.Error(w, "status update failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

// parseForm parses the webhook form and extracts the call SID.
func (h *VoiceWebhookHandler) parseForm(w http.ResponseWriter, r *http.Request, webhookType string) (string, bool) {
	if err := r.ParseForm(); err != nil {
		logger.Base().Error("failed to parse webhook form",
			zap.String("webhook_type", webhookType), zap.Error(err))
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return "", false
	}

	callSID := r.PostFormValue("CallSid")
	if callSID == "" {
		logger.Base().Error("webhook without CallSid", zap.String("webhook_type", webhookType))
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return "", false
	}
	return callSID, true
}

// writeTwiML renders a turn response as provider markup.
func (h *VoiceWebhookHandler) writeTwiML(w http.ResponseWriter, response *telephony.TurnResponse, callSID string) {
	markup, err := telephony.RenderTwiML(*response, callsvc.TurnWebhookPath, callsvc.GreetingWebhookPath)
	if err != nil {
		logger.Base().Error("failed to render TwiML",
			zap.String("call_sid", callSID), zap.Error(err))
		http.Error(w, "failed to render response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(markup))
}
