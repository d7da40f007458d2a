package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garasindo/voice-crm-service/internal/callctx"
	"github.com/garasindo/voice-crm-service/internal/dialogue"
	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/internal/repository"
	"github.com/garasindo/voice-crm-service/internal/telephony"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"go.uber.org/zap"
)

// Service is the call lifecycle controller: it places outbound calls and
// drives the per-call state machine across the provider's webhook
// callbacks. Each call SID is an independent unit of work; turn handling
// for one call is serialized, distinct calls never contend.
type Service struct {
	cfg       Config
	repos     repository.RepositoryManager
	contexts  callctx.Store
	telephony telephony.Provider
	dialogue  dialogue.Engine

	// callLocks serializes read-modify-write turn handling per call SID.
	// Terminal-status eviction holds the same lock before dropping the
	// entry, so a turn's write-back and the eviction never interleave.
	mu        sync.Mutex
	callLocks map[string]*sync.Mutex
}

// NewService creates a call lifecycle controller.
func NewService(cfg Config, repos repository.RepositoryManager, contexts callctx.Store, provider telephony.Provider, engine dialogue.Engine) *Service {
	if cfg.DialogueTimeout <= 0 {
		cfg.DialogueTimeout = DefaultDialogueTimeout
	}
	return &Service{
		cfg:       cfg,
		repos:     repos,
		contexts:  contexts,
		telephony: provider,
		dialogue:  engine,
		callLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockCall(callSID string) func() {
	s.mu.Lock()
	lock, ok := s.callLocks[callSID]
	if !ok {
		lock = &sync.Mutex{}
		s.callLocks[callSID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Service) dropCallLock(callSID string) {
	s.mu.Lock()
	delete(s.callLocks, callSID)
	s.mu.Unlock()
}

// InitiateCall looks up the customer, selects the subject vehicle, places
// the call through the telephony provider and, only on success, persists
// the call record and seeds the conversation context.
func (s *Service) InitiateCall(ctx context.Context, req InitiateCallRequest) (*InitiateCallResult, error) {
	customer, err := s.repos.Customer().GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if customer.Phone == "" {
		return nil, domain.ErrNoPhoneNumber
	}

	vehicles, err := s.repos.Vehicle().ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, domain.ErrNoVehicle
	}
	// First-registered vehicle; the repository orders by id ascending.
	vehicle := vehicles[0]

	lastServiceDate := neverServiced
	lastService, err := s.repos.ServiceHistory().GetLastService(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}
	if lastService != nil {
		lastServiceDate = lastService.ServiceDate.Format(lastServiceDateLayout)
	}

	placed, err := s.telephony.PlaceCall(ctx, telephony.PlaceCallRequest{
		To:                customer.Phone,
		From:              s.cfg.FromNumber,
		GreetingURL:       s.cfg.PublicBaseURL + GreetingWebhookPath,
		StatusCallbackURL: s.cfg.PublicBaseURL + StatusWebhookPath,
		StatusEvents:      statusEvents,
	})
	if err != nil {
		// Nothing has been persisted at this point, and nothing will be.
		return nil, fmt.Errorf("%w: %v", domain.ErrCallPlacementFailed, err)
	}

	record := &domain.CallRecord{
		CustomerID:  customer.ID,
		ScheduleID:  req.ScheduleID,
		CallSID:     placed.CallSID,
		PhoneNumber: customer.Phone,
		Purpose:     req.Purpose,
		Status:      domain.CallStatusInitiated,
	}
	if err := s.repos.CallRecord().Create(ctx, record); err != nil {
		return nil, err
	}

	callContext := &domain.CallContext{
		CallSID:         placed.CallSID,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		VehicleID:       vehicle.ID,
		VehicleModel:    vehicle.Model,
		Purpose:         req.Purpose,
		LastServiceDate: lastServiceDate,
	}
	if err := s.contexts.Put(ctx, placed.CallSID, callContext); err != nil {
		return nil, err
	}

	logger.Base().Info("call initiated",
		zap.String("call_sid", placed.CallSID),
		zap.Uint("customer_id", customer.ID),
		zap.Uint("vehicle_id", vehicle.ID),
		zap.String("call_type", string(req.Purpose)))

	return &InitiateCallResult{CallSID: placed.CallSID, CallRecordID: record.ID}, nil
}

// HandleGreeting produces the opening turn of a call, invoked when the
// callee answers (and again whenever the listen window closes on silence).
// A missing context ends the call with a scripted apology; the call cannot
// be recovered without it.
func (s *Service) HandleGreeting(ctx context.Context, callSID string) *telephony.TurnResponse {
	unlock := s.lockCall(callSID)
	defer unlock()

	callContext, ok, err := s.contexts.Get(ctx, callSID)
	if err != nil {
		logger.Base().Error("context store read failed", zap.String("call_sid", callSID), zap.Error(err))
	}
	if !ok || callContext == nil {
		logger.Base().Warn("greeting for unknown call", zap.String("call_sid", callSID))
		return &telephony.TurnResponse{Utterance: missingContextGreeting, ListenForReply: false}
	}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DialogueTimeout)
	defer cancel()

	utterance, err := s.dialogue.Greet(dctx, dialogue.GreetParams{
		CustomerName:    callContext.CustomerName,
		VehicleModel:    callContext.VehicleModel,
		Purpose:         callContext.Purpose,
		LastServiceDate: callContext.LastServiceDate,
	})
	if err != nil || utterance == "" {
		utterance = dialogue.FallbackGreeting(callContext.CustomerName, callContext.VehicleModel)
	}

	return &telephony.TurnResponse{Utterance: utterance, ListenForReply: true}
}

// HandleTurn processes one recognized customer utterance: it extends the
// transcript, asks the dialogue engine for the reply and intent, persists
// the running summary, and books a schedule when the customer confirmed.
// Summary persistence happens every turn, not only at call end, so the
// record survives a dropped call.
func (s *Service) HandleTurn(ctx context.Context, callSID, spokenText string) *telephony.TurnResponse {
	unlock := s.lockCall(callSID)
	defer unlock()

	callContext, ok, err := s.contexts.Get(ctx, callSID)
	if err != nil {
		logger.Base().Error("context store read failed", zap.String("call_sid", callSID), zap.Error(err))
	}
	if !ok || callContext == nil {
		logger.Base().Warn("turn for unknown call", zap.String("call_sid", callSID))
		return &telephony.TurnResponse{Utterance: missingContextTurn, ListenForReply: false}
	}

	callContext.AppendTurn(domain.TranscriptRoleUser, spokenText)

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DialogueTimeout)
	defer cancel()

	result, err := s.dialogue.Respond(dctx, dialogue.RespondParams{
		Transcript:   callContext.Transcript,
		CustomerName: callContext.CustomerName,
		VehicleModel: callContext.VehicleModel,
	})
	if err != nil {
		// Absorb the failure into a scripted apology and keep listening so
		// the conversation can continue rather than abort.
		logger.Base().Warn("dialogue turn failed", zap.String("call_sid", callSID), zap.Error(err))
		result = &dialogue.TurnResult{
			Message:       dialogueFailureApology,
			Intent:        "error",
			NeedsFollowup: true,
		}
	}

	callContext.AppendTurn(domain.TranscriptRoleAssistant, result.Message)
	s.writeBackContext(ctx, callSID, callContext)

	summary := fmt.Sprintf("Intent: %s\nCustomer said: %s\nBot replied: %s",
		result.Intent, spokenText, result.Message)
	if _, err := s.repos.CallRecord().UpdateSummary(ctx, callSID, summary, result.BookingConfirmed, result.NeedsFollowup); err != nil {
		logger.Base().Error("failed to persist call summary", zap.String("call_sid", callSID), zap.Error(err))
	}

	if result.BookingConfirmed && result.ScheduledDate != "" {
		s.createScheduleFromTurn(ctx, callSID, callContext, result)
	}

	return &telephony.TurnResponse{Utterance: result.Message, ListenForReply: result.NeedsFollowup}
}

// writeBackContext stores the extended transcript unless the context is
// already gone. In-process eviction is serialized by the per-call lock;
// the re-read guards against TTL expiry and evictions performed by
// another instance sharing the Redis store.
func (s *Service) writeBackContext(ctx context.Context, callSID string, callContext *domain.CallContext) {
	_, stillThere, err := s.contexts.Get(ctx, callSID)
	if err != nil {
		logger.Base().Error("context store re-read failed", zap.String("call_sid", callSID), zap.Error(err))
		return
	}
	if !stillThere {
		logger.Base().Info("context evicted mid-turn, discarding write", zap.String("call_sid", callSID))
		return
	}
	if err := s.contexts.Put(ctx, callSID, callContext); err != nil {
		logger.Base().Error("failed to store call context", zap.String("call_sid", callSID), zap.Error(err))
	}
}

func (s *Service) createScheduleFromTurn(ctx context.Context, callSID string, callContext *domain.CallContext, result *dialogue.TurnResult) {
	scheduledDate, err := time.Parse("2006-01-02", result.ScheduledDate)
	if err != nil {
		logger.Base().Warn("unparseable schedule date from dialogue",
			zap.String("call_sid", callSID), zap.String("scheduled_date", result.ScheduledDate))
		return
	}

	req := &domain.CreateServiceScheduleRequest{
		VehicleID:     callContext.VehicleID,
		ScheduledDate: scheduledDate,
		ScheduledTime: result.ScheduledTime,
		ServiceType:   "booking",
		Notes:         fmt.Sprintf("Booked via voice call %s", callSID),
	}
	schedule, created, err := s.repos.ServiceSchedule().CreateForCall(ctx, req, callSID)
	if err != nil {
		logger.Base().Error("failed to create schedule from call", zap.String("call_sid", callSID), zap.Error(err))
		return
	}
	if created {
		logger.Base().Info("schedule booked from call",
			zap.String("call_sid", callSID), zap.Uint("schedule_id", schedule.ID))
	} else {
		logger.Base().Info("schedule already booked for call, skipping",
			zap.String("call_sid", callSID), zap.Uint("schedule_id", schedule.ID))
	}
}

// HandleStatusUpdate applies a provider status callback. Terminal statuses
// stamp the completion time and evict the conversation context. The update
// may arrive before, after, or interleaved with turn webhooks; unknown call
// SIDs are ignored. Eviction takes the per-call lock: an in-flight turn
// finishes its write-back first, then the eviction lands, so the context is
// always absent once a terminal update has been processed.
func (s *Service) HandleStatusUpdate(ctx context.Context, callSID, status string, durationSeconds int) error {
	parsed, err := domain.ParseCallStatus(status)
	if err != nil {
		logger.Base().Warn("unknown status from provider, ignoring",
			zap.String("call_sid", callSID), zap.String("status", status))
		return nil
	}

	if _, err := s.repos.CallRecord().UpdateStatus(ctx, callSID, parsed, durationSeconds); err != nil {
		return err
	}

	if parsed.Terminal() {
		unlock := s.lockCall(callSID)
		if err := s.contexts.Remove(ctx, callSID); err != nil {
			logger.Base().Error("failed to evict call context", zap.String("call_sid", callSID), zap.Error(err))
		}
		s.dropCallLock(callSID)
		unlock()
		logger.Base().Info("call ended",
			zap.String("call_sid", callSID),
			zap.String("status", status),
			zap.Int("duration_seconds", durationSeconds))
	}
	return nil
}

// Statistics returns the aggregate call outcome view.
func (s *Service) Statistics(ctx context.Context) (*domain.CallStatistics, error) {
	return s.repos.CallRecord().Statistics(ctx)
}
