package call

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garasindo/voice-crm-service/internal/callctx"
	"github.com/garasindo/voice-crm-service/internal/dialogue"
	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/internal/repository"
	"github.com/garasindo/voice-crm-service/internal/telephony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepos is an in-memory repository.RepositoryManager for controller
// tests. Only the methods the controller touches are fully modeled.
type fakeRepos struct {
	customers map[uint]*domain.Customer
	vehicles  map[uint][]*domain.Vehicle
	lastSvc   map[uint]*domain.ServiceHistory

	// mu covers the call records, which status and turn webhooks hit
	// concurrently.
	mu          sync.Mutex
	callRecords map[string]*domain.CallRecord
	schedules   map[string]*domain.ServiceSchedule
	nextID      uint
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		customers:   make(map[uint]*domain.Customer),
		vehicles:    make(map[uint][]*domain.Vehicle),
		lastSvc:     make(map[uint]*domain.ServiceHistory),
		callRecords: make(map[string]*domain.CallRecord),
		schedules:   make(map[string]*domain.ServiceSchedule),
		nextID:      1,
	}
}

func (f *fakeRepos) Customer() repository.CustomerRepository               { return (*fakeCustomerRepo)(f) }
func (f *fakeRepos) Vehicle() repository.VehicleRepository                 { return (*fakeVehicleRepo)(f) }
func (f *fakeRepos) ServiceHistory() repository.ServiceHistoryRepository   { return (*fakeHistoryRepo)(f) }
func (f *fakeRepos) ServiceSchedule() repository.ServiceScheduleRepository { return (*fakeScheduleRepo)(f) }
func (f *fakeRepos) CallRecord() repository.CallRecordRepository           { return (*fakeCallRepo)(f) }
func (f *fakeRepos) WithTx(ctx context.Context, fn func(context.Context, repository.RepositoryManager) error) error {
	return fn(ctx, f)
}
func (f *fakeRepos) Ping(context.Context) error { return nil }
func (f *fakeRepos) Close() error               { return nil }

type fakeCustomerRepo fakeRepos

func (f *fakeCustomerRepo) Create(context.Context, *domain.CreateCustomerRequest) (*domain.Customer, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCustomerRepo) GetByID(_ context.Context, id uint) (*domain.Customer, error) {
	return f.customers[id], nil
}
func (f *fakeCustomerRepo) GetBySingleID(context.Context, string) (*domain.Customer, error) {
	return nil, nil
}
func (f *fakeCustomerRepo) List(context.Context, int, int) ([]*domain.Customer, error) {
	return nil, nil
}
func (f *fakeCustomerRepo) Search(context.Context, string, int, int) ([]*domain.Customer, error) {
	return nil, nil
}

type fakeVehicleRepo fakeRepos

func (f *fakeVehicleRepo) Create(context.Context, *domain.CreateVehicleRequest) (*domain.Vehicle, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeVehicleRepo) GetByID(context.Context, uint) (*domain.Vehicle, error) { return nil, nil }
func (f *fakeVehicleRepo) GetByNoRangka(context.Context, string) (*domain.Vehicle, error) {
	return nil, nil
}
func (f *fakeVehicleRepo) ListByCustomer(_ context.Context, customerID uint) ([]*domain.Vehicle, error) {
	return f.vehicles[customerID], nil
}

type fakeHistoryRepo fakeRepos

func (f *fakeHistoryRepo) Create(context.Context, *domain.CreateServiceHistoryRequest) (*domain.ServiceHistory, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeHistoryRepo) ListByVehicle(context.Context, uint, int, int) ([]*domain.ServiceHistory, error) {
	return nil, nil
}
func (f *fakeHistoryRepo) GetLastService(_ context.Context, vehicleID uint) (*domain.ServiceHistory, error) {
	return f.lastSvc[vehicleID], nil
}

type fakeScheduleRepo fakeRepos

func (f *fakeScheduleRepo) Create(context.Context, *domain.CreateServiceScheduleRequest) (*domain.ServiceSchedule, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeScheduleRepo) CreateForCall(_ context.Context, req *domain.CreateServiceScheduleRequest, callSID string) (*domain.ServiceSchedule, bool, error) {
	if existing, ok := f.schedules[callSID]; ok {
		return existing, false, nil
	}
	schedule := &domain.ServiceSchedule{
		ID:            f.nextID,
		VehicleID:     req.VehicleID,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		ServiceType:   req.ServiceType,
		Notes:         req.Notes,
		Status:        domain.ScheduleStatusScheduled,
		CallSID:       &callSID,
	}
	f.nextID++
	f.schedules[callSID] = schedule
	return schedule, true, nil
}
func (f *fakeScheduleRepo) GetByID(context.Context, uint) (*domain.ServiceSchedule, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListByVehicle(context.Context, uint) ([]*domain.ServiceSchedule, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListPending(context.Context, int, int) ([]*domain.ServiceSchedule, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) UpdateStatus(context.Context, uint, domain.ScheduleStatus) (*domain.ServiceSchedule, error) {
	return nil, errors.New("not implemented")
}

type fakeCallRepo fakeRepos

func (f *fakeCallRepo) Create(_ context.Context, record *domain.CallRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = f.nextID
	f.nextID++
	if record.Status == "" {
		record.Status = domain.CallStatusInitiated
	}
	f.callRecords[record.CallSID] = record
	return nil
}
func (f *fakeCallRepo) GetByCallSID(_ context.Context, callSID string) (*domain.CallRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callRecords[callSID], nil
}
func (f *fakeCallRepo) ListRecent(context.Context, int, int) ([]*domain.CallRecord, error) {
	return nil, nil
}
func (f *fakeCallRepo) ListByCustomer(context.Context, uint, int, int) ([]*domain.CallRecord, error) {
	return nil, nil
}
func (f *fakeCallRepo) UpdateStatus(_ context.Context, callSID string, status domain.CallStatus, duration int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.callRecords[callSID]
	if !ok {
		return false, nil
	}
	if record.Status == status {
		record.Duration = duration
		return true, nil
	}
	if !record.Status.CanTransitionTo(status) {
		return false, nil
	}
	record.Status = status
	record.Duration = duration
	if status.Terminal() {
		now := time.Now()
		record.CompletedAt = &now
	}
	return true, nil
}
func (f *fakeCallRepo) UpdateSummary(_ context.Context, callSID, summary string, bookingConfirmed, needsCallback bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.callRecords[callSID]
	if !ok {
		return false, nil
	}
	record.ConversationSummary = summary
	record.BookingConfirmed = bookingConfirmed
	record.NeedsCallback = needsCallback
	return true, nil
}
func (f *fakeCallRepo) Statistics(context.Context) (*domain.CallStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.CallStatistics{}
	for _, record := range f.callRecords {
		stats.TotalCalls++
		if record.Status == domain.CallStatusCompleted {
			stats.CompletedCalls++
		}
		if record.BookingConfirmed {
			stats.ConfirmedBookings++
		}
	}
	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.ConfirmedBookings) / float64(stats.TotalCalls) * 100
	}
	return stats, nil
}

// fakeTelephony records placement requests and hands out sequential SIDs.
type fakeTelephony struct {
	placed  []telephony.PlaceCallRequest
	nextSID string
	err     error
}

func (f *fakeTelephony) PlaceCall(_ context.Context, req telephony.PlaceCallRequest) (*telephony.PlaceCallResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.placed = append(f.placed, req)
	sid := f.nextSID
	if sid == "" {
		sid = "CA0001"
	}
	return &telephony.PlaceCallResult{CallSID: sid, Status: "queued"}, nil
}

// fakeDialogue returns canned turns.
type fakeDialogue struct {
	greeting   string
	greetErr   error
	turnResult *dialogue.TurnResult
	turnErr    error
}

func (f *fakeDialogue) Greet(context.Context, dialogue.GreetParams) (string, error) {
	return f.greeting, f.greetErr
}
func (f *fakeDialogue) Respond(context.Context, dialogue.RespondParams) (*dialogue.TurnResult, error) {
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turnResult, nil
}

func newTestService(repos *fakeRepos, provider *fakeTelephony, engine dialogue.Engine) (*Service, callctx.Store) {
	contexts := callctx.NewMemoryStore()
	cfg := Config{
		FromNumber:    "+6221555000",
		PublicBaseURL: "https://crm.example.com",
	}
	return NewService(cfg, repos, contexts, provider, engine), contexts
}

func seedCustomer(repos *fakeRepos, phone string, withVehicle bool) *domain.Customer {
	customer := &domain.Customer{ID: 1, SingleID: "C-001", Name: "Budi Santoso", Phone: phone}
	repos.customers[customer.ID] = customer
	if withVehicle {
		repos.vehicles[customer.ID] = []*domain.Vehicle{
			{ID: 10, CustomerID: customer.ID, NoRangka: "MHK123", Model: "Avanza"},
			{ID: 11, CustomerID: customer.ID, NoRangka: "MHK456", Model: "Rush"},
		}
	}
	return customer
}

func TestInitiateCallSuccess(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	repos.lastSvc[10] = &domain.ServiceHistory{
		VehicleID:   10,
		ServiceDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	provider := &fakeTelephony{nextSID: "CA779"}
	svc, contexts := newTestService(repos, provider, &fakeDialogue{})

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)
	assert.Equal(t, "CA779", result.CallSID)

	// Exactly one placement, addressed to the customer.
	require.Len(t, provider.placed, 1)
	assert.Equal(t, "+628111222333", provider.placed[0].To)
	assert.Equal(t, "https://crm.example.com/api/voice/handle", provider.placed[0].GreetingURL)
	assert.Equal(t, "https://crm.example.com/api/voice/status", provider.placed[0].StatusCallbackURL)

	// One call record in initiated state.
	record := repos.callRecords["CA779"]
	require.NotNil(t, record)
	assert.Equal(t, domain.CallStatusInitiated, record.Status)
	assert.Equal(t, domain.CallPurposeReminder, record.Purpose)

	// Context seeded with the first-registered vehicle and formatted last
	// service date.
	callContext, ok, err := contexts.Get(context.Background(), "CA779")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(10), callContext.VehicleID)
	assert.Equal(t, "Avanza", callContext.VehicleModel)
	assert.Equal(t, "15 March 2026", callContext.LastServiceDate)
}

func TestInitiateCallNeverServicedVehicle(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	svc, contexts := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeBooking,
	})
	require.NoError(t, err)

	callContext, ok, _ := contexts.Get(context.Background(), result.CallSID)
	require.True(t, ok)
	assert.Equal(t, "belum pernah", callContext.LastServiceDate)
}

func TestInitiateCallPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(*fakeRepos)
		wantErr error
	}{
		{
			name:    "unknown customer",
			seed:    func(*fakeRepos) {},
			wantErr: domain.ErrCustomerNotFound,
		},
		{
			name: "no phone number",
			seed: func(r *fakeRepos) {
				seedCustomer(r, "", true)
			},
			wantErr: domain.ErrNoPhoneNumber,
		},
		{
			name: "no vehicle",
			seed: func(r *fakeRepos) {
				seedCustomer(r, "+628111222333", false)
			},
			wantErr: domain.ErrNoVehicle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newFakeRepos()
			tt.seed(repos)
			provider := &fakeTelephony{}
			svc, _ := newTestService(repos, provider, &fakeDialogue{})

			_, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
				CustomerID: 1,
				Purpose:    domain.CallPurposeReminder,
			})
			require.ErrorIs(t, err, tt.wantErr)

			// Preconditions fail before any call is placed or persisted.
			assert.Empty(t, provider.placed)
			assert.Empty(t, repos.callRecords)
		})
	}
}

func TestInitiateCallPlacementFailureLeavesNoState(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	provider := &fakeTelephony{err: errors.New("provider unreachable")}
	svc, contexts := newTestService(repos, provider, &fakeDialogue{})

	_, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.ErrorIs(t, err, domain.ErrCallPlacementFailed)

	assert.Empty(t, repos.callRecords)
	memStore := contexts.(*callctx.MemoryStore)
	assert.Zero(t, memStore.Len())
}

func TestHandleGreeting(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{greeting: "Selamat pagi Bapak Budi."}
	svc, _ := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	response := svc.HandleGreeting(context.Background(), result.CallSID)
	assert.Equal(t, "Selamat pagi Bapak Budi.", response.Utterance)
	assert.True(t, response.ListenForReply)
}

func TestHandleGreetingEngineFailureFallsBack(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{greetErr: errors.New("model unavailable")}
	svc, _ := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	response := svc.HandleGreeting(context.Background(), result.CallSID)
	assert.Equal(t, dialogue.FallbackGreeting("Budi Santoso", "Avanza"), response.Utterance)
	assert.True(t, response.ListenForReply)
}

func TestHandleGreetingMissingContext(t *testing.T) {
	svc, _ := newTestService(newFakeRepos(), &fakeTelephony{}, &fakeDialogue{})

	response := svc.HandleGreeting(context.Background(), "CA-unknown")
	assert.Equal(t, missingContextGreeting, response.Utterance)
	assert.False(t, response.ListenForReply)
}

func TestHandleTurnMissingContext(t *testing.T) {
	repos := newFakeRepos()
	svc, _ := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	response := svc.HandleTurn(context.Background(), "CA-unknown", "halo")
	assert.Equal(t, missingContextTurn, response.Utterance)
	assert.False(t, response.ListenForReply)
	// Nothing is persisted for an unknown call.
	assert.Empty(t, repos.callRecords)
	assert.Empty(t, repos.schedules)
}

func TestHandleTurnPersistsSummaryAndTranscript(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{turnResult: &dialogue.TurnResult{
		Message:       "Baik, kapan Bapak bisa datang?",
		Intent:        "interested",
		NeedsFollowup: true,
	}}
	svc, contexts := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	response := svc.HandleTurn(context.Background(), result.CallSID, "Saya mau servis")
	assert.Equal(t, "Baik, kapan Bapak bisa datang?", response.Utterance)
	assert.True(t, response.ListenForReply)

	record := repos.callRecords[result.CallSID]
	assert.Contains(t, record.ConversationSummary, "Intent: interested")
	assert.Contains(t, record.ConversationSummary, "Saya mau servis")
	assert.False(t, record.BookingConfirmed)

	callContext, ok, _ := contexts.Get(context.Background(), result.CallSID)
	require.True(t, ok)
	require.Len(t, callContext.Transcript, 2)
	assert.Equal(t, domain.TranscriptRoleUser, callContext.Transcript[0].Role)
	assert.Equal(t, domain.TranscriptRoleAssistant, callContext.Transcript[1].Role)
}

func TestHandleTurnDialogueFailureApologizesAndKeepsListening(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{turnErr: errors.New("timeout")}
	svc, _ := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	response := svc.HandleTurn(context.Background(), result.CallSID, "halo?")
	assert.Equal(t, dialogueFailureApology, response.Utterance)
	assert.True(t, response.ListenForReply)

	record := repos.callRecords[result.CallSID]
	assert.Contains(t, record.ConversationSummary, "Intent: error")
}

func TestHandleTurnBookingCreatesScheduleOnce(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{turnResult: &dialogue.TurnResult{
		Message:          "Baik, sudah saya jadwalkan.",
		Intent:           "confirmed",
		BookingConfirmed: true,
		ScheduledDate:    "2026-09-10",
		ScheduledTime:    "10:00",
	}}
	svc, _ := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeBooking,
	})
	require.NoError(t, err)

	svc.HandleTurn(context.Background(), result.CallSID, "Ya, hari Kamis")
	// A retried or repeated confirmation must not double-book.
	svc.HandleTurn(context.Background(), result.CallSID, "Ya, betul hari Kamis")

	require.Len(t, repos.schedules, 1)
	schedule := repos.schedules[result.CallSID]
	assert.Equal(t, uint(10), schedule.VehicleID)
	assert.Equal(t, "10:00", schedule.ScheduledTime)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), schedule.ScheduledDate)
	assert.Equal(t, domain.ScheduleStatusScheduled, schedule.Status)

	record := repos.callRecords[result.CallSID]
	assert.True(t, record.BookingConfirmed)
}

func TestHandleTurnUnparseableScheduleDateSkipsBooking(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &fakeDialogue{turnResult: &dialogue.TurnResult{
		Message:          "Baik.",
		Intent:           "confirmed",
		BookingConfirmed: true,
		ScheduledDate:    "besok pagi",
	}}
	svc, _ := newTestService(repos, &fakeTelephony{}, engine)

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeBooking,
	})
	require.NoError(t, err)

	svc.HandleTurn(context.Background(), result.CallSID, "Ya")
	assert.Empty(t, repos.schedules)
}

func TestHandleStatusUpdateTerminalEvictsContext(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	svc, contexts := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandleStatusUpdate(context.Background(), result.CallSID, "completed", 95))

	record := repos.callRecords[result.CallSID]
	assert.Equal(t, domain.CallStatusCompleted, record.Status)
	assert.Equal(t, 95, record.Duration)
	require.NotNil(t, record.CompletedAt)

	_, ok, _ := contexts.Get(context.Background(), result.CallSID)
	assert.False(t, ok, "terminal status must evict the context")

	// A turn after eviction takes the missing-context path.
	response := svc.HandleTurn(context.Background(), result.CallSID, "halo?")
	assert.Equal(t, missingContextTurn, response.Utterance)
	assert.False(t, response.ListenForReply)
}

// terminalMidTurnEngine fires a terminal status update from inside Respond,
// while the turn still holds the per-call lock, and waits long enough for
// the update to park on that lock before letting the turn proceed.
type terminalMidTurnEngine struct {
	svc       *Service
	callSID   string
	statusErr chan error
}

func (e *terminalMidTurnEngine) Greet(context.Context, dialogue.GreetParams) (string, error) {
	return "Halo", nil
}

func (e *terminalMidTurnEngine) Respond(context.Context, dialogue.RespondParams) (*dialogue.TurnResult, error) {
	go func() {
		e.statusErr <- e.svc.HandleStatusUpdate(context.Background(), e.callSID, "completed", 30)
	}()
	time.Sleep(20 * time.Millisecond)
	return &dialogue.TurnResult{Message: "Baik, sampai jumpa.", Intent: "agree"}, nil
}

func TestHandleStatusUpdateDuringTurnStillEvictsContext(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	engine := &terminalMidTurnEngine{statusErr: make(chan error, 1)}
	svc, contexts := newTestService(repos, &fakeTelephony{}, engine)
	engine.svc = svc

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)
	engine.callSID = result.CallSID

	svc.HandleTurn(context.Background(), result.CallSID, "iya selesai")
	require.NoError(t, <-engine.statusErr)

	// Whichever side lands first, the eviction must win: the turn's
	// transcript write-back must never bring the context back.
	_, ok, _ := contexts.Get(context.Background(), result.CallSID)
	assert.False(t, ok, "context must stay evicted after a terminal update mid-turn")

	record := repos.callRecords[result.CallSID]
	assert.Equal(t, domain.CallStatusCompleted, record.Status)
	require.NotNil(t, record.CompletedAt)
}

func TestHandleStatusUpdateIgnoresUnknownStatusAndSID(t *testing.T) {
	repos := newFakeRepos()
	svc, _ := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	// Unrecognized status strings are dropped without error.
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), "CA1", "exploded", 0))
	// Updates for SIDs we never placed are dropped without error.
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), "CA-unknown", "completed", 10))
}

func TestHandleStatusUpdateOutOfOrderIsNoOp(t *testing.T) {
	repos := newFakeRepos()
	seedCustomer(repos, "+628111222333", true)
	svc, _ := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	result, err := svc.InitiateCall(context.Background(), InitiateCallRequest{
		CustomerID: 1,
		Purpose:    domain.CallPurposeReminder,
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandleStatusUpdate(context.Background(), result.CallSID, "completed", 80))
	// A stale "ringing" delivered after completion must not regress the record.
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), result.CallSID, "ringing", 0))

	record := repos.callRecords[result.CallSID]
	assert.Equal(t, domain.CallStatusCompleted, record.Status)
	assert.Equal(t, 80, record.Duration)
}

func TestStatistics(t *testing.T) {
	repos := newFakeRepos()
	for i, spec := range []struct {
		status    domain.CallStatus
		confirmed bool
	}{
		{domain.CallStatusCompleted, true},
		{domain.CallStatusCompleted, true},
		{domain.CallStatusCompleted, true},
		{domain.CallStatusCompleted, false},
		{domain.CallStatusNoAnswer, false},
		{domain.CallStatusFailed, false},
		{domain.CallStatusBusy, false},
		{domain.CallStatusInProgress, false},
		{domain.CallStatusRinging, false},
		{domain.CallStatusInitiated, false},
	} {
		sid := string(rune('A' + i))
		repos.callRecords[sid] = &domain.CallRecord{
			CallSID:          sid,
			Status:           spec.status,
			BookingConfirmed: spec.confirmed,
		}
	}
	svc, _ := newTestService(repos, &fakeTelephony{}, &fakeDialogue{})

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalCalls)
	assert.Equal(t, int64(4), stats.CompletedCalls)
	assert.Equal(t, int64(3), stats.ConfirmedBookings)
	assert.InDelta(t, 30.0, stats.SuccessRate, 0.001)
}
