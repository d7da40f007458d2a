package repository

import (
	"context"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer operations.
type CustomerRepository interface {
	Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error)
	GetByID(ctx context.Context, id uint) (*domain.Customer, error)
	GetBySingleID(ctx context.Context, singleID string) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Customer, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*domain.Customer, error)
}

// VehicleRepository defines the interface for vehicle operations.
type VehicleRepository interface {
	Create(ctx context.Context, req *domain.CreateVehicleRequest) (*domain.Vehicle, error)
	GetByID(ctx context.Context, id uint) (*domain.Vehicle, error)
	GetByNoRangka(ctx context.Context, noRangka string) (*domain.Vehicle, error)

	// ListByCustomer returns the customer's vehicles ordered by internal id
	// ascending, so "the first vehicle" is deterministic.
	ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Vehicle, error)
}

// ServiceHistoryRepository defines the interface for service history
// operations. History is append-only.
type ServiceHistoryRepository interface {
	Create(ctx context.Context, req *domain.CreateServiceHistoryRequest) (*domain.ServiceHistory, error)
	ListByVehicle(ctx context.Context, vehicleID uint, offset, limit int) ([]*domain.ServiceHistory, error)

	// GetLastService returns the most recent service by service date, or
	// nil when the vehicle has never been serviced.
	GetLastService(ctx context.Context, vehicleID uint) (*domain.ServiceHistory, error)
}

// ServiceScheduleRepository defines the interface for service schedule
// operations.
type ServiceScheduleRepository interface {
	Create(ctx context.Context, req *domain.CreateServiceScheduleRequest) (*domain.ServiceSchedule, error)

	// CreateForCall creates a schedule keyed by the originating call SID.
	// At most one schedule exists per call: a second invocation for the
	// same SID returns the existing row with created=false.
	CreateForCall(ctx context.Context, req *domain.CreateServiceScheduleRequest, callSID string) (schedule *domain.ServiceSchedule, created bool, err error)

	GetByID(ctx context.Context, id uint) (*domain.ServiceSchedule, error)
	ListByVehicle(ctx context.Context, vehicleID uint) ([]*domain.ServiceSchedule, error)
	ListPending(ctx context.Context, offset, limit int) ([]*domain.ServiceSchedule, error)
	UpdateStatus(ctx context.Context, id uint, status domain.ScheduleStatus) (*domain.ServiceSchedule, error)
}

// CallRecordRepository defines the interface for call record operations.
type CallRecordRepository interface {
	Create(ctx context.Context, record *domain.CallRecord) error
	GetByCallSID(ctx context.Context, callSID string) (*domain.CallRecord, error)
	ListRecent(ctx context.Context, offset, limit int) ([]*domain.CallRecord, error)
	ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*domain.CallRecord, error)

	// UpdateStatus applies a provider status update. A terminal status
	// stamps CompletedAt. A SID with no record, or a transition the status
	// table forbids, is skipped (updated=false, nil error): the provider
	// owns webhook delivery ordering, not us.
	UpdateStatus(ctx context.Context, callSID string, status domain.CallStatus, duration int) (updated bool, err error)

	// UpdateSummary persists the running conversation summary and outcome
	// flags. Called every turn so the record survives a dropped call.
	UpdateSummary(ctx context.Context, callSID string, summary string, bookingConfirmed, needsCallback bool) (updated bool, err error)

	Statistics(ctx context.Context) (*domain.CallStatistics, error)
}

// RepositoryManager combines all repositories.
type RepositoryManager interface {
	Customer() CustomerRepository
	Vehicle() VehicleRepository
	ServiceHistory() ServiceHistoryRepository
	ServiceSchedule() ServiceScheduleRepository
	CallRecord() CallRecordRepository

	// Transaction support
	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM.
type GormRepositoryManager struct {
	db                  *gorm.DB
	customerRepo        *GormCustomerRepository
	vehicleRepo         *GormVehicleRepository
	serviceHistoryRepo  *GormServiceHistoryRepository
	serviceScheduleRepo *GormServiceScheduleRepository
	callRecordRepo      *GormCallRecordRepository
}

// NewGormRepositoryManager creates a new GORM repository manager.
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:                  db,
		customerRepo:        NewGormCustomerRepository(db),
		vehicleRepo:         NewGormVehicleRepository(db),
		serviceHistoryRepo:  NewGormServiceHistoryRepository(db),
		serviceScheduleRepo: NewGormServiceScheduleRepository(db),
		callRecordRepo:      NewGormCallRecordRepository(db),
	}
}

// Customer returns the customer repository.
func (m *GormRepositoryManager) Customer() CustomerRepository {
	return m.customerRepo
}

// Vehicle returns the vehicle repository.
func (m *GormRepositoryManager) Vehicle() VehicleRepository {
	return m.vehicleRepo
}

// ServiceHistory returns the service history repository.
func (m *GormRepositoryManager) ServiceHistory() ServiceHistoryRepository {
	return m.serviceHistoryRepo
}

// ServiceSchedule returns the service schedule repository.
func (m *GormRepositoryManager) ServiceSchedule() ServiceScheduleRepository {
	return m.serviceScheduleRepo
}

// CallRecord returns the call record repository.
func (m *GormRepositoryManager) CallRecord() CallRecordRepository {
	return m.callRecordRepo
}

// WithTx executes a function within a database transaction.
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection.
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
