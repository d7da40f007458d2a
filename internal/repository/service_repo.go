package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"gorm.io/gorm"
)

// GormServiceHistoryRepository handles database operations for service
// history.
type GormServiceHistoryRepository struct {
	db *gorm.DB
}

// NewGormServiceHistoryRepository creates a new service history repository.
func NewGormServiceHistoryRepository(db *gorm.DB) *GormServiceHistoryRepository {
	return &GormServiceHistoryRepository{db: db}
}

// Create records a completed workshop visit.
func (r *GormServiceHistoryRepository) Create(ctx context.Context, req *domain.CreateServiceHistoryRequest) (*domain.ServiceHistory, error) {
	history := &domain.ServiceHistory{
		VehicleID:   req.VehicleID,
		NoInvoice:   req.NoInvoice,
		ServiceDate: req.ServiceDate,
		KM:          req.KM,
		RepairType:  req.RepairType,
		Labor:       req.Labor,
		Part:        req.Part,
		Oli:         req.Oli,
		Total:       req.Total,
		SAName:      req.SAName,
		CreatedAt:   time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(history).Error; err != nil {
		return nil, fmt.Errorf("failed to create service history: %w", err)
	}
	return history, nil
}

// ListByVehicle retrieves a vehicle's service history, most recent first.
func (r *GormServiceHistoryRepository) ListByVehicle(ctx context.Context, vehicleID uint, offset, limit int) ([]*domain.ServiceHistory, error) {
	var history []*domain.ServiceHistory
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("service_date DESC").
		Offset(offset).Limit(limit).
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to list service history: %w", err)
	}
	return history, nil
}

// GetLastService returns the most recent service by service date, or nil
// when the vehicle has never been serviced.
func (r *GormServiceHistoryRepository) GetLastService(ctx context.Context, vehicleID uint) (*domain.ServiceHistory, error) {
	var history domain.ServiceHistory
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("service_date DESC").
		First(&history).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last service: %w", err)
	}
	return &history, nil
}

// GormServiceScheduleRepository handles database operations for service
// schedules.
type GormServiceScheduleRepository struct {
	db *gorm.DB
}

// NewGormServiceScheduleRepository creates a new service schedule repository.
func NewGormServiceScheduleRepository(db *gorm.DB) *GormServiceScheduleRepository {
	return &GormServiceScheduleRepository{db: db}
}

func (r *GormServiceScheduleRepository) buildSchedule(req *domain.CreateServiceScheduleRequest) *domain.ServiceSchedule {
	now := time.Now()
	scheduledTime := req.ScheduledTime
	if scheduledTime == "" {
		scheduledTime = "09:00"
	}
	return &domain.ServiceSchedule{
		VehicleID:     req.VehicleID,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: scheduledTime,
		ServiceType:   req.ServiceType,
		Status:        domain.ScheduleStatusScheduled,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Create creates a new schedule with status scheduled.
func (r *GormServiceScheduleRepository) Create(ctx context.Context, req *domain.CreateServiceScheduleRequest) (*domain.ServiceSchedule, error) {
	schedule := r.buildSchedule(req)
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create service schedule: %w", err)
	}
	return schedule, nil
}

// CreateForCall creates a schedule keyed by the originating call SID. The
// call_sid column carries a unique index, so even racing duplicates cannot
// produce two schedules for one call; the existing row wins.
func (r *GormServiceScheduleRepository) CreateForCall(ctx context.Context, req *domain.CreateServiceScheduleRequest, callSID string) (*domain.ServiceSchedule, bool, error) {
	if callSID == "" {
		return nil, false, fmt.Errorf("call SID cannot be empty")
	}

	var existing domain.ServiceSchedule
	err := r.db.WithContext(ctx).Where("call_sid = ?", callSID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, fmt.Errorf("failed to look up schedule by call SID: %w", err)
	}

	schedule := r.buildSchedule(req)
	schedule.CallSID = &callSID
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		// A duplicate-key failure means a concurrent webhook won the race.
		var winner domain.ServiceSchedule
		if lookupErr := r.db.WithContext(ctx).Where("call_sid = ?", callSID).First(&winner).Error; lookupErr == nil {
			return &winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to create schedule for call: %w", err)
	}
	return schedule, true, nil
}

// GetByID retrieves a schedule by id. Returns nil when absent.
func (r *GormServiceScheduleRepository) GetByID(ctx context.Context, id uint) (*domain.ServiceSchedule, error) {
	var schedule domain.ServiceSchedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

// ListByVehicle retrieves a vehicle's schedules, most recent first.
func (r *GormServiceScheduleRepository) ListByVehicle(ctx context.Context, vehicleID uint) ([]*domain.ServiceSchedule, error) {
	var schedules []*domain.ServiceSchedule
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("scheduled_date DESC").
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// ListPending retrieves schedules still in the scheduled state, earliest
// first.
func (r *GormServiceScheduleRepository) ListPending(ctx context.Context, offset, limit int) ([]*domain.ServiceSchedule, error) {
	var schedules []*domain.ServiceSchedule
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.ScheduleStatusScheduled).
		Order("scheduled_date ASC").
		Offset(offset).Limit(limit).
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending schedules: %w", err)
	}
	return schedules, nil
}

// UpdateStatus moves a schedule to a new status. Only forward transitions
// (scheduled to a terminal state) are accepted.
func (r *GormServiceScheduleRepository) UpdateStatus(ctx context.Context, id uint, status domain.ScheduleStatus) (*domain.ServiceSchedule, error) {
	schedule, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, domain.ErrScheduleNotFound
	}
	if !schedule.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, schedule.Status, status)
	}

	schedule.Status = status
	schedule.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to update schedule status: %w", err)
	}
	return schedule, nil
}
