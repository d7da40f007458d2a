package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormCallRecordRepository handles database operations for call records.
type GormCallRecordRepository struct {
	db *gorm.DB
}

// NewGormCallRecordRepository creates a new call record repository.
func NewGormCallRecordRepository(db *gorm.DB) *GormCallRecordRepository {
	return &GormCallRecordRepository{db: db}
}

// Create persists a new call record.
func (r *GormCallRecordRepository) Create(ctx context.Context, record *domain.CallRecord) error {
	if record.CallSID == "" {
		return fmt.Errorf("call SID cannot be empty")
	}
	if record.Status == "" {
		record.Status = domain.CallStatusInitiated
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create call record: %w", err)
	}
	return nil
}

// GetByCallSID retrieves a call record by provider call SID. Returns nil
// when absent.
func (r *GormCallRecordRepository) GetByCallSID(ctx context.Context, callSID string) (*domain.CallRecord, error) {
	var record domain.CallRecord
	if err := r.db.WithContext(ctx).Where("call_sid = ?", callSID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call record: %w", err)
	}
	return &record, nil
}

// ListRecent retrieves recent calls, newest first.
func (r *GormCallRecordRepository) ListRecent(ctx context.Context, offset, limit int) ([]*domain.CallRecord, error) {
	var records []*domain.CallRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	return records, nil
}

// ListByCustomer retrieves a customer's calls, newest first.
func (r *GormCallRecordRepository) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*domain.CallRecord, error) {
	var records []*domain.CallRecord
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list customer calls: %w", err)
	}
	return records, nil
}

// UpdateStatus applies a provider status update. Unknown SIDs and forbidden
// transitions are skipped without error: status webhooks can arrive before
// the record exists, duplicated, or out of order, and the provider owns
// those delivery guarantees. Only the status columns are written, so a
// summary update landing between the read and the write is never lost,
// and the status predicate in the WHERE clause turns the write into a
// compare-and-swap against racing status webhooks.
func (r *GormCallRecordRepository) UpdateStatus(ctx context.Context, callSID string, status domain.CallStatus, duration int) (bool, error) {
	record, err := r.GetByCallSID(ctx, callSID)
	if err != nil {
		return false, err
	}
	if record == nil {
		logger.Base().Warn("status update for unknown call, ignoring",
			zap.String("call_sid", callSID), zap.String("status", string(status)))
		return false, nil
	}

	columns, ok := statusUpdateColumns(record, status, duration)
	if !ok {
		logger.Base().Warn("out-of-order status update, ignoring",
			zap.String("call_sid", callSID),
			zap.String("current", string(record.Status)),
			zap.String("incoming", string(status)))
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Where("call_sid = ? AND call_status = ?", callSID, record.Status).
		Updates(columns)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update call status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// statusUpdateColumns decides what a status update may touch given the
// record's current state. Duplicate deliveries refresh the duration only;
// valid transitions write status, duration and, on first terminal status,
// the completion timestamp. Forbidden transitions yield ok=false.
func statusUpdateColumns(record *domain.CallRecord, status domain.CallStatus, duration int) (map[string]interface{}, bool) {
	if record.Status == status {
		return map[string]interface{}{"call_duration": duration}, true
	}
	if !record.Status.CanTransitionTo(status) {
		return nil, false
	}
	columns := map[string]interface{}{
		"call_status":   status,
		"call_duration": duration,
	}
	if status.Terminal() && record.CompletedAt == nil {
		columns["completed_at"] = time.Now()
	}
	return columns, true
}

// UpdateSummary persists the running conversation summary and outcome flags.
func (r *GormCallRecordRepository) UpdateSummary(ctx context.Context, callSID string, summary string, bookingConfirmed, needsCallback bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Where("call_sid = ?", callSID).
		Updates(map[string]interface{}{
			"conversation_summary": summary,
			"booking_confirmed":    bookingConfirmed,
			"needs_callback":       needsCallback,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update call summary: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Statistics aggregates call outcomes. Success rate is confirmed bookings
// over total calls as a percentage, zero when there are no calls.
func (r *GormCallRecordRepository) Statistics(ctx context.Context) (*domain.CallStatistics, error) {
	var stats domain.CallStatistics

	if err := r.db.WithContext(ctx).Model(&domain.CallRecord{}).Count(&stats.TotalCalls).Error; err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.CallRecord{}).
		Where("call_status = ?", domain.CallStatusCompleted).
		Count(&stats.CompletedCalls).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed calls: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.CallRecord{}).
		Where("booking_confirmed = ?", true).
		Count(&stats.ConfirmedBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.ConfirmedBookings) / float64(stats.TotalCalls) * 100
	}
	return &stats, nil
}
