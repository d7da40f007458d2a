package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"gorm.io/gorm"
)

// GormCustomerRepository handles database operations for customers.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new customer repository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer.
func (r *GormCustomerRepository) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	now := time.Now()
	customer := &domain.Customer{
		SingleID:  req.SingleID,
		NIK:       req.NIK,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Kelurahan: req.Kelurahan,
		Kecamatan: req.Kecamatan,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// GetByID retrieves a customer by internal id. Returns nil when absent.
func (r *GormCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// GetBySingleID retrieves a customer by external single-id. Returns nil when
// absent.
func (r *GormCustomerRepository) GetBySingleID(ctx context.Context, singleID string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.WithContext(ctx).Where("single_id = ?", singleID).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer by single_id: %w", err)
	}
	return &customer, nil
}

// List retrieves a page of customers.
func (r *GormCustomerRepository) List(ctx context.Context, offset, limit int) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Search finds customers whose name, phone or single-id contains the query.
func (r *GormCustomerRepository) Search(ctx context.Context, query string, offset, limit int) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("name LIKE ? OR phone LIKE ? OR single_id LIKE ?", pattern, pattern, pattern).
		Offset(offset).Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

// GormVehicleRepository handles database operations for vehicles.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new vehicle repository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// Create creates a new vehicle.
func (r *GormVehicleRepository) Create(ctx context.Context, req *domain.CreateVehicleRequest) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{
		CustomerID: req.CustomerID,
		NoRangka:   req.NoRangka,
		NoPolisi:   req.NoPolisi,
		Model:      req.Model,
		TypeMobil:  req.TypeMobil,
		TglBeli:    req.TglBeli,
		CaraBayar:  req.CaraBayar,
		Grouping:   req.Grouping,
		CreatedAt:  time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return vehicle, nil
}

// GetByID retrieves a vehicle by id. Returns nil when absent.
func (r *GormVehicleRepository) GetByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &vehicle, nil
}

// GetByNoRangka retrieves a vehicle by chassis number. Returns nil when
// absent.
func (r *GormVehicleRepository) GetByNoRangka(ctx context.Context, noRangka string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := r.db.WithContext(ctx).Where("no_rangka = ?", noRangka).First(&vehicle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle by no_rangka: %w", err)
	}
	return &vehicle, nil
}

// ListByCustomer retrieves a customer's vehicles ordered by id ascending.
func (r *GormVehicleRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}
