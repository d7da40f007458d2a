package domain

import (
	"time"
)

// Customer represents a service-center customer imported from the dealer's
// master data.
type Customer struct {
	ID        uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	SingleID  string    `json:"single_id" gorm:"column:single_id;uniqueIndex"`
	NIK       string    `json:"nik" gorm:"column:nik;index"`
	Name      string    `json:"name" gorm:"column:name;index"`
	Phone     string    `json:"phone" gorm:"column:phone"`
	Address   string    `json:"address" gorm:"column:address;type:text"`
	Kelurahan string    `json:"kelurahan" gorm:"column:kelurahan"`
	Kecamatan string    `json:"kecamatan" gorm:"column:kecamatan"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	Vehicles []Vehicle    `json:"vehicles,omitempty" gorm:"foreignKey:CustomerID"`
	Calls    []CallRecord `json:"calls,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "customers"
}

// CreateCustomerRequest is the payload for registering a new customer.
type CreateCustomerRequest struct {
	SingleID  string `json:"single_id"`
	NIK       string `json:"nik,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Kelurahan string `json:"kelurahan,omitempty"`
	Kecamatan string `json:"kecamatan,omitempty"`
}

// Vehicle represents a vehicle owned by exactly one customer. NoRangka is
// the chassis number and is unique across the fleet.
type Vehicle struct {
	ID         uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID uint       `json:"customer_id" gorm:"column:customer_id;index"`
	NoRangka   string     `json:"no_rangka" gorm:"column:no_rangka;uniqueIndex"`
	NoPolisi   string     `json:"no_polisi" gorm:"column:no_polisi;index"`
	Model      string     `json:"model" gorm:"column:model"`
	TypeMobil  string     `json:"type_mobil" gorm:"column:type_mobil"`
	TglBeli    *time.Time `json:"tgl_beli,omitempty" gorm:"column:tgl_beli"`
	CaraBayar  string     `json:"cara_bayar" gorm:"column:cara_bayar"`
	Grouping   string     `json:"grouping" gorm:"column:grouping"` // Regular, GBSB, T-CARE, ...
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`

	ServiceHistory   []ServiceHistory  `json:"service_history,omitempty" gorm:"foreignKey:VehicleID"`
	ServiceSchedules []ServiceSchedule `json:"service_schedules,omitempty" gorm:"foreignKey:VehicleID"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// CreateVehicleRequest is the payload for registering a new vehicle.
type CreateVehicleRequest struct {
	CustomerID uint       `json:"customer_id"`
	NoRangka   string     `json:"no_rangka"`
	NoPolisi   string     `json:"no_polisi,omitempty"`
	Model      string     `json:"model"`
	TypeMobil  string     `json:"type_mobil,omitempty"`
	TglBeli    *time.Time `json:"tgl_beli,omitempty"`
	CaraBayar  string     `json:"cara_bayar,omitempty"`
	Grouping   string     `json:"grouping,omitempty"`
}
