package entity

import (
	"time"

	"gorm.io/gorm"
)

// ServiceType 服务类型
const (
	ServiceTypeInstallation = "INSTALLATION"
	ServiceTypeRepair       = "REPAIR"
	ServiceTypeMaintenance  = "MAINTENANCE"
)

// BookingStatus 预约单状态
const (
	BookingStatusPending    = "PENDING"
	BookingStatusInProgress = "IN_PROGRESS"
	BookingStatusCompleted  = "COMPLETED"
	BookingStatusCanceled   = "CANCELED"
)

// Booking 上门服务预约单
type Booking struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	BookingCode    string         `json:"booking_code" gorm:"size:50;not null;uniqueIndex"`
	CustomerID     string         `json:"customer_id" gorm:"size:36;not null;index"`
	TechnicianID   *string        `json:"technician_id" gorm:"size:36;index"`
	ServiceType    string         `json:"service_type" gorm:"size:20;not null"`
	Status         string         `json:"status" gorm:"size:20;not null;default:PENDING"`
	ServiceDate    time.Time      `json:"service_date" gorm:"not null"`
	Remarks        string         `json:"remarks" gorm:"type:text"` // "Key: value" 编码的客户信息
	ReminderSentAt *time.Time     `json:"reminder_sent_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Customer   *User         `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Technician *Technician   `json:"technician,omitempty" gorm:"foreignKey:TechnicianID"`
	Parts      []BookingPart `json:"parts,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingPart 预约单耗用的备件
type BookingPart struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	BookingID string    `json:"booking_id" gorm:"size:36;not null;index"`
	PartID    string    `json:"part_id" gorm:"size:36;not null;index"`
	PartName  string    `json:"part_name" gorm:"size:128;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitCost  float64   `json:"unit_cost" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (BookingPart) TableName() string {
	return "booking_parts"
}
