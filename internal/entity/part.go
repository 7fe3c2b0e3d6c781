package entity

import (
	"time"

	"gorm.io/gorm"
)

// StockReason 库存变动原因
const (
	ReasonUsedInService   = "Used in service"
	ReasonReportRevised   = "Report revised"
	ReasonReportDeleted   = "Report deleted"
	ReasonBookingCanceled = "Booking canceled"
	ReasonBookingDeleted  = "Booking deleted"
	ReasonManualAdjust    = "Manual adjustment"
	ReasonInitialStock    = "Initial stock"
)

// Part 备件库存
type Part struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	Name        string         `json:"name" gorm:"size:128;not null;uniqueIndex"`
	UnitCost    float64        `json:"unit_cost" gorm:"type:decimal(12,2);not null;default:0"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	SafetyStock int            `json:"safety_stock" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (Part) TableName() string {
	return "parts"
}

// StockLogEntry 库存流水，只追加不修改
type StockLogEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PartID    string    `json:"part_id" gorm:"size:36;not null;index"`
	Delta     int       `json:"delta" gorm:"not null"` // 正=入库，负=出库
	Reason    string    `json:"reason" gorm:"size:128;not null"`
	CreatedBy string    `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (StockLogEntry) TableName() string {
	return "stock_log_entries"
}
