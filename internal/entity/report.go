package entity

import (
	"time"

	"gorm.io/gorm"
)

// Report 技师服务报告
type Report struct {
	ID           string  `json:"id" gorm:"primaryKey;size:36"`
	ReportCode   string  `json:"report_code" gorm:"size:50;not null;uniqueIndex"`
	TechnicianID string  `json:"technician_id" gorm:"size:36;not null;index"`
	BookingID    *string `json:"booking_id" gorm:"size:36;index"`

	// 自包含报告（无预约单）的客户信息
	CustomerName string `json:"customer_name" gorm:"size:64"`
	Contact      string `json:"contact" gorm:"size:64"`
	ServiceInfo  string `json:"service_info" gorm:"size:128"`

	Remarks      string  `json:"remarks" gorm:"type:text"`
	PartsSummary string  `json:"parts_summary" gorm:"type:text"` // "name xqty, name xqty" 展示用
	TotalCost    float64 `json:"total_cost" gorm:"type:decimal(12,2);not null;default:0"`

	// 现场照片附件（MinIO对象）
	AttachmentName string `json:"attachment_name" gorm:"size:256"`
	AttachmentPath string `json:"attachment_path" gorm:"size:512"`
	AttachmentSize int64  `json:"attachment_size"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Technician *Technician  `json:"technician,omitempty" gorm:"foreignKey:TechnicianID"`
	Booking    *Booking     `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Parts      []ReportPart `json:"parts,omitempty" gorm:"foreignKey:ReportID"`
}

func (Report) TableName() string {
	return "reports"
}

// ReportPart 报告耗用备件的结构化记录
// 冲销依据以此为准，不再解析汇总字符串
type ReportPart struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ReportID  string    `json:"report_id" gorm:"size:36;not null;index"`
	PartID    string    `json:"part_id" gorm:"size:36;not null;index"`
	PartName  string    `json:"part_name" gorm:"size:128;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitCost  float64   `json:"unit_cost" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (ReportPart) TableName() string {
	return "report_parts"
}
