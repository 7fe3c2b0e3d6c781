package entity

import (
	"time"

	"gorm.io/gorm"
)

// Role 系统角色
const (
	RoleUser       = "USER"
	RoleTechnician = "TECHNICIAN"
	RoleAdmin      = "ADMIN"
)

// User 客户/管理员账号
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Name      string         `json:"name" gorm:"size:64;not null"`
	Email     string         `json:"email" gorm:"size:128;uniqueIndex"`
	Phone     string         `json:"phone" gorm:"size:20"`
	Address   string         `json:"address" gorm:"size:256"`
	Role      string         `json:"role" gorm:"size:16;not null;default:USER"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// Technician 维修技师
type Technician struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	Name         string         `json:"name" gorm:"size:64;not null"`
	Phone        string         `json:"phone" gorm:"size:20"`
	Specialty    string         `json:"specialty" gorm:"size:64"`
	Active       bool           `json:"active" gorm:"not null;default:true"`
	JobsAssigned int            `json:"jobs_assigned" gorm:"not null;default:0"` // 历史派单计数，每次派单+1
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (Technician) TableName() string {
	return "technicians"
}
