package entity

import (
	"time"
)

// Notification 站内通知记录
// BookingID 作为催办去重标记的关联键
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Recipient string    `json:"recipient" gorm:"size:36;not null;index"`
	BookingID *string   `json:"booking_id" gorm:"size:36;index"`
	Title     string    `json:"title" gorm:"size:128;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	SentAt    time.Time `json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
