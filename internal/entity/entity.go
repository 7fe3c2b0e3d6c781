package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 账号
		&User{},
		&Technician{},

		// 库存
		&Part{},
		&StockLogEntry{},

		// 预约
		&Booking{},
		&BookingPart{},

		// 报告
		&Report{},
		&ReportPart{},

		// 通知
		&Notification{},
	)
}
