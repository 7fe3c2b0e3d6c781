package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		Preload("Parts").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

// Update 只保存预约单本体，预加载的关联不跟着写回
func (r *BookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(booking).Error
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Booking{}, "id = ?", id).Error
}

type BookingListParams struct {
	CustomerID   string
	TechnicianID string
	Status       string
	ServiceType  string
	Page         int
	Size         int
}

func (r *BookingRepository) List(ctx context.Context, params BookingListParams) ([]entity.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Booking{})
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.TechnicianID != "" {
		query = query.Where("technician_id = ?", params.TechnicianID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ServiceType != "" {
		query = query.Where("service_type = ?", params.ServiceType)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var bookings []entity.Booking
	err := query.Preload("Technician").Order("service_date DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&bookings).Error
	return bookings, total, err
}

func (r *BookingRepository) CreatePart(ctx context.Context, part *entity.BookingPart) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *BookingRepository) ListParts(ctx context.Context, bookingID string) ([]entity.BookingPart, error) {
	var parts []entity.BookingPart
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&parts).Error
	return parts, err
}

func (r *BookingRepository) DeleteParts(ctx context.Context, bookingID string) error {
	return r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Delete(&entity.BookingPart{}).Error
}

// FindDueForReminder 已完成、服务日期早于截止时间且未催办过的预约单
func (r *BookingRepository) FindDueForReminder(ctx context.Context, before time.Time, limit int) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ? AND service_date < ? AND reminder_sent_at IS NULL",
			entity.BookingStatusCompleted, before).
		Order("service_date ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// MarkReminderSent 盖上催办标记，保证扫描任务按单幂等
func (r *BookingRepository) MarkReminderSent(ctx context.Context, bookingID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND reminder_sent_at IS NULL", bookingID).
		Update("reminder_sent_at", at).Error
}
