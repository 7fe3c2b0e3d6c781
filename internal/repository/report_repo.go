package repository

import (
	"context"

	"github.com/bitfantasy/fixcare/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Preload("Technician").
		Preload("Parts").
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

// Update 只保存报告本体，预加载的关联不跟着写回
func (r *ReportRepository) Update(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(report).Error
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Report{}, "id = ?", id).Error
}

type ReportListParams struct {
	TechnicianID string
	BookingID    string
	Page         int
	Size         int
}

func (r *ReportRepository) List(ctx context.Context, params ReportListParams) ([]entity.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Report{})
	if params.TechnicianID != "" {
		query = query.Where("technician_id = ?", params.TechnicianID)
	}
	if params.BookingID != "" {
		query = query.Where("booking_id = ?", params.BookingID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var reports []entity.Report
	err := query.Preload("Technician").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&reports).Error
	return reports, total, err
}

func (r *ReportRepository) CreatePart(ctx context.Context, part *entity.ReportPart) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *ReportRepository) ListParts(ctx context.Context, reportID string) ([]entity.ReportPart, error) {
	var parts []entity.ReportPart
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&parts).Error
	return parts, err
}

func (r *ReportRepository) DeleteParts(ctx context.Context, reportID string) error {
	return r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Delete(&entity.ReportPart{}).Error
}
