package repository

import (
	"context"

	"github.com/bitfantasy/fixcare/internal/entity"
	"gorm.io/gorm"
)

type TechnicianRepository struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

func (r *TechnicianRepository) Create(ctx context.Context, tech *entity.Technician) error {
	return r.db.WithContext(ctx).Create(tech).Error
}

func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*entity.Technician, error) {
	var tech entity.Technician
	if err := r.db.WithContext(ctx).First(&tech, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tech, nil
}

func (r *TechnicianRepository) Update(ctx context.Context, tech *entity.Technician) error {
	return r.db.WithContext(ctx).Save(tech).Error
}

func (r *TechnicianRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Technician{}, "id = ?", id).Error
}

// IncrementJobs 派单计数+1，直接在数据库侧自增避免并发丢失
func (r *TechnicianRepository) IncrementJobs(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entity.Technician{}).
		Where("id = ?", id).
		Update("jobs_assigned", gorm.Expr("jobs_assigned + 1")).Error
}

type TechnicianListParams struct {
	Keyword    string
	ActiveOnly bool
	Page       int
	Size       int
}

func (r *TechnicianRepository) List(ctx context.Context, params TechnicianListParams) ([]entity.Technician, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Technician{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(specialty) LIKE LOWER(?)", kw, kw)
	}
	if params.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var techs []entity.Technician
	err := query.Order("name ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&techs).Error
	return techs, total, err
}
