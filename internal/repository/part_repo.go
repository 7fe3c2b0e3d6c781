package repository

import (
	"context"

	"github.com/bitfantasy/fixcare/internal/entity"
	"gorm.io/gorm"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *PartRepository) FindByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &part, nil
}

func (r *PartRepository) FindByName(ctx context.Context, name string) (*entity.Part, error) {
	var part entity.Part
	if err := r.db.WithContext(ctx).First(&part, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &part, nil
}

func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

func (r *PartRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Part{}, "id = ?", id).Error
}

// AdjustQuantity 条件原子增减库存。
// 非负校验必须和扣减在同一条UPDATE里，读改写两步在并发下会把库存扣成负数。
// 返回false表示记录不存在或扣减会导致负库存。
func (r *PartRepository) AdjustQuantity(ctx context.Context, partID string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Part{}).
		Where("id = ? AND quantity + ? >= 0", partID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PartRepository) CreateLogEntry(ctx context.Context, log *entity.StockLogEntry) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// SumDeltas 某备件全部流水增量之和，用于对账
func (r *PartRepository) SumDeltas(ctx context.Context, partID string) (int, error) {
	var result struct{ Total int }
	err := r.db.WithContext(ctx).Model(&entity.StockLogEntry{}).
		Select("COALESCE(SUM(delta), 0) as total").
		Where("part_id = ?", partID).
		Scan(&result).Error
	return result.Total, err
}

type PartListParams struct {
	Keyword string
	Page    int
	Size    int
}

func (r *PartRepository) List(ctx context.Context, params PartListParams) ([]entity.Part, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Part{})
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?)", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var parts []entity.Part
	err := query.Order("name ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&parts).Error
	return parts, total, err
}

// ListLogs 备件流水，按写入顺序返回以便重放
func (r *PartRepository) ListLogs(ctx context.Context, partID string, page, size int) ([]entity.StockLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockLogEntry{})
	if partID != "" {
		query = query.Where("part_id = ?", partID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var logs []entity.StockLogEntry
	err := query.Order("created_at ASC, id ASC").
		Offset((page - 1) * size).Limit(size).Find(&logs).Error
	return logs, total, err
}

// GetAlerts 低于安全库存的备件
func (r *PartRepository) GetAlerts(ctx context.Context) ([]entity.Part, error) {
	var alerts []entity.Part
	err := r.db.WithContext(ctx).
		Where("quantity < safety_stock AND safety_stock > 0").
		Find(&alerts).Error
	return alerts, err
}
