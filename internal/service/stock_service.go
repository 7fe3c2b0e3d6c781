package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	partListCacheKey = "parts:list:default"
	partListCacheTTL = 5 * time.Minute
)

// StockService 备件台账：当前数量 + 只追加的流水
type StockService struct {
	repo *repository.PartRepository
	rdb  *redis.Client
}

func NewStockService(repo *repository.PartRepository, rdb *redis.Client) *StockService {
	return &StockService{repo: repo, rdb: rdb}
}

// Adjust 按带符号增量调整库存并记一条流水，返回调整后的数量。
// 扣减越过零线时整个调用失败，不产生任何写入。
func (s *StockService) Adjust(ctx context.Context, partID string, delta int, reason, userID string) (int, error) {
	part, err := s.repo.FindByID(ctx, partID)
	if err != nil {
		return 0, fmt.Errorf("part %s: %w", partID, err)
	}

	ok, err := s.repo.AdjustQuantity(ctx, partID, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust part %s: %w", part.Name, err)
	}
	if !ok {
		// 正增量不会被余量挡住，没命中只能是行没了
		if delta >= 0 {
			return 0, fmt.Errorf("part %s: %w", partID, repository.ErrNotFound)
		}
		return 0, fmt.Errorf("part %s: need %d, have %d: %w", part.Name, -delta, part.Quantity, ErrInsufficientStock)
	}

	log := &entity.StockLogEntry{
		ID:        uuid.New().String(),
		PartID:    partID,
		Delta:     delta,
		Reason:    reason,
		CreatedBy: userID,
	}
	if err := s.repo.CreateLogEntry(ctx, log); err != nil {
		return 0, fmt.Errorf("record stock log: %w", err)
	}

	s.invalidateCache(ctx)

	updated, err := s.repo.FindByID(ctx, partID)
	if err != nil {
		return 0, err
	}
	return updated.Quantity, nil
}

type CreatePartRequest struct {
	Name        string  `json:"name" binding:"required"`
	UnitCost    float64 `json:"unit_cost" binding:"gte=0"`
	Quantity    int     `json:"quantity" binding:"gte=0"`
	SafetyStock int     `json:"safety_stock" binding:"gte=0"`
}

func (s *StockService) CreatePart(ctx context.Context, req CreatePartRequest, userID string) (*entity.Part, error) {
	if existing, err := s.repo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("part %s: %w", req.Name, ErrConflict)
	}

	part := &entity.Part{
		ID:          uuid.New().String(),
		Name:        req.Name,
		UnitCost:    req.UnitCost,
		Quantity:    req.Quantity,
		SafetyStock: req.SafetyStock,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}

	if req.Quantity > 0 {
		log := &entity.StockLogEntry{
			ID:        uuid.New().String(),
			PartID:    part.ID,
			Delta:     req.Quantity,
			Reason:    entity.ReasonInitialStock,
			CreatedBy: userID,
		}
		if err := s.repo.CreateLogEntry(ctx, log); err != nil {
			return nil, fmt.Errorf("record stock log: %w", err)
		}
	}

	s.invalidateCache(ctx)
	return part, nil
}

type UpdatePartRequest struct {
	Name        string   `json:"name"`
	UnitCost    *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
	SafetyStock *int     `json:"safety_stock" binding:"omitempty,gte=0"`
}

// UpdatePart 改名称/单价/安全库存，没传的字段保持原值。
// 数量只能走 Adjust，保证流水完整。
func (s *StockService) UpdatePart(ctx context.Context, id string, req UpdatePartRequest) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", id, err)
	}
	if req.Name != "" {
		part.Name = req.Name
	}
	if req.UnitCost != nil {
		part.UnitCost = *req.UnitCost
	}
	if req.SafetyStock != nil {
		part.SafetyStock = *req.SafetyStock
	}
	if err := s.repo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}
	s.invalidateCache(ctx)
	return part, nil
}

func (s *StockService) DeletePart(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("part %s: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *StockService) GetPart(ctx context.Context, id string) (*entity.Part, error) {
	return s.repo.FindByID(ctx, id)
}

type partListResult struct {
	Items []entity.Part `json:"items"`
	Total int64         `json:"total"`
}

// List 备件列表。默认首页走Redis缓存，带条件的查询直查库。
func (s *StockService) List(ctx context.Context, params repository.PartListParams) ([]entity.Part, int64, error) {
	cacheable := s.rdb != nil && params.Keyword == "" && params.Page <= 1 &&
		(params.Size == 0 || params.Size == 20)

	if cacheable {
		if cached, err := s.rdb.Get(ctx, partListCacheKey).Result(); err == nil {
			var result partListResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result.Items, result.Total, nil
			}
		}
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if payload, err := json.Marshal(partListResult{Items: items, Total: total}); err == nil {
			s.rdb.Set(ctx, partListCacheKey, payload, partListCacheTTL)
		}
	}
	return items, total, nil
}

func (s *StockService) Logs(ctx context.Context, partID string, page, size int) ([]entity.StockLogEntry, int64, error) {
	return s.repo.ListLogs(ctx, partID, page, size)
}

func (s *StockService) Alerts(ctx context.Context) ([]entity.Part, error) {
	return s.repo.GetAlerts(ctx)
}

type partDemand struct {
	PartID   string
	Quantity int
}

func toPartDemands(items []BookingPartItem) []partDemand {
	demands := make([]partDemand, len(items))
	for i, item := range items {
		demands[i] = partDemand{PartID: item.PartID, Quantity: item.Quantity}
	}
	return demands
}

// resolveAndCheck 整批预检：所有备件存在且数量足够才放行，否则一件不动。
// 预检和扣减之间仍有并发窗口，由 AdjustQuantity 的条件UPDATE兜底。
func (s *StockService) resolveAndCheck(ctx context.Context, demands []partDemand) ([]*entity.Part, error) {
	parts := make([]*entity.Part, len(demands))
	for i, d := range demands {
		part, err := s.repo.FindByID(ctx, d.PartID)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", d.PartID, err)
		}
		if part.Quantity < d.Quantity {
			return nil, fmt.Errorf("part %s: need %d, have %d: %w",
				part.Name, d.Quantity, part.Quantity, ErrInsufficientStock)
		}
		parts[i] = part
	}
	return parts, nil
}

func (s *StockService) invalidateCache(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, partListCacheKey)
	}
}
