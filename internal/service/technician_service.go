package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/google/uuid"
)

// TechnicianService 技师档案管理
type TechnicianService struct {
	repo *repository.TechnicianRepository
}

func NewTechnicianService(repo *repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{repo: repo}
}

type CreateTechnicianRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
}

func (s *TechnicianService) Create(ctx context.Context, req CreateTechnicianRequest) (*entity.Technician, error) {
	tech := &entity.Technician{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		Active:    true,
	}
	if err := s.repo.Create(ctx, tech); err != nil {
		return nil, fmt.Errorf("create technician: %w", err)
	}
	return tech, nil
}

type UpdateTechnicianRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Active    *bool  `json:"active"`
}

func (s *TechnicianService) Update(ctx context.Context, id string, req UpdateTechnicianRequest) (*entity.Technician, error) {
	tech, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("technician %s: %w", id, err)
	}
	if req.Name != "" {
		tech.Name = req.Name
	}
	if req.Phone != "" {
		tech.Phone = req.Phone
	}
	if req.Specialty != "" {
		tech.Specialty = req.Specialty
	}
	if req.Active != nil {
		tech.Active = *req.Active
	}
	if err := s.repo.Update(ctx, tech); err != nil {
		return nil, fmt.Errorf("update technician: %w", err)
	}
	return tech, nil
}

func (s *TechnicianService) Get(ctx context.Context, id string) (*entity.Technician, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TechnicianService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("technician %s: %w", id, err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *TechnicianService) List(ctx context.Context, params repository.TechnicianListParams) ([]entity.Technician, int64, error) {
	return s.repo.List(ctx, params)
}
