package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/remarks"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/shared/mailgate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bookingTransitions 状态机迁移表。
// PENDING → IN_PROGRESS → COMPLETED，CANCELED 只能从前两态进入，终态封闭。
var bookingTransitions = map[string][]string{
	entity.BookingStatusPending:    {entity.BookingStatusInProgress, entity.BookingStatusCanceled},
	entity.BookingStatusInProgress: {entity.BookingStatusCompleted, entity.BookingStatusCanceled},
}

func canTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BookingService 预约单生命周期
type BookingService struct {
	repo      *repository.BookingRepository
	techRepo  *repository.TechnicianRepository
	userRepo  *repository.UserRepository
	stock     *StockService
	notifySvc *NotificationService
	mailer    *mailgate.Client
	logger    *zap.Logger
}

func NewBookingService(
	repo *repository.BookingRepository,
	techRepo *repository.TechnicianRepository,
	userRepo *repository.UserRepository,
	stock *StockService,
	notifySvc *NotificationService,
	mailer *mailgate.Client,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		techRepo:  techRepo,
		userRepo:  userRepo,
		stock:     stock,
		notifySvc: notifySvc,
		mailer:    mailer,
		logger:    logger,
	}
}

type CreateBookingRequest struct {
	ServiceType string    `json:"service_type" binding:"required,oneof=INSTALLATION REPAIR MAINTENANCE"`
	ServiceDate time.Time `json:"service_date" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Phone       string    `json:"phone" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Problem     string    `json:"problem"`
}

func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest, customerID string) (*entity.Booking, error) {
	if _, err := s.userRepo.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}

	code := fmt.Sprintf("BKG-%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
	booking := &entity.Booking{
		ID:          uuid.New().String(),
		BookingCode: code,
		CustomerID:  customerID,
		ServiceType: req.ServiceType,
		Status:      entity.BookingStatusPending,
		ServiceDate: req.ServiceDate,
		Remarks: remarks.Encode("", remarks.Fields{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
			Problem: req.Problem,
		}),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*entity.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context, params repository.BookingListParams) ([]entity.Booking, int64, error) {
	return s.repo.List(ctx, params)
}

// AssignTechnician 派单。预约单进入IN_PROGRESS，技师历史派单数+1。
// 重复派单会覆盖技师并再次+1，计数语义是"派单次数"而非"在手工单数"。
func (s *BookingService) AssignTechnician(ctx context.Context, bookingID, technicianID string) (*entity.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, err)
	}

	tech, err := s.techRepo.FindByID(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("technician %s: %w", technicianID, err)
	}
	if !tech.Active {
		return nil, fmt.Errorf("technician %s: %w", tech.Name, repository.ErrNotFound)
	}

	// 首次派单走 PENDING→IN_PROGRESS；已在IN_PROGRESS的单允许改派
	if booking.Status != entity.BookingStatusInProgress {
		if !canTransition(booking.Status, entity.BookingStatusInProgress) {
			return nil, fmt.Errorf("booking %s: %s → %s: %w",
				booking.BookingCode, booking.Status, entity.BookingStatusInProgress, ErrInvalidTransition)
		}
		booking.Status = entity.BookingStatusInProgress
	}
	booking.TechnicianID = &tech.ID

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if err := s.techRepo.IncrementJobs(ctx, tech.ID); err != nil {
		return nil, fmt.Errorf("increment technician jobs: %w", err)
	}

	s.notifyAssignment(ctx, booking, tech)
	return booking, nil
}

// UpdateStatus 按迁移表推进状态，非法迁移直接拒绝
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, newStatus string) (*entity.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, err)
	}

	if !canTransition(booking.Status, newStatus) {
		return nil, fmt.Errorf("booking %s: %s → %s: %w",
			booking.BookingCode, booking.Status, newStatus, ErrInvalidTransition)
	}
	if newStatus == entity.BookingStatusCanceled {
		if err := s.restoreParts(ctx, booking, entity.ReasonBookingCanceled); err != nil {
			return nil, err
		}
	}

	booking.Status = newStatus
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return booking, nil
}

// Cancel 取消预约并把已耗用的备件退回库存
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*entity.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, entity.BookingStatusCanceled)
}

type BookingPartItem struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// AddParts 为预约单登记耗用的备件并扣库存。
// 先整体校验再逐件扣减：任何一件不满足，整批不动。
func (s *BookingService) AddParts(ctx context.Context, bookingID string, items []BookingPartItem, userID string) ([]entity.BookingPart, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, err)
	}
	if booking.Status != entity.BookingStatusInProgress {
		return nil, fmt.Errorf("booking %s: parts only while %s: %w",
			booking.BookingCode, entity.BookingStatusInProgress, ErrInvalidTransition)
	}

	parts, err := s.stock.resolveAndCheck(ctx, toPartDemands(items))
	if err != nil {
		return nil, err
	}

	created := make([]entity.BookingPart, 0, len(items))
	for i, item := range items {
		if _, err := s.stock.Adjust(ctx, item.PartID, -item.Quantity, entity.ReasonUsedInService, userID); err != nil {
			return nil, err
		}
		bp := entity.BookingPart{
			ID:        uuid.New().String(),
			BookingID: booking.ID,
			PartID:    item.PartID,
			PartName:  parts[i].Name,
			Quantity:  item.Quantity,
			UnitCost:  parts[i].UnitCost,
		}
		if err := s.repo.CreatePart(ctx, &bp); err != nil {
			return nil, fmt.Errorf("create booking part: %w", err)
		}
		created = append(created, bp)
	}
	return created, nil
}

// Delete 删除预约单，先退回已耗用备件
func (s *BookingService) Delete(ctx context.Context, bookingID string) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bookingID, err)
	}
	// 已取消的单在取消时退过库存了
	if booking.Status != entity.BookingStatusCanceled {
		if err := s.restoreParts(ctx, booking, entity.ReasonBookingDeleted); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *BookingService) restoreParts(ctx context.Context, booking *entity.Booking, reason string) error {
	parts, err := s.repo.ListParts(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("list booking parts: %w", err)
	}
	for _, bp := range parts {
		if _, err := s.stock.Adjust(ctx, bp.PartID, bp.Quantity, reason, booking.CustomerID); err != nil {
			return fmt.Errorf("restore part %s: %w", bp.PartName, err)
		}
	}
	if len(parts) > 0 {
		if err := s.repo.DeleteParts(ctx, booking.ID); err != nil {
			return fmt.Errorf("clear booking parts: %w", err)
		}
	}
	return nil
}

func (s *BookingService) notifyAssignment(ctx context.Context, booking *entity.Booking, tech *entity.Technician) {
	title := "Technician assigned"
	message := fmt.Sprintf("Booking %s: %s will handle your %s service.",
		booking.BookingCode, tech.Name, booking.ServiceType)

	if s.mailer != nil {
		if err := s.mailer.Send(ctx, booking.CustomerID, title, message); err != nil {
			s.logger.Warn("assignment notification delivery failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}
	if s.notifySvc != nil {
		if err := s.notifySvc.Record(ctx, booking.CustomerID, &booking.ID, title, message); err != nil {
			s.logger.Warn("assignment notification record failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}
}
