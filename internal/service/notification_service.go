package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/google/uuid"
)

// NotificationService 站内通知的落库与查询
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Record 落一条通知记录
func (s *NotificationService) Record(ctx context.Context, recipient string, bookingID *string, title, message string) error {
	n := &entity.Notification{
		ID:        uuid.New().String(),
		Recipient: recipient,
		BookingID: bookingID,
		Title:     title,
		Message:   message,
		SentAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

func (s *NotificationService) ListByRecipient(ctx context.Context, recipient string, page, size int) ([]entity.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, recipient, page, size)
}
