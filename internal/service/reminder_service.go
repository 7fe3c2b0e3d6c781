package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/shared/mailgate"
	"go.uber.org/zap"
)

// ReminderService 定时扫描已完成的预约单，超过静默期的给客户发回访提醒。
// 幂等性靠预约单上的 reminder_sent_at 标记，每单最多提醒一次。
type ReminderService struct {
	bookingRepo *repository.BookingRepository
	notifySvc   *NotificationService
	mailer      *mailgate.Client
	logger      *zap.Logger

	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

func NewReminderService(
	bookingRepo *repository.BookingRepository,
	notifySvc *NotificationService,
	mailer *mailgate.Client,
	logger *zap.Logger,
	interval, staleAfter time.Duration,
) *ReminderService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if staleAfter <= 0 {
		staleAfter = 7 * 24 * time.Hour
	}
	return &ReminderService{
		bookingRepo: bookingRepo,
		notifySvc:   notifySvc,
		mailer:      mailer,
		logger:      logger,
		Interval:    interval,
		StaleAfter:  staleAfter,
		BatchSize:   100,
	}
}

// Run 周期执行扫描，ctx取消后退出
func (s *ReminderService) Run(ctx context.Context) {
	s.logger.Info("reminder worker started",
		zap.Duration("interval", s.Interval),
		zap.Duration("stale_after", s.StaleAfter))
	for {
		if err := s.ScanOnce(ctx); err != nil {
			s.logger.Error("reminder scan failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("reminder worker stopped")
			return
		case <-time.After(s.Interval):
		}
	}
}

// ScanOnce 单轮扫描。重复执行不会重复提醒。
func (s *ReminderService) ScanOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-s.StaleAfter)
	due, err := s.bookingRepo.FindDueForReminder(ctx, cutoff, s.BatchSize)
	if err != nil {
		return fmt.Errorf("find due bookings: %w", err)
	}

	for _, booking := range due {
		title := "How is your appliance doing?"
		message := fmt.Sprintf(
			"Your %s service (booking %s) was completed on %s. Reply if anything needs a follow-up visit.",
			booking.ServiceType, booking.BookingCode, booking.ServiceDate.Format("2006-01-02"))

		if s.mailer != nil {
			if err := s.mailer.Send(ctx, booking.CustomerID, title, message); err != nil {
				// 投递失败只记日志，标记照常落下，避免反复骚扰
				s.logger.Warn("reminder delivery failed",
					zap.String("booking_id", booking.ID),
					zap.Error(err))
			}
		}

		bookingID := booking.ID
		if err := s.notifySvc.Record(ctx, booking.CustomerID, &bookingID, title, message); err != nil {
			s.logger.Error("reminder record failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
			continue
		}
		if err := s.bookingRepo.MarkReminderSent(ctx, booking.ID, time.Now()); err != nil {
			return fmt.Errorf("mark reminder sent: %w", err)
		}
	}

	if len(due) > 0 {
		s.logger.Info("reminder scan completed", zap.Int("notified", len(due)))
	}
	return nil
}
