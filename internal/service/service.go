package service

import (
	"github.com/bitfantasy/fixcare/internal/config"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/shared/mailgate"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Stock        *StockService
	Technician   *TechnicianService
	Booking      *BookingService
	Report       *ReportService
	Notification *NotificationService
	Reminder     *ReminderService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 通知网关未配置时保持nil，调用方有nil保护
	var mailer *mailgate.Client
	if cfg.Mailer.Endpoint != "" {
		mailer = mailgate.NewClient(cfg.Mailer.Endpoint, cfg.Mailer.Token)
	}

	// MinIO客户端初始化失败不拦启动，附件功能降级
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio client init failed, attachments disabled", zap.Error(err))
			minioClient = nil
		}
	}

	stockSvc := NewStockService(repos.Part, rdb)
	notifySvc := NewNotificationService(repos.Notification)

	return &Services{
		Stock:        stockSvc,
		Technician:   NewTechnicianService(repos.Technician),
		Booking:      NewBookingService(repos.Booking, repos.Technician, repos.User, stockSvc, notifySvc, mailer, logger),
		Report:       NewReportService(repos.Report, repos.Booking, repos.Technician, stockSvc, minioClient, cfg.MinIO.Bucket),
		Notification: notifySvc,
		Reminder: NewReminderService(repos.Booking, notifySvc, mailer, logger,
			cfg.Reminder.Interval, cfg.Reminder.StaleAfter),
	}
}
