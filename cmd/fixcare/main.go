package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/fixcare/internal/config"
	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/handler"
	"github.com/bitfantasy/fixcare/internal/middleware"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting fixcare service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate tables", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	registerRoutes(router, handlers, cfg)

	// 端口
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 回访提醒后台任务
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go services.Reminder.Run(workerCtx)

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "fixcare"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "fixcare"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "fixcare",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 备件库存
		parts := v1.Group("/parts")
		{
			parts.GET("", h.Part.List)
			parts.GET("/alerts", h.Part.Alerts)
			parts.GET("/:id", h.Part.Get)
			parts.GET("/:id/logs", h.Part.Logs)
			parts.POST("", middleware.RequireRole(entity.RoleAdmin), h.Part.Create)
			parts.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), h.Part.Update)
			parts.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Part.Delete)
			parts.POST("/:id/adjust", middleware.RequireRole(entity.RoleAdmin), h.Part.Adjust)
		}

		// 技师
		technicians := v1.Group("/technicians")
		{
			technicians.GET("", h.Technician.List)
			technicians.GET("/:id", h.Technician.Get)
			technicians.POST("", middleware.RequireRole(entity.RoleAdmin), h.Technician.Create)
			technicians.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), h.Technician.Update)
			technicians.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Technician.Delete)
		}

		// 预约单
		bookings := v1.Group("/bookings")
		{
			bookings.GET("", h.Booking.List)
			bookings.POST("", h.Booking.Create)
			bookings.GET("/:id", h.Booking.Get)
			bookings.POST("/:id/assign", middleware.RequireRole(entity.RoleAdmin), h.Booking.Assign)
			bookings.POST("/:id/status", middleware.RequireRole(entity.RoleTechnician), h.Booking.UpdateStatus)
			bookings.POST("/:id/parts", middleware.RequireRole(entity.RoleTechnician), h.Booking.AddParts)
			bookings.POST("/:id/cancel", h.Booking.Cancel)
			bookings.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Booking.Delete)
		}

		// 服务报告
		reports := v1.Group("/reports")
		{
			reports.GET("", h.Report.List)
			reports.GET("/:id", h.Report.Get)
			reports.POST("", middleware.RequireRole(entity.RoleTechnician), h.Report.Create)
			reports.PUT("/:id", middleware.RequireRole(entity.RoleTechnician), h.Report.Update)
			reports.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Report.Delete)
			reports.POST("/:id/attachment", middleware.RequireRole(entity.RoleTechnician), h.Report.UploadAttachment)
		}

		// 通知
		v1.GET("/notifications", h.Notification.List)
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
