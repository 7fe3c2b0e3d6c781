package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers HTTP处理器集合
type Handlers struct {
	Part         *PartHandler
	Technician   *TechnicianHandler
	Booking      *BookingHandler
	Report       *ReportHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Part:         NewPartHandler(services.Stock),
		Technician:   NewTechnicianHandler(services.Technician),
		Booking:      NewBookingHandler(services.Booking),
		Report:       NewReportHandler(services.Report),
		Notification: NewNotificationHandler(services.Notification),
	}
}

// fail 把领域错误映射为统一响应
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 42201, "message": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 42202, "message": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"code": 40901, "message": err.Error()})
	case errors.Is(err, service.ErrNotAssigned):
		c.JSON(http.StatusForbidden, gin.H{"code": 40320, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": data})
}
