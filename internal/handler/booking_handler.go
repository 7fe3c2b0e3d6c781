package handler

import (
	"net/http"
	"strconv"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/service"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.BookingListParams{
		CustomerID:   c.Query("customer_id"),
		TechnicianID: c.Query("technician_id"),
		Status:       c.Query("status"),
		ServiceType:  c.Query("service_type"),
		Page:         page,
		Size:         size,
	}
	// 普通用户只能看自己的单
	if c.GetString("role") == entity.RoleUser {
		params.CustomerID = c.GetString("user_id")
	}
	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if c.GetString("role") == entity.RoleUser && booking.CustomerID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"code": 40321, "message": "not your booking"})
		return
	}
	ok(c, booking)
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	booking, err := h.svc.Create(c.Request.Context(), req, c.GetString("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, booking)
}

type assignRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

func (h *BookingHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	booking, err := h.svc.AssignTechnician(c.Request.Context(), c.Param("id"), req.TechnicianID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, booking)
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELED"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	booking, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, booking)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if c.GetString("role") == entity.RoleUser && booking.CustomerID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"code": 40321, "message": "not your booking"})
		return
	}
	booking, err = h.svc.Cancel(c.Request.Context(), booking.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, booking)
}

type addPartsRequest struct {
	Parts []service.BookingPartItem `json:"parts" binding:"required,min=1,dive"`
}

func (h *BookingHandler) AddParts(c *gin.Context) {
	var req addPartsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	parts, err := h.svc.AddParts(c.Request.Context(), c.Param("id"), req.Parts, c.GetString("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, parts)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
