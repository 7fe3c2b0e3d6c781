package handler

import (
	"strconv"

	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/service"
	"github.com/gin-gonic/gin"
)

type PartHandler struct {
	svc *service.StockService
}

func NewPartHandler(svc *service.StockService) *PartHandler {
	return &PartHandler{svc: svc}
}

func (h *PartHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.PartListParams{
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	}
	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

func (h *PartHandler) Get(c *gin.Context) {
	part, err := h.svc.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, part)
}

func (h *PartHandler) Create(c *gin.Context) {
	var req service.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	part, err := h.svc.CreatePart(c.Request.Context(), req, c.GetString("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, part)
}

func (h *PartHandler) Update(c *gin.Context) {
	var req service.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	part, err := h.svc.UpdatePart(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, part)
}

func (h *PartHandler) Delete(c *gin.Context) {
	if err := h.svc.DeletePart(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

type adjustRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h *PartHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quantity, err := h.svc.Adjust(c.Request.Context(), c.Param("id"), req.Delta, req.Reason, c.GetString("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"quantity": quantity})
}

func (h *PartHandler) Logs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	logs, total, err := h.svc.Logs(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": logs, "total": total, "page": page, "size": size})
}

func (h *PartHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, alerts)
}
