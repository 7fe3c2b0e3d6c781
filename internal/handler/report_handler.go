package handler

import (
	"net/http"
	"strconv"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.ReportListParams{
		TechnicianID: c.Query("technician_id"),
		BookingID:    c.Query("booking_id"),
		Page:         page,
		Size:         size,
	}
	// 技师只能看自己的报告
	if c.GetString("role") == entity.RoleTechnician {
		params.TechnicianID = c.GetString("user_id")
	}
	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "total": total, "page": page, "size": size})
}

func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID := c.GetString("user_id")
	// 技师账号的ID即技师档案ID
	report, err := h.svc.Create(c.Request.Context(), req, userID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, report)
}

// ownReport 技师只能改自己的报告，管理员不受限
func (h *ReportHandler) ownReport(c *gin.Context, reportID string) bool {
	report, err := h.svc.Get(c.Request.Context(), reportID)
	if err != nil {
		fail(c, err)
		return false
	}
	if c.GetString("role") == entity.RoleTechnician && report.TechnicianID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"code": 40320, "message": "not your report"})
		return false
	}
	return true
}

func (h *ReportHandler) Update(c *gin.Context) {
	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.ownReport(c, c.Param("id")) {
		return
	}
	report, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, c.GetString("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}

func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ReportHandler) UploadAttachment(c *gin.Context) {
	if !h.ownReport(c, c.Param("id")) {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	src, err := file.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer src.Close()

	report, err := h.svc.UploadAttachment(c.Request.Context(), c.Param("id"),
		file.Filename, file.Size, src, file.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, report)
}
