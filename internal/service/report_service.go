package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/remarks"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ReportService 服务报告与库存对账
type ReportService struct {
	repo        *repository.ReportRepository
	bookingRepo *repository.BookingRepository
	techRepo    *repository.TechnicianRepository
	stock       *StockService
	minioClient *minio.Client
	bucketName  string
}

func NewReportService(
	repo *repository.ReportRepository,
	bookingRepo *repository.BookingRepository,
	techRepo *repository.TechnicianRepository,
	stock *StockService,
	minioClient *minio.Client,
	bucketName string,
) *ReportService {
	return &ReportService{
		repo:        repo,
		bookingRepo: bookingRepo,
		techRepo:    techRepo,
		stock:       stock,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

type ReportPartItem struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type CreateReportRequest struct {
	BookingID    *string          `json:"booking_id"`
	CustomerName string           `json:"customer_name"`
	Contact      string           `json:"contact"`
	ServiceInfo  string           `json:"service_info"`
	Problem      string           `json:"problem"`
	Parts        []ReportPartItem `json:"parts"`
}

// Create 生成服务报告：整批校验备件、逐件扣库存、汇总成本。
// 关联预约单的报告会把预约单推进到COMPLETED。
func (s *ReportService) Create(ctx context.Context, req CreateReportRequest, technicianID, userID string) (*entity.Report, error) {
	tech, err := s.techRepo.FindByID(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("technician %s: %w", technicianID, err)
	}

	var booking *entity.Booking
	if req.BookingID != nil && *req.BookingID != "" {
		booking, err = s.bookingRepo.FindByID(ctx, *req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", *req.BookingID, err)
		}
		if booking.TechnicianID == nil || *booking.TechnicianID != tech.ID {
			return nil, fmt.Errorf("booking %s: %w", booking.BookingCode, ErrNotAssigned)
		}
		if !canTransition(booking.Status, entity.BookingStatusCompleted) {
			return nil, fmt.Errorf("booking %s: %s → %s: %w",
				booking.BookingCode, booking.Status, entity.BookingStatusCompleted, ErrInvalidTransition)
		}
	}

	resolved, err := s.stock.resolveAndCheck(ctx, reportDemands(req.Parts))
	if err != nil {
		return nil, err
	}

	code := fmt.Sprintf("RPT-%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
	report := &entity.Report{
		ID:           uuid.New().String(),
		ReportCode:   code,
		TechnicianID: tech.ID,
		BookingID:    req.BookingID,
		CustomerName: req.CustomerName,
		Contact:      req.Contact,
		ServiceInfo:  req.ServiceInfo,
		Remarks: remarks.Encode("", remarks.Fields{
			Name:    req.CustomerName,
			Phone:   req.Contact,
			Problem: req.Problem,
		}),
	}

	reportParts, summary, total, err := s.consume(ctx, report.ID, req.Parts, resolved, userID)
	if err != nil {
		return nil, err
	}
	report.PartsSummary = summary
	report.TotalCost = total

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	for i := range reportParts {
		if err := s.repo.CreatePart(ctx, &reportParts[i]); err != nil {
			return nil, fmt.Errorf("create report part: %w", err)
		}
	}

	if booking != nil {
		booking.Status = entity.BookingStatusCompleted
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, fmt.Errorf("complete booking: %w", err)
		}
	}

	report.Parts = reportParts
	return report, nil
}

type UpdateReportRequest struct {
	CustomerName string           `json:"customer_name"`
	Contact      string           `json:"contact"`
	ServiceInfo  string           `json:"service_info"`
	Problem      string           `json:"problem"`
	Parts        []ReportPartItem `json:"parts"`
}

// Update 编辑报告：先按结构化记录冲销旧耗用，再按新清单重新校验扣减。
// 净效果只等于新旧清单的差额。新清单校验失败时报告和库存都保持原样。
func (s *ReportService) Update(ctx context.Context, reportID string, req UpdateReportRequest, userID string) (*entity.Report, error) {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", reportID, err)
	}

	// 冲销前先校验净需求：旧耗用即将退回，可用量要把它算进去
	restored, err := s.pendingRestore(ctx, report)
	if err != nil {
		return nil, err
	}
	resolved := make([]*entity.Part, len(req.Parts))
	for i, item := range req.Parts {
		part, err := s.stock.repo.FindByID(ctx, item.PartID)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", item.PartID, err)
		}
		available := part.Quantity + restored[item.PartID]
		if available < item.Quantity {
			return nil, fmt.Errorf("part %s: need %d, have %d: %w",
				part.Name, item.Quantity, available, ErrInsufficientStock)
		}
		resolved[i] = part
	}

	if err := s.reverse(ctx, report, entity.ReasonReportRevised, userID); err != nil {
		return nil, err
	}
	reportParts, summary, total, err := s.consume(ctx, report.ID, req.Parts, resolved, userID)
	if err != nil {
		return nil, err
	}
	for i := range reportParts {
		if err := s.repo.CreatePart(ctx, &reportParts[i]); err != nil {
			return nil, fmt.Errorf("create report part: %w", err)
		}
	}

	if req.CustomerName != "" {
		report.CustomerName = req.CustomerName
	}
	if req.Contact != "" {
		report.Contact = req.Contact
	}
	if req.ServiceInfo != "" {
		report.ServiceInfo = req.ServiceInfo
	}
	report.Remarks = remarks.Encode(report.Remarks, remarks.Fields{
		Name:    req.CustomerName,
		Phone:   req.Contact,
		Problem: req.Problem,
	})
	report.PartsSummary = summary
	report.TotalCost = total

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	report.Parts = reportParts
	return report, nil
}

// Delete 删除报告并退回全部耗用
func (s *ReportService) Delete(ctx context.Context, reportID, userID string) error {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("report %s: %w", reportID, err)
	}
	if err := s.reverse(ctx, report, entity.ReasonReportDeleted, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reportID); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*entity.Report, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReportService) List(ctx context.Context, params repository.ReportListParams) ([]entity.Report, int64, error) {
	return s.repo.List(ctx, params)
}

// UploadAttachment 上传现场照片到MinIO并登记到报告
func (s *ReportService) UploadAttachment(ctx context.Context, reportID, fileName string, fileSize int64, reader io.Reader, contentType string) (*entity.Report, error) {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", reportID, err)
	}

	objectName := fmt.Sprintf("reports/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
	}

	report.AttachmentName = fileName
	report.AttachmentPath = objectName
	report.AttachmentSize = fileSize
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return report, nil
}

// consume 逐件扣库存并生成结构化记录、汇总串和总成本。
// 调用前必须已通过 resolveAndCheck。
func (s *ReportService) consume(ctx context.Context, reportID string, items []ReportPartItem, resolved []*entity.Part, userID string) ([]entity.ReportPart, string, float64, error) {
	reportParts := make([]entity.ReportPart, 0, len(items))
	var total float64
	for i, item := range items {
		if _, err := s.stock.Adjust(ctx, item.PartID, -item.Quantity, entity.ReasonUsedInService, userID); err != nil {
			return nil, "", 0, err
		}
		total += float64(item.Quantity) * resolved[i].UnitCost
		reportParts = append(reportParts, entity.ReportPart{
			ID:       uuid.New().String(),
			ReportID: reportID,
			PartID:   item.PartID,
			PartName: resolved[i].Name,
			Quantity: item.Quantity,
			UnitCost: resolved[i].UnitCost,
		})
	}
	return reportParts, SummaryString(reportParts), total, nil
}

// pendingRestore 报告当前耗用的按备件汇总，即冲销后会退回库存的数量。
// 以结构化的 report_parts 为准，历史报告回退到解析汇总串。
func (s *ReportService) pendingRestore(ctx context.Context, report *entity.Report) (map[string]int, error) {
	restored := make(map[string]int)
	parts, err := s.repo.ListParts(ctx, report.ID)
	if err != nil {
		return nil, fmt.Errorf("list report parts: %w", err)
	}
	if len(parts) > 0 {
		for _, rp := range parts {
			restored[rp.PartID] += rp.Quantity
		}
		return restored, nil
	}
	for _, parsed := range ParseSummary(report.PartsSummary) {
		part, err := s.stock.repo.FindByName(ctx, parsed.Name)
		if err != nil {
			return nil, fmt.Errorf("part %q from summary: %w", parsed.Name, err)
		}
		restored[part.ID] += parsed.Quantity
	}
	return restored, nil
}

// reverse 冲销报告此前的全部库存影响。
// 以结构化的 report_parts 为准；没有结构化记录的历史报告回退到解析汇总串。
// 删除结构化记录的同时清掉汇总串，保证冲销不会被执行两次。
func (s *ReportService) reverse(ctx context.Context, report *entity.Report, reason, userID string) error {
	parts, err := s.repo.ListParts(ctx, report.ID)
	if err != nil {
		return fmt.Errorf("list report parts: %w", err)
	}

	if len(parts) > 0 {
		for _, rp := range parts {
			if _, err := s.stock.Adjust(ctx, rp.PartID, rp.Quantity, reason, userID); err != nil {
				return fmt.Errorf("restore part %s: %w", rp.PartName, err)
			}
		}
		if err := s.repo.DeleteParts(ctx, report.ID); err != nil {
			return fmt.Errorf("clear report parts: %w", err)
		}
	} else {
		// 历史数据：汇总串 "name xqty, ..."，按名称反查备件
		for _, parsed := range ParseSummary(report.PartsSummary) {
			part, err := s.stock.repo.FindByName(ctx, parsed.Name)
			if err != nil {
				return fmt.Errorf("part %q from summary: %w", parsed.Name, err)
			}
			if _, err := s.stock.Adjust(ctx, part.ID, parsed.Quantity, reason, userID); err != nil {
				return fmt.Errorf("restore part %s: %w", part.Name, err)
			}
		}
	}

	report.PartsSummary = ""
	report.TotalCost = 0
	return s.repo.Update(ctx, report)
}

// ParsedPart 从汇总串解析出的一项耗用
type ParsedPart struct {
	Name     string
	Quantity int
}

// SummaryString 拼接 "name xqty" 逗号分隔的展示串
func SummaryString(parts []entity.ReportPart) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, fmt.Sprintf("%s x%d", p.PartName, p.Quantity))
	}
	return strings.Join(segments, ", ")
}

// ParseSummary 解析汇总串。先按", "切项，再按末尾" x"切数量。
// 依赖备件名称唯一且不含分隔符，仅为兼容历史数据保留。
func ParseSummary(summary string) []ParsedPart {
	if summary == "" {
		return nil
	}
	var parsed []ParsedPart
	for _, segment := range strings.Split(summary, ", ") {
		idx := strings.LastIndex(segment, " x")
		if idx < 0 {
			continue
		}
		qty, err := strconv.Atoi(segment[idx+2:])
		if err != nil || qty <= 0 {
			continue
		}
		parsed = append(parsed, ParsedPart{Name: segment[:idx], Quantity: qty})
	}
	return parsed
}

func reportDemands(items []ReportPartItem) []partDemand {
	demands := make([]partDemand, len(items))
	for i, item := range items {
		demands[i] = partDemand{PartID: item.PartID, Quantity: item.Quantity}
	}
	return demands
}
