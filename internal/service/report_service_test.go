package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/testutil"
	"gorm.io/gorm"
)

func setupReportTest(t *testing.T) (*ReportService, *StockService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stock := NewStockService(repos.Part, nil)
	svc := NewReportService(repos.Report, repos.Booking, repos.Technician, stock, nil, "")

	testutil.SeedTestUser(t, db, "cust-1", "Alice", "alice@test.com", entity.RoleUser)
	testutil.SeedTestTechnician(t, db, "tech-1", "Bob")
	return svc, stock, db
}

func TestReportCreateConsumesStock(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 10, 5)

	report, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Contact:      "13800001111",
		ServiceInfo:  "Washing machine drum repair",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 3}},
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 7 {
		t.Errorf("Expected quantity 7, got %d", p1.Quantity)
	}
	if report.PartsSummary != "Drive Belt x3" {
		t.Errorf("Expected summary 'Drive Belt x3', got %q", report.PartsSummary)
	}
	if report.TotalCost != 15 {
		t.Errorf("Expected total cost 15, got %v", report.TotalCost)
	}
	if len(report.Parts) != 1 || report.Parts[0].UnitCost != 5 {
		t.Errorf("Expected one structured part row at cost 5, got %v", report.Parts)
	}
}

func TestReportCreateInsufficientStock(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 2, 5)

	_, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 3}},
	}, "tech-1", "tech-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 2 {
		t.Errorf("Expected quantity unchanged at 2, got %d", p1.Quantity)
	}
	var reportCount int64
	db.Model(&entity.Report{}).Count(&reportCount)
	if reportCount != 0 {
		t.Errorf("Expected no report persisted, got %d", reportCount)
	}
}

func TestReportCompletesBooking(t *testing.T) {
	svc, _, db := setupReportTest(t)
	ctx := context.Background()
	booking := testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	techID := "tech-1"
	db.Model(booking).Update("technician_id", techID)

	_, err := svc.Create(ctx, CreateReportRequest{
		BookingID:    &booking.ID,
		CustomerName: "Alice",
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var updated entity.Booking
	db.First(&updated, "id = ?", "b1")
	if updated.Status != entity.BookingStatusCompleted {
		t.Errorf("Expected booking COMPLETED, got %s", updated.Status)
	}
}

func TestReportRejectsUnassignedTechnician(t *testing.T) {
	svc, _, db := setupReportTest(t)
	ctx := context.Background()
	booking := testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	testutil.SeedTestTechnician(t, db, "tech-2", "Carol")
	db.Model(booking).Update("technician_id", "tech-2")

	_, err := svc.Create(ctx, CreateReportRequest{
		BookingID:    &booking.ID,
		CustomerName: "Alice",
	}, "tech-1", "tech-1")
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("Expected ErrNotAssigned, got %v", err)
	}
}

func TestReportUpdateRoundTrip(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 10, 5)
	testutil.SeedTestPart(t, db, "p2", "Bearing", 6, 8)

	report, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 3}},
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 改成耗用另一种备件：旧的全额退回，新的按新清单扣
	updated, err := svc.Update(ctx, report.ID, UpdateReportRequest{
		Parts: []ReportPartItem{{PartID: "p2", Quantity: 2}},
	}, "tech-1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	p2, _ := stock.GetPart(ctx, "p2")
	if p1.Quantity != 10 {
		t.Errorf("Expected p1 restored to 10, got %d", p1.Quantity)
	}
	if p2.Quantity != 4 {
		t.Errorf("Expected p2 at 4, got %d", p2.Quantity)
	}
	if updated.PartsSummary != "Bearing x2" {
		t.Errorf("Expected summary 'Bearing x2', got %q", updated.PartsSummary)
	}
	if updated.TotalCost != 16 {
		t.Errorf("Expected total 16, got %v", updated.TotalCost)
	}
}

func TestReportUpdateFailedEditLeavesNoTrace(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 10, 5)

	report, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 3}},
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 新清单校验失败的编辑不能留下任何痕迹
	_, err = svc.Update(ctx, report.ID, UpdateReportRequest{
		Parts: []ReportPartItem{{PartID: "no-such-part", Quantity: 1}},
	}, "tech-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 7 {
		t.Errorf("Expected quantity still 7 after failed edit, got %d", p1.Quantity)
	}
	var rowCount int64
	db.Model(&entity.ReportPart{}).Where("report_id = ?", report.ID).Count(&rowCount)
	if rowCount != 1 {
		t.Errorf("Expected structured rows untouched, got %d", rowCount)
	}
	var stored entity.Report
	db.First(&stored, "id = ?", report.ID)
	if stored.PartsSummary != "Drive Belt x3" {
		t.Errorf("Expected summary untouched, got %q", stored.PartsSummary)
	}

	// 再编辑回同样的清单，净效果必须为零
	if _, err := svc.Update(ctx, report.ID, UpdateReportRequest{
		Parts: []ReportPartItem{{PartID: "p1", Quantity: 3}},
	}, "tech-1"); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	p1, _ = stock.GetPart(ctx, "p1")
	if p1.Quantity != 7 {
		t.Errorf("Expected quantity 7 (same consumption as before), got %d", p1.Quantity)
	}
}

func TestReportUpdateValidatesAgainstReversedStock(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 10, 5)

	report, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 8}},
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 现货只剩2，但旧耗用8会先退回，净需求2是够的
	updated, err := svc.Update(ctx, report.ID, UpdateReportRequest{
		Parts: []ReportPartItem{{PartID: "p1", Quantity: 10}},
	}, "tech-1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.PartsSummary != "Drive Belt x10" {
		t.Errorf("Expected summary 'Drive Belt x10', got %q", updated.PartsSummary)
	}
	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 0 {
		t.Errorf("Expected quantity 0, got %d", p1.Quantity)
	}

	// 超出净可用量仍然拒绝
	_, err = svc.Update(ctx, report.ID, UpdateReportRequest{
		Parts: []ReportPartItem{{PartID: "p1", Quantity: 11}},
	}, "tech-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}
	p1, _ = stock.GetPart(ctx, "p1")
	if p1.Quantity != 0 {
		t.Errorf("Expected quantity still 0, got %d", p1.Quantity)
	}
}

func TestReportDeleteRestoresStock(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 10, 5)

	report, err := svc.Create(ctx, CreateReportRequest{
		CustomerName: "Alice",
		Parts:        []ReportPartItem{{PartID: "p1", Quantity: 4}},
	}, "tech-1", "tech-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, report.ID, "admin"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected quantity restored to 10, got %d", p1.Quantity)
	}
	var logs []entity.StockLogEntry
	db.Where("part_id = ? AND reason = ?", "p1", entity.ReasonReportDeleted).Find(&logs)
	if len(logs) != 1 || logs[0].Delta != 4 {
		t.Errorf("Expected one +4 deletion log, got %v", logs)
	}
}

func TestReportReverseLegacySummary(t *testing.T) {
	svc, stock, db := setupReportTest(t)
	ctx := context.Background()
	testutil.SeedTestPart(t, db, "p1", "Drive Belt", 7, 5)

	// 只有汇总串、没有结构化记录的历史报告
	legacy := &entity.Report{
		ID:           "legacy-1",
		ReportCode:   "RPT-LEGACY",
		TechnicianID: "tech-1",
		CustomerName: "Alice",
		PartsSummary: "Drive Belt x3",
		TotalCost:    15,
	}
	if err := db.Create(legacy).Error; err != nil {
		t.Fatalf("seed legacy report: %v", err)
	}

	if err := svc.Delete(ctx, "legacy-1", "admin"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected quantity 10 after legacy reversal, got %d", p1.Quantity)
	}
}

func TestParseSummary(t *testing.T) {
	cases := []struct {
		summary string
		want    []ParsedPart
	}{
		{"", nil},
		{"Drive Belt x3", []ParsedPart{{"Drive Belt", 3}}},
		{"Drive Belt x3, Bearing x2", []ParsedPart{{"Drive Belt", 3}, {"Bearing", 2}}},
		{"Box x2 x5", []ParsedPart{{"Box x2", 5}}},
		{"garbage", nil},
		{"Part xNaN", nil},
	}
	for _, c := range cases {
		got := ParseSummary(c.summary)
		if len(got) != len(c.want) {
			t.Errorf("ParseSummary(%q) = %v, want %v", c.summary, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("ParseSummary(%q)[%d] = %v, want %v", c.summary, i, got[i], c.want[i])
			}
		}
	}
}
