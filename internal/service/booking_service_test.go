package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/fixcare/internal/entity"
	"github.com/bitfantasy/fixcare/internal/repository"
	"github.com/bitfantasy/fixcare/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBookingTest(t *testing.T) (*BookingService, *StockService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stock := NewStockService(repos.Part, nil)
	notifySvc := NewNotificationService(repos.Notification)
	svc := NewBookingService(repos.Booking, repos.Technician, repos.User, stock, notifySvc, nil, zap.NewNop())

	testutil.SeedTestUser(t, db, "cust-1", "Alice", "alice@test.com", entity.RoleUser)
	testutil.SeedTestTechnician(t, db, "tech-1", "Bob")
	return svc, stock, db
}

func TestBookingCreate(t *testing.T) {
	svc, _, _ := setupBookingTest(t)
	ctx := context.Background()

	booking, err := svc.Create(ctx, CreateBookingRequest{
		ServiceType: entity.ServiceTypeRepair,
		ServiceDate: time.Now().Add(24 * time.Hour),
		Name:        "Alice",
		Phone:       "13800001111",
		Address:     "12 Main St",
		Problem:     "Fridge not cooling",
	}, "cust-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if booking.Status != entity.BookingStatusPending {
		t.Errorf("Expected status PENDING, got %s", booking.Status)
	}
	if booking.BookingCode == "" {
		t.Error("Expected non-empty booking code")
	}
	if booking.Remarks != "Name: Alice, Phone: 13800001111, Address: 12 Main St, Problem: Fridge not cooling" {
		t.Errorf("Unexpected remarks encoding: %q", booking.Remarks)
	}
}

func TestBookingAssignTechnician(t *testing.T) {
	svc, _, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusPending)

	booking, err := svc.AssignTechnician(ctx, "b1", "tech-1")
	if err != nil {
		t.Fatalf("AssignTechnician failed: %v", err)
	}
	if booking.Status != entity.BookingStatusInProgress {
		t.Errorf("Expected status IN_PROGRESS, got %s", booking.Status)
	}
	if booking.TechnicianID == nil || *booking.TechnicianID != "tech-1" {
		t.Errorf("Expected technician tech-1, got %v", booking.TechnicianID)
	}

	var tech entity.Technician
	db.First(&tech, "id = ?", "tech-1")
	if tech.JobsAssigned != 1 {
		t.Errorf("Expected jobs_assigned 1, got %d", tech.JobsAssigned)
	}
}

func TestBookingReassignIncrementsAgain(t *testing.T) {
	svc, _, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusPending)

	if _, err := svc.AssignTechnician(ctx, "b1", "tech-1"); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}
	if _, err := svc.AssignTechnician(ctx, "b1", "tech-1"); err != nil {
		t.Fatalf("second assign failed: %v", err)
	}

	// 计数语义是派单次数，重复派同一技师也+1
	var tech entity.Technician
	db.First(&tech, "id = ?", "tech-1")
	if tech.JobsAssigned != 2 {
		t.Errorf("Expected jobs_assigned 2 after reassign, got %d", tech.JobsAssigned)
	}
}

func TestBookingAssignInactiveTechnician(t *testing.T) {
	svc, _, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusPending)
	db.Model(&entity.Technician{}).Where("id = ?", "tech-1").Update("active", false)

	_, err := svc.AssignTechnician(ctx, "b1", "tech-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for inactive technician, got %v", err)
	}
}

func TestBookingIllegalTransition(t *testing.T) {
	svc, _, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusCompleted)

	_, err := svc.UpdateStatus(ctx, "b1", entity.BookingStatusPending)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, "b1", entity.BookingStatusCanceled)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition for COMPLETED→CANCELED, got %v", err)
	}
}

func TestBookingAddPartsRequiresInProgress(t *testing.T) {
	svc, _, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusPending)
	testutil.SeedTestPart(t, db, "p1", "Compressor", 10, 50)

	_, err := svc.AddParts(ctx, "b1", []BookingPartItem{{PartID: "p1", Quantity: 1}}, "tech-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition for PENDING booking, got %v", err)
	}
}

func TestBookingAddPartsAllOrNothing(t *testing.T) {
	svc, stock, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	testutil.SeedTestPart(t, db, "p1", "Compressor", 10, 50)
	testutil.SeedTestPart(t, db, "p2", "Filter", 1, 5)

	_, err := svc.AddParts(ctx, "b1", []BookingPartItem{
		{PartID: "p1", Quantity: 2},
		{PartID: "p2", Quantity: 3},
	}, "tech-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	// 整批失败，一件都不能扣
	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected p1 quantity unchanged at 10, got %d", p1.Quantity)
	}
}

func TestBookingCancelRestoresParts(t *testing.T) {
	svc, stock, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	testutil.SeedTestPart(t, db, "p1", "Compressor", 10, 50)

	if _, err := svc.AddParts(ctx, "b1", []BookingPartItem{{PartID: "p1", Quantity: 4}}, "tech-1"); err != nil {
		t.Fatalf("AddParts failed: %v", err)
	}
	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 6 {
		t.Fatalf("Expected quantity 6 after consumption, got %d", p1.Quantity)
	}

	booking, err := svc.Cancel(ctx, "b1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if booking.Status != entity.BookingStatusCanceled {
		t.Errorf("Expected status CANCELED, got %s", booking.Status)
	}

	p1, _ = stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected quantity restored to 10, got %d", p1.Quantity)
	}

	var logs []entity.StockLogEntry
	db.Where("part_id = ? AND reason = ?", "p1", entity.ReasonBookingCanceled).Find(&logs)
	if len(logs) != 1 || logs[0].Delta != 4 {
		t.Errorf("Expected one +4 cancellation log, got %v", logs)
	}
}

func TestBookingDeleteRestoresParts(t *testing.T) {
	svc, stock, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	testutil.SeedTestPart(t, db, "p1", "Compressor", 10, 50)

	if _, err := svc.AddParts(ctx, "b1", []BookingPartItem{{PartID: "p1", Quantity: 3}}, "tech-1"); err != nil {
		t.Fatalf("AddParts failed: %v", err)
	}
	if err := svc.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected quantity restored to 10, got %d", p1.Quantity)
	}
	if _, err := svc.Get(ctx, "b1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected booking gone, got %v", err)
	}
}

func TestBookingDeleteCanceledDoesNotRestoreTwice(t *testing.T) {
	svc, stock, db := setupBookingTest(t)
	ctx := context.Background()
	testutil.SeedTestBooking(t, db, "b1", "cust-1", entity.BookingStatusInProgress)
	testutil.SeedTestPart(t, db, "p1", "Compressor", 10, 50)

	if _, err := svc.AddParts(ctx, "b1", []BookingPartItem{{PartID: "p1", Quantity: 4}}, "tech-1"); err != nil {
		t.Fatalf("AddParts failed: %v", err)
	}
	if _, err := svc.Cancel(ctx, "b1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := svc.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	p1, _ := stock.GetPart(ctx, "p1")
	if p1.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %d (double restore?)", p1.Quantity)
	}
}
