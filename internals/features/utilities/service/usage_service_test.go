package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	branchModel "kosku_backend/internals/features/branches/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifModel "kosku_backend/internals/features/notifications/model"
	roomModel "kosku_backend/internals/features/rooms/model"
	userModel "kosku_backend/internals/features/users/model"
	utilDTO "kosku_backend/internals/features/utilities/dto"
	utilModel "kosku_backend/internals/features/utilities/model"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.User{},
		&branchModel.Branch{},
		&branchModel.EmployeeAssignment{},
		&roomModel.Room{},
		&roomModel.RoomOccupant{},
		&contractModel.Contract{},
		&utilModel.Service{},
		&utilModel.UtilityUsage{},
		&notifModel.Notification{},
	))
	return db
}

var adminActor = scope.Actor{UserID: 99, Role: constants.RoleAdmin}

type usageFixture struct {
	branch   branchModel.Branch
	room     roomModel.Room
	contract contractModel.Contract
	svc      utilModel.Service
}

func seedUsageFixture(t *testing.T, db *gorm.DB) usageFixture {
	f := usageFixture{}
	f.branch = branchModel.Branch{Name: "Kos Mawar", OwnerID: 1}
	require.NoError(t, db.Create(&f.branch).Error)

	f.room = roomModel.Room{BranchID: f.branch.ID, Name: "B-02", Price: 1_500_000, Status: roomModel.RoomOccupied}
	require.NoError(t, db.Create(&f.room).Error)

	f.contract = contractModel.Contract{
		RoomID:    f.room.ID,
		UserID:    5,
		BranchID:  f.branch.ID,
		StartDate: time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
		Status:    contractModel.ContractActive,
	}
	require.NoError(t, db.Create(&f.contract).Error)

	f.svc = utilModel.Service{BranchID: f.branch.ID, Name: "Listrik", Type: utilModel.ServiceElectricity, Price: 1500, Unit: "kWh"}
	require.NoError(t, db.Create(&f.svc).Error)
	return f
}

func TestRecordReading_ResolvesContractAndComputesUsage(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	u, err := RecordReading(db, adminActor, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1200,
		NewReading: 1320.5,
		RecordDate: "2025-01-28",
	})
	require.NoError(t, err)

	// contract_id tidak pernah dikirim client; diambil dari kontrak active.
	assert.Equal(t, f.contract.ID, u.ContractID)
	assert.Equal(t, 120.5, u.UsageAmount)
}

func TestRecordReading_UpsertsInPlace(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	req := utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1200,
		NewReading: 1300,
		RecordDate: "2025-01-28",
	}
	first, err := RecordReading(db, adminActor, req)
	require.NoError(t, err)

	req.NewReading = 1350
	second, err := RecordReading(db, adminActor, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, float64(150), second.UsageAmount)

	var count int64
	require.NoError(t, db.Model(&utilModel.UtilityUsage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordReading_MeterCannotGoBackwards(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	_, err := RecordReading(db, adminActor, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2024-12",
		OldReading: 1000,
		NewReading: 1200,
		RecordDate: "2024-12-28",
	})
	require.NoError(t, err)

	// Januari mulai dari 1100 padahal Desember berakhir 1200.
	_, err = RecordReading(db, adminActor, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1100,
		NewReading: 1250,
		RecordDate: "2025-01-28",
	})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestRecordReading_NewBelowOldRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	_, err := RecordReading(db, adminActor, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1300,
		NewReading: 1200,
		RecordDate: "2025-01-28",
	})
	require.Error(t, err)
}

func TestRecordReading_NoActiveContract(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)
	require.NoError(t, db.Model(&contractModel.Contract{}).
		Where("id = ?", f.contract.ID).
		Update("status", contractModel.ContractEnded).Error)

	_, err := RecordReading(db, adminActor, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1200,
		NewReading: 1300,
		RecordDate: "2025-01-28",
	})
	require.Error(t, err)
}

func TestBulkRecordReadings_AllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	entries := []utilDTO.RecordReadingRequest{
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2025-01", OldReading: 1200, NewReading: 1300, RecordDate: "2025-01-28"},
		{RoomID: 9999, ServiceID: f.svc.ID, Month: "2025-01", OldReading: 500, NewReading: 600, RecordDate: "2025-01-28"},
	}
	_, err := BulkRecordReadings(db, adminActor, f.branch.ID, entries)
	require.Error(t, err)

	var domainErr *errs.Error
	require.True(t, errors.As(err, &domainErr))
	require.Len(t, domainErr.Details, 1)
	assert.Contains(t, domainErr.Details[0], "Entry 2")

	// Entry valid ikut dibatalkan: tidak ada satu pun yang tertulis.
	var count int64
	require.NoError(t, db.Model(&utilModel.UtilityUsage{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBulkRecordReadings_Success(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	water := utilModel.Service{BranchID: f.branch.ID, Name: "Air", Type: utilModel.ServiceWater, Price: 7000, Unit: "m3"}
	require.NoError(t, db.Create(&water).Error)

	entries := []utilDTO.RecordReadingRequest{
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2025-01", OldReading: 1200, NewReading: 1300, RecordDate: "2025-01-28"},
		{RoomID: f.room.ID, ServiceID: water.ID, Month: "2025-01", OldReading: 40, NewReading: 52, RecordDate: "2025-01-28"},
	}
	results, err := BulkRecordReadings(db, adminActor, f.branch.ID, entries)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, f.contract.ID, results[0].ContractID)
	assert.Equal(t, float64(12), results[1].UsageAmount)
}

func TestLatestReading(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	// Belum ada catatan: prefill 0.
	latest, err := LatestReading(db, adminActor, f.room.ID, f.svc.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), latest.NewReading)

	for _, r := range []utilDTO.RecordReadingRequest{
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2024-12", OldReading: 1000, NewReading: 1200, RecordDate: "2024-12-28"},
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2025-01", OldReading: 1200, NewReading: 1350, RecordDate: "2025-01-28"},
	} {
		_, err := RecordReading(db, adminActor, r)
		require.NoError(t, err)
	}

	latest, err = LatestReading(db, adminActor, f.room.ID, f.svc.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1350), latest.NewReading)
	assert.Equal(t, f.contract.ID, latest.ContractID)
}

func TestUsageSummary_GroupsByMonthAndService(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	for _, r := range []utilDTO.RecordReadingRequest{
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2024-12", OldReading: 1000, NewReading: 1200, RecordDate: "2024-12-28"},
		{RoomID: f.room.ID, ServiceID: f.svc.ID, Month: "2025-01", OldReading: 1200, NewReading: 1350, RecordDate: "2025-01-28"},
	} {
		_, err := RecordReading(db, adminActor, r)
		require.NoError(t, err)
	}

	rows, err := UsageSummary(db, adminActor, f.room.ID, 0, 0, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = UsageSummary(db, adminActor, f.room.ID, 0, 0, "2025-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(150), rows[0].TotalUsage)
	assert.Equal(t, "Listrik", rows[0].ServiceName)
}

func TestRecordReading_CustomerForbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seedUsageFixture(t, db)

	customer := scope.Actor{UserID: 5, Role: constants.RoleCustomer}
	_, err := RecordReading(db, customer, utilDTO.RecordReadingRequest{
		RoomID:     f.room.ID,
		ServiceID:  f.svc.ID,
		Month:      "2025-01",
		OldReading: 1200,
		NewReading: 1300,
		RecordDate: "2025-01-28",
	})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindPermissionDenied, kind)
}
