package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	billingModel "kosku_backend/internals/features/billing/model"
	branchModel "kosku_backend/internals/features/branches/model"
	contractDTO "kosku_backend/internals/features/contracts/dto"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifModel "kosku_backend/internals/features/notifications/model"
	roomModel "kosku_backend/internals/features/rooms/model"
	userModel "kosku_backend/internals/features/users/model"
	utilModel "kosku_backend/internals/features/utilities/model"
	helper "kosku_backend/internals/helpers"
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
		&billingModel.Invoice{},
		&billingModel.Payment{},
		&notifModel.Notification{},
	))
	return db
}

var adminActor = scope.Actor{UserID: 99, Role: constants.RoleAdmin}

// seedBranch: cabang lengkap dengan layanan listrik + air (syarat kontrak).
func seedBranch(t *testing.T, db *gorm.DB) branchModel.Branch {
	branch := branchModel.Branch{Name: "Kos Anggrek", OwnerID: 1}
	require.NoError(t, db.Create(&branch).Error)
	require.NoError(t, db.Create(&utilModel.Service{
		BranchID: branch.ID, Name: "Listrik", Type: utilModel.ServiceElectricity, Price: 1500, Unit: "kWh",
	}).Error)
	require.NoError(t, db.Create(&utilModel.Service{
		BranchID: branch.ID, Name: "Air", Type: utilModel.ServiceWater, Price: 7000, Unit: "m3",
	}).Error)
	return branch
}

func seedRoom(t *testing.T, db *gorm.DB, branchID uint, name, status string) roomModel.Room {
	room := roomModel.Room{BranchID: branchID, Name: name, Price: 2_000_000, Status: status}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func createRequest(room roomModel.Room) contractDTO.CreateContractRequest {
	return contractDTO.CreateContractRequest{
		RoomID:    room.ID,
		UserID:    7,
		BranchID:  room.BranchID,
		StartDate: "2025-01-01",
		EndDate:   "2026-01-01",
		Deposit:   500_000,
	}
}

// seedCurrentMonthUsage: bacaan meter bulan berjalan supaya tagihan penutup
// (EndContract/ChangeRoom, due = hari ini) punya data.
func seedCurrentMonthUsage(t *testing.T, db *gorm.DB, c *contractModel.Contract, amount float64) {
	var svc utilModel.Service
	require.NoError(t, db.Where("branch_id = ? AND type = ?", c.BranchID, utilModel.ServiceElectricity).First(&svc).Error)
	require.NoError(t, db.Create(&utilModel.UtilityUsage{
		RoomID:      c.RoomID,
		ContractID:  c.ID,
		ServiceID:   svc.ID,
		Month:       helper.MonthOf(time.Now()),
		OldReading:  1000,
		NewReading:  1000 + amount,
		UsageAmount: amount,
		RecordedAt:  time.Now().Add(-time.Hour),
	}).Error)
}

func TestCreateContract_OccupiesRoom(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)

	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)
	assert.Equal(t, contractModel.ContractActive, c.Status)
	assert.Equal(t, float64(500_000), c.Deposit)

	var got roomModel.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, roomModel.RoomOccupied, got.Status)
}

func TestCreateContract_RoomNotAvailable(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomOccupied)

	_, err := CreateContract(db, adminActor, createRequest(room))
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestCreateContract_RequiresEssentialServices(t *testing.T) {
	db := setupTestDB(t)
	branch := branchModel.Branch{Name: "Kos Baru", OwnerID: 1}
	require.NoError(t, db.Create(&branch).Error)
	// Hanya listrik, tanpa air.
	require.NoError(t, db.Create(&utilModel.Service{
		BranchID: branch.ID, Name: "Listrik", Type: utilModel.ServiceElectricity, Price: 1500,
	}).Error)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)

	_, err := CreateContract(db, adminActor, createRequest(room))
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestCreateContract_EndBeforeStart(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)

	req := createRequest(room)
	req.StartDate = "2025-06-01"
	req.EndDate = "2025-01-01"
	_, err := CreateContract(db, adminActor, req)
	require.Error(t, err)
}

func TestEndContract_WithoutUsageLeavesStateUntouched(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)

	// Tanpa bacaan meter bulan berjalan: gagal total, kontrak tetap active.
	_, err = EndContract(db, adminActor, c.ID)
	require.Error(t, err)
	assert.True(t, errs.IsMissingUtilityData(err))

	var got contractModel.Contract
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, contractModel.ContractActive, got.Status)

	var gotRoom roomModel.Room
	require.NoError(t, db.First(&gotRoom, room.ID).Error)
	assert.Equal(t, roomModel.RoomOccupied, gotRoom.Status)
}

func TestEndContract_SettlesBillAndFreesRoom(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)
	seedCurrentMonthUsage(t, db, c, 100)

	resp, err := EndContract(db, adminActor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contractModel.ContractEnded, resp.Status)
	require.NotNil(t, resp.InvoiceID)
	require.NotNil(t, resp.Amount)
	assert.Greater(t, *resp.Amount, float64(0))

	var got contractModel.Contract
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, contractModel.ContractEnded, got.Status)

	var gotRoom roomModel.Room
	require.NoError(t, db.First(&gotRoom, room.ID).Error)
	assert.Equal(t, roomModel.RoomAvailable, gotRoom.Status)

	var p billingModel.Payment
	require.NoError(t, db.Where("contract_id = ?", c.ID).First(&p).Error)
	assert.Equal(t, billingModel.PaymentPending, p.Status)
}

func TestEndContract_NonActiveIsSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)
	require.NoError(t, db.Model(c).Update("status", contractModel.ContractCancelled).Error)

	resp, err := EndContract(db, adminActor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contractModel.ContractDeleted, resp.Status)
	assert.Nil(t, resp.InvoiceID)

	// Soft delete: hilang dari query biasa, masih ada Unscoped.
	var count int64
	require.NoError(t, db.Model(&contractModel.Contract{}).Where("id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Unscoped().Model(&contractModel.Contract{}).Where("id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteContract_FreesRoomAndOccupants(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)
	require.NoError(t, db.Create(&roomModel.RoomOccupant{RoomID: room.ID, UserID: 7}).Error)

	require.NoError(t, DeleteContract(db, adminActor, c.ID))

	var gotRoom roomModel.Room
	require.NoError(t, db.First(&gotRoom, room.ID).Error)
	assert.Equal(t, roomModel.RoomAvailable, gotRoom.Status)

	var occupants int64
	require.NoError(t, db.Model(&roomModel.RoomOccupant{}).Where("room_id = ?", room.ID).Count(&occupants).Error)
	assert.Equal(t, int64(0), occupants)
}

func TestDeleteContract_EmployeeForbidden(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	room := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(room))
	require.NoError(t, err)

	employee := scope.Actor{UserID: 50, Role: constants.RoleEmployee}
	err = DeleteContract(db, employee, c.ID)
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindPermissionDenied, kind)
}

func TestChangeRoom_MovesTenantAndSettlesOldBill(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	oldRoom := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	newRoom := seedRoom(t, db, branch.ID, "A-02", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(oldRoom))
	require.NoError(t, err)
	seedCurrentMonthUsage(t, db, c, 80)

	resp, err := ChangeRoom(db, adminActor, c.ID, contractDTO.ChangeRoomRequest{
		NewRoomID: newRoom.ID,
		BranchID:  branch.ID,
		StartDate: "2025-03-01",
		EndDate:   "2026-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.OldContractID)
	assert.NotEqual(t, c.ID, resp.NewContractID)
	assert.Greater(t, resp.Amount, float64(0))

	// Kamar lama bebas, kamar baru terisi.
	var oldGot, newGot roomModel.Room
	require.NoError(t, db.First(&oldGot, oldRoom.ID).Error)
	require.NoError(t, db.First(&newGot, newRoom.ID).Error)
	assert.Equal(t, roomModel.RoomAvailable, oldGot.Status)
	assert.Equal(t, roomModel.RoomOccupied, newGot.Status)

	// Kontrak lama soft-deleted; kontrak baru active dengan penyewa sama
	// dan deposit terbawa (request deposit 0).
	var oldContract contractModel.Contract
	require.NoError(t, db.Unscoped().First(&oldContract, c.ID).Error)
	assert.Equal(t, contractModel.ContractEnded, oldContract.Status)
	assert.True(t, oldContract.DeletedAt.Valid)

	var newContract contractModel.Contract
	require.NoError(t, db.First(&newContract, resp.NewContractID).Error)
	assert.Equal(t, contractModel.ContractActive, newContract.Status)
	assert.Equal(t, c.UserID, newContract.UserID)
	assert.Equal(t, c.Deposit, newContract.Deposit)

	// Penghuni kamar baru tercatat.
	var occ roomModel.RoomOccupant
	require.NoError(t, db.Where("room_id = ?", newRoom.ID).First(&occ).Error)
	assert.Equal(t, c.UserID, occ.UserID)
}

func TestChangeRoom_DifferentBranchRejected(t *testing.T) {
	db := setupTestDB(t)
	branch := seedBranch(t, db)
	other := seedBranch(t, db)
	oldRoom := seedRoom(t, db, branch.ID, "A-01", roomModel.RoomAvailable)
	otherRoom := seedRoom(t, db, other.ID, "Z-01", roomModel.RoomAvailable)
	c, err := CreateContract(db, adminActor, createRequest(oldRoom))
	require.NoError(t, err)
	seedCurrentMonthUsage(t, db, c, 80)

	_, err = ChangeRoom(db, adminActor, c.ID, contractDTO.ChangeRoomRequest{
		NewRoomID: otherRoom.ID,
		BranchID:  other.ID,
		StartDate: "2025-03-01",
		EndDate:   "2026-03-01",
	})
	require.Error(t, err)

	// Gagal total: kontrak lama tetap active.
	var got contractModel.Contract
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, contractModel.ContractActive, got.Status)
}
