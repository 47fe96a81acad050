package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	branchModel "kosku_backend/internals/features/branches/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	roomDTO "kosku_backend/internals/features/rooms/dto"
	roomModel "kosku_backend/internals/features/rooms/model"
	userModel "kosku_backend/internals/features/users/model"
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
		&roomModel.RoomType{},
		&roomModel.Room{},
		&roomModel.RoomOccupant{},
		&contractModel.Contract{},
	))
	return db
}

var adminActor = scope.Actor{UserID: 99, Role: constants.RoleAdmin}

func seedRoomFixture(t *testing.T, db *gorm.DB, status string) roomModel.Room {
	branch := branchModel.Branch{Name: "Kos Dahlia", OwnerID: 1}
	require.NoError(t, db.Create(&branch).Error)
	room := roomModel.Room{BranchID: branch.ID, Name: "C-03", Price: 1_800_000, Status: status}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedActiveContract(t *testing.T, db *gorm.DB, room roomModel.Room, userID uint) contractModel.Contract {
	c := contractModel.Contract{
		RoomID:    room.ID,
		UserID:    userID,
		BranchID:  room.BranchID,
		StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:    contractModel.ContractActive,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func strPtr(s string) *string { return &s }

func TestCreateRoom_StartsAvailable(t *testing.T) {
	db := setupTestDB(t)
	branch := branchModel.Branch{Name: "Kos Dahlia", OwnerID: 1}
	require.NoError(t, db.Create(&branch).Error)

	room, err := CreateRoom(db, adminActor, roomDTO.CreateRoomRequest{
		BranchID: branch.ID,
		Name:     "C-01",
		Price:    1_500_000,
	})
	require.NoError(t, err)
	assert.Equal(t, roomModel.RoomAvailable, room.Status)
}

func TestUpdateRoom_MaintenanceToggle(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomAvailable)

	updated, err := UpdateRoom(db, adminActor, room.ID, roomDTO.UpdateRoomRequest{Status: roomModel.RoomMaintenance})
	require.NoError(t, err)
	assert.Equal(t, roomModel.RoomMaintenance, updated.Status)

	updated, err = UpdateRoom(db, adminActor, room.ID, roomDTO.UpdateRoomRequest{Status: roomModel.RoomAvailable})
	require.NoError(t, err)
	assert.Equal(t, roomModel.RoomAvailable, updated.Status)
}

func TestUpdateRoom_CannotManuallyOccupy(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomAvailable)

	// occupied hanya boleh lewat kontrak.
	_, err := UpdateRoom(db, adminActor, room.ID, roomDTO.UpdateRoomRequest{Status: roomModel.RoomOccupied})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestUpdateRoom_CannotFreeOccupiedManually(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomOccupied)

	_, err := UpdateRoom(db, adminActor, room.ID, roomDTO.UpdateRoomRequest{Status: roomModel.RoomAvailable})
	require.Error(t, err)
}

func TestDeleteRoom_OccupiedRejected(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomOccupied)

	err := DeleteRoom(db, adminActor, room.ID)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestSyncOccupants_RequiresActiveContract(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomAvailable)

	_, err := SyncOccupants(db, adminActor, roomDTO.SyncOccupantsRequest{
		RoomID: room.ID,
		Data:   []roomDTO.OccupantEntry{{UserID: 7}},
	})
	require.Error(t, err)
}

func TestSyncOccupants_SetDifference(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomOccupied)
	contract := seedActiveContract(t, db, room, 7)

	// Awal: user 7 dan 8.
	_, err := SyncOccupants(db, adminActor, roomDTO.SyncOccupantsRequest{
		RoomID: room.ID,
		Data: []roomDTO.OccupantEntry{
			{UserID: 7},
			{UserID: 8, Relation: strPtr("istri")},
		},
	})
	require.NoError(t, err)

	// Sinkron ulang: 8 keluar, 9 masuk, relation 7 berubah.
	result, err := SyncOccupants(db, adminActor, roomDTO.SyncOccupantsRequest{
		RoomID: room.ID,
		Data: []roomDTO.OccupantEntry{
			{UserID: 7, Relation: strPtr("penyewa")},
			{UserID: 9, Relation: strPtr("anak")},
		},
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	byUser := map[uint]roomModel.RoomOccupant{}
	for _, o := range result {
		byUser[o.UserID] = o
	}
	require.Contains(t, byUser, uint(7))
	require.Contains(t, byUser, uint(9))
	assert.NotContains(t, byUser, uint(8))
	assert.Equal(t, "penyewa", *byUser[7].Relation)

	// Penghuni baru mewarisi rentang tanggal kontrak active.
	require.NotNil(t, byUser[9].StartDate)
	assert.True(t, byUser[9].StartDate.Equal(contract.StartDate))
}

func TestRemoveOccupant(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoomFixture(t, db, roomModel.RoomOccupied)
	seedActiveContract(t, db, room, 7)

	occ := roomModel.RoomOccupant{RoomID: room.ID, UserID: 7}
	require.NoError(t, db.Create(&occ).Error)

	require.NoError(t, RemoveOccupant(db, adminActor, occ.ID))

	var count int64
	require.NoError(t, db.Model(&roomModel.RoomOccupant{}).Where("id = ?", occ.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
