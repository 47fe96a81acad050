// internals/features/rooms/service/room_service.go
package service

import (
	"errors"

	"gorm.io/gorm"

	contractModel "kosku_backend/internals/features/contracts/model"
	roomDTO "kosku_backend/internals/features/rooms/dto"
	roomModel "kosku_backend/internals/features/rooms/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

func CreateRoom(db *gorm.DB, actor scope.Actor, req roomDTO.CreateRoomRequest) (*roomModel.Room, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengelola kamar")
	}
	if err := scope.CanAccessBranch(db, actor, req.BranchID); err != nil {
		return nil, err
	}

	room := roomModel.Room{
		BranchID:   req.BranchID,
		RoomTypeID: req.RoomTypeID,
		Name:       req.Name,
		Price:      helper.Round2(req.Price),
		Status:     roomModel.RoomAvailable,
	}
	if err := db.Create(&room).Error; err != nil {
		return nil, errs.Persist("rooms.CreateRoom", err)
	}
	return &room, nil
}

func UpdateRoom(db *gorm.DB, actor scope.Actor, roomID uint, req roomDTO.UpdateRoomRequest) (*roomModel.Room, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengelola kamar")
	}

	var room roomModel.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Kamar %d tidak ditemukan", roomID)
		}
		return nil, errs.Persist("rooms.UpdateRoom(load)", err)
	}
	if err := scope.CanAccessBranch(db, actor, room.BranchID); err != nil {
		return nil, err
	}

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Price > 0 {
		room.Price = helper.Round2(req.Price)
	}
	if req.RoomTypeID != nil {
		room.RoomTypeID = req.RoomTypeID
	}
	if req.Status != "" {
		// occupied/available mengikuti kontrak; manual hanya boleh ke maintenance
		// dan kembali ke available dari maintenance.
		switch {
		case req.Status == roomModel.RoomMaintenance && room.Status == roomModel.RoomAvailable:
			room.Status = roomModel.RoomMaintenance
		case req.Status == roomModel.RoomAvailable && room.Status == roomModel.RoomMaintenance:
			room.Status = roomModel.RoomAvailable
		case req.Status == room.Status:
			// no-op
		default:
			return nil, errs.Validation("Status kamar tidak bisa diubah manual dari %s ke %s", room.Status, req.Status)
		}
	}

	if err := db.Save(&room).Error; err != nil {
		return nil, errs.Persist("rooms.UpdateRoom", err)
	}
	return &room, nil
}

// DeleteRoom: soft delete; kamar yang masih occupied ditolak.
func DeleteRoom(db *gorm.DB, actor scope.Actor, roomID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak mengelola kamar")
	}
	var room roomModel.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Kamar %d tidak ditemukan", roomID)
		}
		return errs.Persist("rooms.DeleteRoom(load)", err)
	}
	if err := scope.CanAccessBranch(db, actor, room.BranchID); err != nil {
		return err
	}
	if room.Status == roomModel.RoomOccupied {
		return errs.Conflict("Kamar %d masih dihuni, selesaikan kontraknya dulu", roomID)
	}
	if err := db.Delete(&room).Error; err != nil {
		return errs.Persist("rooms.DeleteRoom", err)
	}
	return nil
}

func ListRooms(db *gorm.DB, actor scope.Actor, branchID uint, status string, p helper.PageParams) ([]roomModel.Room, int64, error) {
	q := scope.ApplyBranchScope(db.Model(&roomModel.Room{}), actor, "rooms.branch_id")
	if branchID != 0 {
		q = q.Scopes(roomModel.ScopeRoomByBranch(branchID))
	}
	if status != "" {
		q = q.Where("rooms.status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("rooms.ListRooms(count)", err)
	}

	var rooms []roomModel.Room
	if err := q.Order("rooms.id").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&rooms).Error; err != nil {
		return nil, 0, errs.Persist("rooms.ListRooms", err)
	}
	return rooms, total, nil
}

func GetRoom(db *gorm.DB, actor scope.Actor, roomID uint) (*roomModel.Room, error) {
	var room roomModel.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Kamar %d tidak ditemukan", roomID)
		}
		return nil, errs.Persist("rooms.GetRoom", err)
	}
	if err := scope.CanAccessBranch(db, actor, room.BranchID); err != nil {
		return nil, err
	}
	return &room, nil
}

/* =========================
   Penghuni kamar
   ========================= */

func ListOccupants(db *gorm.DB, actor scope.Actor, roomID uint) ([]roomModel.RoomOccupant, error) {
	if _, err := GetRoom(db, actor, roomID); err != nil {
		return nil, err
	}
	var occupants []roomModel.RoomOccupant
	if err := db.Where("room_id = ?", roomID).Order("id").Find(&occupants).Error; err != nil {
		return nil, errs.Persist("rooms.ListOccupants", err)
	}
	return occupants, nil
}

// SyncOccupants menyamakan daftar penghuni kamar dengan payload:
// yang tidak ada lagi di payload dikeluarkan (soft delete), yang baru masuk
// didaftarkan dengan rentang tanggal kontrak active, relation yang berubah
// di-update in place.
func SyncOccupants(db *gorm.DB, actor scope.Actor, req roomDTO.SyncOccupantsRequest) ([]roomModel.RoomOccupant, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengelola penghuni")
	}

	var result []roomModel.RoomOccupant
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var room roomModel.Room
		if err := tx.First(&room, req.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kamar %d tidak ditemukan", req.RoomID)
			}
			return errs.Persist("rooms.SyncOccupants(load room)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, room.BranchID); err != nil {
			return err
		}

		var contract contractModel.Contract
		err := tx.Where("room_id = ? AND status = ?", req.RoomID, contractModel.ContractActive).
			Order("start_date DESC").
			First(&contract).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Validation("Tidak ada kontrak active untuk kamar %d", req.RoomID)
			}
			return errs.Persist("rooms.SyncOccupants(load contract)", err)
		}

		var current []roomModel.RoomOccupant
		if err := tx.Where("room_id = ?", req.RoomID).Find(&current).Error; err != nil {
			return errs.Persist("rooms.SyncOccupants(load current)", err)
		}

		currentByUser := make(map[uint]*roomModel.RoomOccupant, len(current))
		for i := range current {
			currentByUser[current[i].UserID] = &current[i]
		}
		wanted := make(map[uint]roomDTO.OccupantEntry, len(req.Data))
		for _, e := range req.Data {
			wanted[e.UserID] = e
		}

		// Keluarkan yang tidak ada di daftar baru.
		var toRemove []uint
		for userID := range currentByUser {
			if _, keep := wanted[userID]; !keep {
				toRemove = append(toRemove, userID)
			}
		}
		if len(toRemove) > 0 {
			if err := tx.Where("room_id = ? AND user_id IN ?", req.RoomID, toRemove).
				Delete(&roomModel.RoomOccupant{}).Error; err != nil {
				return errs.Persist("rooms.SyncOccupants(remove)", err)
			}
		}

		// Tambah yang baru, update relation yang berubah.
		for _, e := range req.Data {
			if existing, ok := currentByUser[e.UserID]; ok {
				if !equalRelation(existing.Relation, e.Relation) {
					if err := tx.Model(existing).Update("relation", e.Relation).Error; err != nil {
						return errs.Persist("rooms.SyncOccupants(update relation)", err)
					}
				}
				continue
			}
			occ := roomModel.RoomOccupant{
				RoomID:    req.RoomID,
				UserID:    e.UserID,
				Relation:  e.Relation,
				StartDate: &contract.StartDate,
				EndDate:   &contract.EndDate,
			}
			if err := tx.Create(&occ).Error; err != nil {
				return errs.Persist("rooms.SyncOccupants(add)", err)
			}
		}

		return tx.Where("room_id = ?", req.RoomID).Order("id").Find(&result).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

func equalRelation(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RemoveOccupant mengeluarkan satu penghuni dari kamar (soft delete).
func RemoveOccupant(db *gorm.DB, actor scope.Actor, occupantID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak mengelola penghuni")
	}
	var occ roomModel.RoomOccupant
	if err := db.First(&occ, occupantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Penghuni %d tidak ditemukan", occupantID)
		}
		return errs.Persist("rooms.RemoveOccupant(load)", err)
	}
	var room roomModel.Room
	if err := db.First(&room, occ.RoomID).Error; err != nil {
		return errs.Persist("rooms.RemoveOccupant(load room)", err)
	}
	if err := scope.CanAccessBranch(db, actor, room.BranchID); err != nil {
		return err
	}
	if err := db.Delete(&occ).Error; err != nil {
		return errs.Persist("rooms.RemoveOccupant", err)
	}
	return nil
}
