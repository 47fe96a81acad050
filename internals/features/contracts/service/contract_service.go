// internals/features/contracts/service/contract_service.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kosku_backend/internals/constants"
	billingService "kosku_backend/internals/features/billing/service"
	contractDTO "kosku_backend/internals/features/contracts/dto"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifService "kosku_backend/internals/features/notifications/service"
	roomModel "kosku_backend/internals/features/rooms/model"
	utilModel "kosku_backend/internals/features/utilities/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

// lockRoom mengambil baris kamar dengan FOR UPDATE. Dua kontrak yang rebutan
// kamar sama akan serialize di sini, bukan balapan di cek status.
// SQLite tidak kenal FOR UPDATE, jadi kunci hanya dipasang di Postgres.
func lockRoom(tx *gorm.DB, roomID uint) (*roomModel.Room, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var room roomModel.Room
	err := q.First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Kamar %d tidak ditemukan", roomID)
		}
		return nil, errs.Persist("contracts.lockRoom", err)
	}
	return &room, nil
}

// branchHasEssentialServices: cabang wajib punya layanan listrik DAN air
// sebelum boleh menerima kontrak baru.
func branchHasEssentialServices(tx *gorm.DB, branchID uint) (bool, error) {
	var types []string
	err := tx.Model(&utilModel.Service{}).
		Where("branch_id = ? AND type IN ?", branchID, []string{utilModel.ServiceElectricity, utilModel.ServiceWater}).
		Distinct().
		Pluck("type", &types).Error
	if err != nil {
		return false, errs.Persist("contracts.branchHasEssentialServices", err)
	}
	hasElectricity, hasWater := false, false
	for _, t := range types {
		if t == utilModel.ServiceElectricity {
			hasElectricity = true
		}
		if t == utilModel.ServiceWater {
			hasWater = true
		}
	}
	return hasElectricity && hasWater, nil
}

// CreateContract membuka kontrak active baru dan menandai kamar occupied.
func CreateContract(db *gorm.DB, actor scope.Actor, req contractDTO.CreateContractRequest) (*contractModel.Contract, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak membuat kontrak")
	}
	startDate, err := helper.ParseDate(req.StartDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal mulai tidak valid (YYYY-MM-DD)")
	}
	endDate, err := helper.ParseDate(req.EndDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal selesai tidak valid (YYYY-MM-DD)")
	}
	if !endDate.After(startDate) {
		return nil, errs.Validation("Tanggal selesai harus setelah tanggal mulai")
	}
	if err := scope.CanAccessBranch(db, actor, req.BranchID); err != nil {
		return nil, err
	}

	var contract *contractModel.Contract
	txErr := db.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, req.RoomID)
		if err != nil {
			return err
		}
		if room.BranchID != req.BranchID {
			return errs.Validation("Kamar %d bukan milik cabang %d", req.RoomID, req.BranchID)
		}
		if room.Status != roomModel.RoomAvailable {
			return errs.Conflict("Kamar %d tidak tersedia", req.RoomID)
		}

		// Double check: tidak boleh ada kontrak active lain yang masih berjalan.
		var n int64
		if err := tx.Model(&contractModel.Contract{}).
			Where("room_id = ? AND status = ? AND end_date > ?", req.RoomID, contractModel.ContractActive, time.Now()).
			Count(&n).Error; err != nil {
			return errs.Persist("contracts.CreateContract(active check)", err)
		}
		if n > 0 {
			return errs.Conflict("Kamar %d sudah punya kontrak active", req.RoomID)
		}

		ready, err := branchHasEssentialServices(tx, req.BranchID)
		if err != nil {
			return err
		}
		if !ready {
			return errs.Validation("Cabang harus punya layanan listrik dan air sebelum membuat kontrak")
		}

		contract = &contractModel.Contract{
			RoomID:    req.RoomID,
			UserID:    req.UserID,
			BranchID:  req.BranchID,
			StartDate: startDate,
			EndDate:   endDate,
			Status:    contractModel.ContractActive,
			Deposit:   helper.Round2(req.Deposit),
			CreatedBy: actor.UserID,
		}
		if err := tx.Create(contract).Error; err != nil {
			return errs.Persist("contracts.CreateContract", err)
		}

		if err := tx.Model(room).Update("status", roomModel.RoomOccupied).Error; err != nil {
			return errs.Persist("contracts.CreateContract(occupy room)", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	notifService.Notify(db, req.UserID, fmt.Sprintf("Kontrak sewa kamar #%d sudah dibuat.", contract.ID))
	return contract, nil
}

// UpdateContract mengganti data kontrak; kalau kamar berubah, kamar lama
// dibebaskan, kamar baru ditandai occupied, dan penghuni ikut dipindah.
func UpdateContract(db *gorm.DB, actor scope.Actor, contractID uint, req contractDTO.UpdateContractRequest) (*contractModel.Contract, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengubah kontrak")
	}
	startDate, err := helper.ParseDate(req.StartDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal mulai tidak valid (YYYY-MM-DD)")
	}
	endDate, err := helper.ParseDate(req.EndDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal selesai tidak valid (YYYY-MM-DD)")
	}

	var contract contractModel.Contract
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contract, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("contracts.UpdateContract(load)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, contract.BranchID); err != nil {
			return err
		}

		if req.RoomID != contract.RoomID {
			newRoom, err := lockRoom(tx, req.RoomID)
			if err != nil {
				return err
			}
			if newRoom.Status != roomModel.RoomAvailable {
				return errs.Conflict("Kamar %d tidak tersedia", req.RoomID)
			}

			if err := tx.Model(&roomModel.Room{}).
				Where("id = ?", contract.RoomID).
				Update("status", roomModel.RoomAvailable).Error; err != nil {
				return errs.Persist("contracts.UpdateContract(free old room)", err)
			}
			if err := tx.Model(newRoom).Update("status", roomModel.RoomOccupied).Error; err != nil {
				return errs.Persist("contracts.UpdateContract(occupy new room)", err)
			}

			// Pindahkan penghuni: hapus dari kamar lama, daftarkan di kamar baru.
			if err := tx.Where("room_id = ? AND user_id = ?", contract.RoomID, req.UserID).
				Delete(&roomModel.RoomOccupant{}).Error; err != nil {
				return errs.Persist("contracts.UpdateContract(remove occupant)", err)
			}
			occ := roomModel.RoomOccupant{RoomID: req.RoomID, UserID: req.UserID}
			if err := tx.Create(&occ).Error; err != nil {
				return errs.Persist("contracts.UpdateContract(add occupant)", err)
			}
		}

		status := req.Status
		if status == "" {
			status = contractModel.ContractActive
		}

		contract.RoomID = req.RoomID
		contract.UserID = req.UserID
		contract.BranchID = req.BranchID
		contract.StartDate = startDate
		contract.EndDate = endDate
		contract.Status = status
		contract.Deposit = helper.Round2(req.Deposit)
		if err := tx.Save(&contract).Error; err != nil {
			return errs.Persist("contracts.UpdateContract(save)", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	notifService.Notify(db, contract.UserID, fmt.Sprintf("Kontrak #%d sudah diperbarui.", contract.ID))
	return &contract, nil
}

// EndContract mengakhiri kontrak active: status ended, kamar dibebaskan,
// tagihan penutup prorata dibuat. Kontrak non-active tidak ditagih,
// langsung dihapus beserta jejak meternya.
func EndContract(db *gorm.DB, actor scope.Actor, contractID uint) (*contractDTO.EndContractResponse, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengakhiri kontrak")
	}

	now := time.Now()
	var resp contractDTO.EndContractResponse
	var tenantID uint
	var deposit float64

	txErr := db.Transaction(func(tx *gorm.DB) error {
		var contract contractModel.Contract
		if err := tx.Preload("Room").First(&contract, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("contracts.EndContract(load)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, contract.BranchID); err != nil {
			return err
		}
		tenantID = contract.UserID
		deposit = contract.Deposit

		// Kontrak yang sudah terminal tinggal dibereskan: soft delete kontrak
		// plus data meternya, tanpa tagihan penutup.
		if !contract.IsActive() {
			if err := cascadeDeleteContract(tx, &contract); err != nil {
				return err
			}
			resp = contractDTO.EndContractResponse{ContractID: contract.ID, Status: contractModel.ContractDeleted}
			return nil
		}

		if contract.Room == nil {
			return errs.NotFound("Kamar kontrak %d tidak ditemukan", contractID)
		}

		// Tagihan penutup dulu; tanpa data meter bulan ini proses batal total.
		inv, err := billingService.SettleContractBill(tx, &contract, contract.Room.Price, now)
		if err != nil {
			return err
		}

		if err := tx.Model(&contract).
			Updates(map[string]interface{}{"status": contractModel.ContractEnded, "end_date": now}).Error; err != nil {
			return errs.Persist("contracts.EndContract(update status)", err)
		}
		if err := tx.Model(&roomModel.Room{}).
			Where("id = ?", contract.RoomID).
			Update("status", roomModel.RoomAvailable).Error; err != nil {
			return errs.Persist("contracts.EndContract(free room)", err)
		}

		resp = contractDTO.EndContractResponse{
			ContractID: contract.ID,
			Status:     contractModel.ContractEnded,
			InvoiceID:  &inv.ID,
			Amount:     &inv.Amount,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if resp.Status == contractModel.ContractEnded {
		if deposit > 0 {
			notifService.Notify(db, tenantID, fmt.Sprintf("Deposit %.0f untuk kontrak #%d akan dikembalikan.", deposit, contractID))
		}
		notifService.Notify(db, tenantID, fmt.Sprintf("Kontrak #%d berakhir. Invoice penutup #%d sebesar %.0f sudah dibuat.", contractID, *resp.InvoiceID, *resp.Amount))
	} else {
		notifService.Notify(db, tenantID, fmt.Sprintf("Kontrak #%d sudah dihapus.", contractID))
	}
	return &resp, nil
}

// cascadeDeleteContract: soft delete kontrak + data meternya. Invoice dan
// payment yang sudah terbit dibiarkan, itu catatan keuangan.
func cascadeDeleteContract(tx *gorm.DB, contract *contractModel.Contract) error {
	if err := tx.Delete(contract).Error; err != nil {
		return errs.Persist("contracts.cascadeDeleteContract(contract)", err)
	}
	if err := tx.Where("room_id = ? AND contract_id = ?", contract.RoomID, contract.ID).
		Delete(&utilModel.UtilityUsage{}).Error; err != nil {
		return errs.Persist("contracts.cascadeDeleteContract(usage)", err)
	}
	return nil
}

// DeleteContract (admin/owner): tandai deleted, bebaskan kamar, keluarkan
// seluruh penghuni kamar.
func DeleteContract(db *gorm.DB, actor scope.Actor, contractID uint) error {
	if !constants.RoleIn(actor.Role, constants.OwnerAndAbove) {
		return errs.Forbidden("Tidak punya hak menghapus kontrak")
	}

	var tenantID uint
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var contract contractModel.Contract
		if err := tx.First(&contract, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("contracts.DeleteContract(load)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, contract.BranchID); err != nil {
			return err
		}
		tenantID = contract.UserID

		if err := tx.Model(&contract).Update("status", contractModel.ContractDeleted).Error; err != nil {
			return errs.Persist("contracts.DeleteContract(mark status)", err)
		}
		if err := tx.Delete(&contract).Error; err != nil {
			return errs.Persist("contracts.DeleteContract(soft delete)", err)
		}
		if err := tx.Model(&roomModel.Room{}).
			Where("id = ?", contract.RoomID).
			Update("status", roomModel.RoomAvailable).Error; err != nil {
			return errs.Persist("contracts.DeleteContract(free room)", err)
		}
		if err := tx.Where("room_id = ?", contract.RoomID).
			Delete(&roomModel.RoomOccupant{}).Error; err != nil {
			return errs.Persist("contracts.DeleteContract(occupants)", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	notifService.Notify(db, tenantID, fmt.Sprintf("Kontrak #%d sudah dihapus.", contractID))
	return nil
}

// ChangeRoom memindahkan penyewa ke kamar lain dalam cabang yang sama:
// kontrak lama diakhiri + ditagih penutup, kontrak baru dibuka, semuanya
// satu transaksi (gagal salah satu, batal semua).
func ChangeRoom(db *gorm.DB, actor scope.Actor, contractID uint, req contractDTO.ChangeRoomRequest) (*contractDTO.ChangeRoomResponse, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak memindahkan kamar")
	}
	startDate, err := helper.ParseDate(req.StartDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal mulai tidak valid (YYYY-MM-DD)")
	}
	endDate, err := helper.ParseDate(req.EndDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal selesai tidak valid (YYYY-MM-DD)")
	}

	now := time.Now()
	var resp contractDTO.ChangeRoomResponse
	var tenantID uint

	txErr := db.Transaction(func(tx *gorm.DB) error {
		var contract contractModel.Contract
		if err := tx.Preload("Room").First(&contract, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("contracts.ChangeRoom(load)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, contract.BranchID); err != nil {
			return err
		}
		if !contract.IsActive() {
			return errs.Validation("Hanya kontrak active yang bisa pindah kamar")
		}
		if contract.Room == nil {
			return errs.NotFound("Kamar kontrak %d tidak ditemukan", contractID)
		}
		tenantID = contract.UserID

		newRoom, err := lockRoom(tx, req.NewRoomID)
		if err != nil {
			return err
		}
		if newRoom.Status != roomModel.RoomAvailable {
			return errs.Conflict("Kamar baru %d tidak tersedia", req.NewRoomID)
		}
		if newRoom.BranchID != req.BranchID || req.BranchID != contract.BranchID {
			return errs.Validation("Kamar baru harus satu cabang dengan kontrak lama")
		}

		// 1) Tagihan penutup kontrak lama (gagal kalau data meter belum ada).
		inv, err := billingService.SettleContractBill(tx, &contract, contract.Room.Price, now)
		if err != nil {
			return err
		}

		// 2) Akhiri + soft delete kontrak lama.
		if err := tx.Model(&contract).
			Updates(map[string]interface{}{"status": contractModel.ContractEnded, "end_date": now}).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(end old)", err)
		}
		if err := tx.Delete(&contract).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(soft delete old)", err)
		}

		// 3) Bebaskan kamar lama, keluarkan penghuni, arsipkan data meter.
		if err := tx.Model(&roomModel.Room{}).
			Where("id = ?", contract.RoomID).
			Update("status", roomModel.RoomAvailable).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(free old room)", err)
		}
		if err := tx.Where("room_id = ?", contract.RoomID).
			Delete(&roomModel.RoomOccupant{}).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(old occupants)", err)
		}
		if err := tx.Where("room_id = ? AND contract_id = ?", contract.RoomID, contract.ID).
			Delete(&utilModel.UtilityUsage{}).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(old usage)", err)
		}

		// 4) Kontrak baru di kamar baru.
		newContract := contractModel.Contract{
			RoomID:    req.NewRoomID,
			UserID:    tenantID,
			BranchID:  req.BranchID,
			StartDate: startDate,
			EndDate:   endDate,
			Status:    contractModel.ContractActive,
			Deposit:   helper.Round2(pickDeposit(req.Deposit, contract.Deposit)),
			CreatedBy: actor.UserID,
		}
		if err := tx.Create(&newContract).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(create new)", err)
		}

		if err := tx.Model(newRoom).Update("status", roomModel.RoomOccupied).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(occupy new room)", err)
		}
		occ := roomModel.RoomOccupant{
			RoomID:    req.NewRoomID,
			UserID:    tenantID,
			StartDate: &startDate,
			EndDate:   &endDate,
		}
		if err := tx.Create(&occ).Error; err != nil {
			return errs.Persist("contracts.ChangeRoom(new occupant)", err)
		}

		resp = contractDTO.ChangeRoomResponse{
			OldContractID: contract.ID,
			NewContractID: newContract.ID,
			InvoiceID:     inv.ID,
			Amount:        inv.Amount,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	notifService.Notify(db, tenantID, fmt.Sprintf(
		"Kontrak #%d berakhir, kontrak baru #%d dibuat. Invoice penutup #%d sebesar %.0f.",
		resp.OldContractID, resp.NewContractID, resp.InvoiceID, resp.Amount))
	return &resp, nil
}

func pickDeposit(reqDeposit, oldDeposit float64) float64 {
	if reqDeposit > 0 {
		return reqDeposit
	}
	return oldDeposit
}

// ListContracts ber-scope cabang; customer hanya kontrak miliknya.
// search mencocokkan nama kamar (case-insensitive).
func ListContracts(db *gorm.DB, actor scope.Actor, branchID uint, status, search string, p helper.PageParams) ([]contractModel.Contract, int64, error) {
	q := db.Model(&contractModel.Contract{})
	if actor.Role == constants.RoleCustomer {
		q = q.Where("contracts.user_id = ?", actor.UserID)
	} else {
		q = scope.ApplyBranchScope(q, actor, "contracts.branch_id")
	}
	if branchID != 0 {
		q = q.Scopes(contractModel.ScopeContractByBranch(branchID))
	}
	if status != "" {
		q = q.Where("contracts.status = ?", status)
	}
	if search != "" {
		q = q.Where("contracts.room_id IN (?)",
			db.Model(&roomModel.Room{}).Select("rooms.id").
				Where("LOWER(rooms.name) LIKE ?", "%"+strings.ToLower(search)+"%"))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("contracts.ListContracts(count)", err)
	}

	var contracts []contractModel.Contract
	if err := q.Preload("Room").
		Order("contracts.start_date DESC, contracts.id DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&contracts).Error; err != nil {
		return nil, 0, errs.Persist("contracts.ListContracts", err)
	}
	return contracts, total, nil
}

func GetContract(db *gorm.DB, actor scope.Actor, contractID uint) (*contractModel.Contract, error) {
	var contract contractModel.Contract
	if err := db.Preload("Room").First(&contract, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Kontrak %d tidak ditemukan", contractID)
		}
		return nil, errs.Persist("contracts.GetContract", err)
	}
	if actor.Role == constants.RoleCustomer {
		if contract.UserID != actor.UserID {
			return nil, errs.NotFound("Kontrak %d tidak ditemukan", contractID)
		}
		return &contract, nil
	}
	if err := scope.CanAccessBranch(db, actor, contract.BranchID); err != nil {
		return nil, err
	}
	return &contract, nil
}
