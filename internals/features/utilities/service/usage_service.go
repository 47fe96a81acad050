// internals/features/utilities/service/usage_service.go
package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	contractModel "kosku_backend/internals/features/contracts/model"
	notifService "kosku_backend/internals/features/notifications/service"
	roomModel "kosku_backend/internals/features/rooms/model"
	utilDTO "kosku_backend/internals/features/utilities/dto"
	utilModel "kosku_backend/internals/features/utilities/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

// resolveActiveContract mencari kontrak active terbaru sebuah kamar.
// Bacaan meter selalu menempel ke kontrak active, bukan dikirim client.
func resolveActiveContract(tx *gorm.DB, roomID uint) (*contractModel.Contract, error) {
	var c contractModel.Contract
	err := tx.Where("room_id = ? AND status = ?", roomID, contractModel.ContractActive).
		Order("start_date DESC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Validation("Tidak ada kontrak active untuk kamar %d", roomID)
		}
		return nil, errs.Persist("utilities.resolveActiveContract", err)
	}
	return &c, nil
}

// checkMeterContinuity memastikan old_reading >= new_reading terakhir dari
// bulan-bulan sebelumnya (meter tidak boleh mundur antar bulan).
func checkMeterContinuity(tx *gorm.DB, roomID, serviceID uint, month string, oldReading float64) error {
	var prev struct{ NewReading float64 }
	err := tx.Model(&utilModel.UtilityUsage{}).
		Select("new_reading").
		Where("room_id = ? AND service_id = ? AND month < ?", roomID, serviceID, month).
		Order("recorded_at DESC").
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errs.Persist("utilities.checkMeterContinuity", err)
	}
	if oldReading < prev.NewReading {
		return errs.Validation("Angka lama (%.2f) harus >= angka baru terakhir (%.2f)", oldReading, prev.NewReading)
	}
	return nil
}

func validateReadingNumbers(oldReading, newReading float64) error {
	usage := newReading - oldReading
	if usage < 0 || oldReading < 0 || newReading < 0 {
		return errs.Validation("Nilai bacaan tidak boleh negatif")
	}
	if newReading < oldReading {
		return errs.Validation("Angka baru harus >= angka lama")
	}
	if math.Abs(usage-(newReading-oldReading)) > 0.01 {
		return errs.Validation("usage_amount harus = angka baru - angka lama")
	}
	return nil
}

// RecordReading meng-upsert satu bacaan meter pada key
// (room, contract, service, month). Tulisan kedua di key yang sama
// update in place, bukan duplikat.
func RecordReading(db *gorm.DB, actor scope.Actor, req utilDTO.RecordReadingRequest) (*utilModel.UtilityUsage, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak input angka meter")
	}
	if !helper.ValidMonth(req.Month) {
		return nil, errs.Validation("Format bulan tidak valid (YYYY-MM)")
	}
	recordDate, err := helper.ParseDate(req.RecordDate)
	if err != nil {
		return nil, errs.Validation("Format tanggal pencatatan tidak valid (YYYY-MM-DD)")
	}
	if err := validateReadingNumbers(req.OldReading, req.NewReading); err != nil {
		return nil, err
	}

	var usage *utilModel.UtilityUsage
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var room roomModel.Room
		if err := tx.First(&room, req.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kamar %d tidak ditemukan", req.RoomID)
			}
			return errs.Persist("utilities.RecordReading(load room)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, room.BranchID); err != nil {
			return err
		}

		var svc utilModel.Service
		if err := tx.First(&svc, req.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Layanan %d tidak ditemukan", req.ServiceID)
			}
			return errs.Persist("utilities.RecordReading(load service)", err)
		}
		if !utilModel.ValidServiceType(svc.Type) {
			return errs.Validation("Layanan harus bertipe electricity, water, atau other")
		}

		contract, err := resolveActiveContract(tx, req.RoomID)
		if err != nil {
			return err
		}

		// Kamar, kontrak, dan layanan wajib satu cabang.
		if room.BranchID != contract.BranchID || room.BranchID != svc.BranchID {
			return errs.Validation("Kamar, kontrak, dan layanan harus berada di cabang yang sama")
		}

		if err := checkMeterContinuity(tx, req.RoomID, req.ServiceID, req.Month, req.OldReading); err != nil {
			return err
		}

		usage, err = upsertUsage(tx, req, contract.ID, recordDate)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	notifService.Notify(db, actor.UserID,
		fmt.Sprintf("Angka meter kamar %d bulan %s tercatat (lama %.2f, baru %.2f, pakai %.2f).",
			usage.RoomID, usage.Month, usage.OldReading, usage.NewReading, usage.UsageAmount))
	return usage, nil
}

func upsertUsage(tx *gorm.DB, req utilDTO.RecordReadingRequest, contractID uint, recordDate time.Time) (*utilModel.UtilityUsage, error) {
	usageAmount := helper.Round2(req.NewReading - req.OldReading)

	var existing utilModel.UtilityUsage
	err := tx.Where("room_id = ? AND contract_id = ? AND service_id = ? AND month = ?",
		req.RoomID, contractID, req.ServiceID, req.Month).
		First(&existing).Error
	switch {
	case err == nil:
		existing.OldReading = req.OldReading
		existing.NewReading = req.NewReading
		existing.UsageAmount = usageAmount
		existing.RecordedAt = recordDate
		if err := tx.Save(&existing).Error; err != nil {
			return nil, errs.Persist("utilities.upsertUsage(update)", err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		u := utilModel.UtilityUsage{
			RoomID:      req.RoomID,
			ContractID:  contractID,
			ServiceID:   req.ServiceID,
			Month:       req.Month,
			OldReading:  req.OldReading,
			NewReading:  req.NewReading,
			UsageAmount: usageAmount,
			RecordedAt:  recordDate,
		}
		if err := tx.Create(&u).Error; err != nil {
			return nil, errs.Persist("utilities.upsertUsage(create)", err)
		}
		return &u, nil
	default:
		return nil, errs.Persist("utilities.upsertUsage(lookup)", err)
	}
}

// BulkRecordReadings: input massal satu cabang, all-or-nothing.
// Seluruh entry divalidasi dulu; satu saja gagal maka tidak ada yang ditulis,
// dan semua error dikembalikan sekaligus dengan nomor entry 1-based.
func BulkRecordReadings(db *gorm.DB, actor scope.Actor, branchID uint, entries []utilDTO.RecordReadingRequest) ([]utilModel.UtilityUsage, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak input angka meter")
	}
	if err := scope.CanAccessBranch(db, actor, branchID); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errs.Validation("Daftar entry kosong")
	}

	var results []utilModel.UtilityUsage
	txErr := db.Transaction(func(tx *gorm.DB) error {
		type validEntry struct {
			req        utilDTO.RecordReadingRequest
			contractID uint
			recordDate time.Time
		}
		var details []string
		var valids []validEntry

		for i, e := range entries {
			n := i + 1
			if !helper.ValidMonth(e.Month) {
				details = append(details, fmt.Sprintf("Entry %d: format bulan tidak valid (YYYY-MM)", n))
				continue
			}
			recordDate, err := helper.ParseDate(e.RecordDate)
			if err != nil {
				details = append(details, fmt.Sprintf("Entry %d: format tanggal pencatatan tidak valid (YYYY-MM-DD)", n))
				continue
			}
			if err := validateReadingNumbers(e.OldReading, e.NewReading); err != nil {
				details = append(details, fmt.Sprintf("Entry %d: %s", n, err.Error()))
				continue
			}

			var room roomModel.Room
			if err := tx.First(&room, e.RoomID).Error; err != nil {
				details = append(details, fmt.Sprintf("Entry %d: kamar %d tidak ditemukan", n, e.RoomID))
				continue
			}
			if room.BranchID != branchID {
				details = append(details, fmt.Sprintf("Entry %d: kamar %d bukan milik cabang %d", n, e.RoomID, branchID))
				continue
			}

			var svc utilModel.Service
			if err := tx.First(&svc, e.ServiceID).Error; err != nil {
				details = append(details, fmt.Sprintf("Entry %d: layanan %d tidak ditemukan", n, e.ServiceID))
				continue
			}
			if svc.BranchID != branchID {
				details = append(details, fmt.Sprintf("Entry %d: layanan %d bukan milik cabang %d", n, e.ServiceID, branchID))
				continue
			}

			contract, err := resolveActiveContract(tx, e.RoomID)
			if err != nil {
				details = append(details, fmt.Sprintf("Entry %d: tidak ada kontrak active untuk kamar %d", n, e.RoomID))
				continue
			}
			if contract.BranchID != branchID {
				details = append(details, fmt.Sprintf("Entry %d: kontrak %d bukan milik cabang %d", n, contract.ID, branchID))
				continue
			}

			if err := checkMeterContinuity(tx, e.RoomID, e.ServiceID, e.Month, e.OldReading); err != nil {
				details = append(details, fmt.Sprintf("Entry %d: %s", n, err.Error()))
				continue
			}

			valids = append(valids, validEntry{req: e, contractID: contract.ID, recordDate: recordDate})
		}

		if len(details) > 0 {
			return errs.Bulk(details)
		}

		for _, v := range valids {
			u, err := upsertUsage(tx, v.req, v.contractID, v.recordDate)
			if err != nil {
				return err
			}
			results = append(results, *u)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	notifService.Notify(db, actor.UserID,
		fmt.Sprintf("Input meter massal cabang %d: %d entry tersimpan.", branchID, len(results)))
	return results, nil
}

// ListUsage mengembalikan bacaan meter ber-scope cabang (lewat kamar).
func ListUsage(db *gorm.DB, actor scope.Actor, roomID uint, month string, p helper.PageParams) ([]utilModel.UtilityUsage, int64, error) {
	q := db.Model(&utilModel.UtilityUsage{}).
		Where("utility_usage.room_id IN (?)",
			scope.ApplyBranchScope(db.Model(&roomModel.Room{}).Select("rooms.id"), actor, "rooms.branch_id"))

	if roomID != 0 {
		q = q.Where("utility_usage.room_id = ?", roomID)
	}
	if month != "" {
		q = q.Scopes(utilModel.ScopeUsageByMonth(month))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("utilities.ListUsage(count)", err)
	}

	var usages []utilModel.UtilityUsage
	if err := q.Preload("Service").
		Order("utility_usage.month DESC, utility_usage.id DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&usages).Error; err != nil {
		return nil, 0, errs.Persist("utilities.ListUsage", err)
	}
	return usages, total, nil
}

// DeleteUsage: soft delete satu bacaan meter.
func DeleteUsage(db *gorm.DB, actor scope.Actor, usageID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak menghapus data meter")
	}
	var u utilModel.UtilityUsage
	if err := db.First(&u, usageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Data meter %d tidak ditemukan", usageID)
		}
		return errs.Persist("utilities.DeleteUsage(load)", err)
	}

	var room roomModel.Room
	if err := db.First(&room, u.RoomID).Error; err != nil {
		return errs.Persist("utilities.DeleteUsage(load room)", err)
	}
	if err := scope.CanAccessBranch(db, actor, room.BranchID); err != nil {
		return err
	}

	if err := db.Delete(&u).Error; err != nil {
		return errs.Persist("utilities.DeleteUsage", err)
	}
	return nil
}

// LatestReading: bacaan terakhir sebuah (kamar, layanan), untuk prefill
// angka lama di form input. Belum pernah dicatat berarti new_reading 0.
func LatestReading(db *gorm.DB, actor scope.Actor, roomID, serviceID uint) (*utilDTO.LatestReadingResponse, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak melihat data meter")
	}
	if roomID == 0 || serviceID == 0 {
		return nil, errs.Validation("room_id dan service_id wajib diisi")
	}

	var u utilModel.UtilityUsage
	err := db.Where("room_id = ? AND service_id = ?", roomID, serviceID).
		Where("room_id IN (?)",
			scope.ApplyBranchScope(db.Model(&roomModel.Room{}).Select("rooms.id"), actor, "rooms.branch_id")).
		Order("recorded_at DESC").
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utilDTO.LatestReadingResponse{NewReading: 0}, nil
		}
		return nil, errs.Persist("utilities.LatestReading", err)
	}

	return &utilDTO.LatestReadingResponse{
		NewReading: u.NewReading,
		RecordedAt: u.RecordedAt.Format(helper.DateLayout),
		ContractID: u.ContractID,
	}, nil
}

// UsageSummary: agregat pemakaian per (bulan, layanan, kontrak) dengan filter
// opsional kamar/kontrak/layanan/bulan, ber-scope cabang.
func UsageSummary(db *gorm.DB, actor scope.Actor, roomID, contractID, serviceID uint, month string) ([]utilDTO.UsageSummaryRow, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak melihat rekap meter")
	}
	if month != "" && !helper.ValidMonth(month) {
		return nil, errs.Validation("Format bulan tidak valid (YYYY-MM)")
	}

	q := db.Model(&utilModel.UtilityUsage{}).
		Select("utility_usage.month, utility_usage.service_id, utility_usage.contract_id, "+
			"services.name AS service_name, SUM(utility_usage.usage_amount) AS total_usage, "+
			"COUNT(utility_usage.id) AS record_count").
		Joins("JOIN services ON services.id = utility_usage.service_id").
		Where("utility_usage.room_id IN (?)",
			scope.ApplyBranchScope(db.Model(&roomModel.Room{}).Select("rooms.id"), actor, "rooms.branch_id")).
		Group("utility_usage.month, utility_usage.service_id, utility_usage.contract_id, services.name")

	if roomID != 0 {
		q = q.Where("utility_usage.room_id = ?", roomID)
	}
	if contractID != 0 {
		q = q.Where("utility_usage.contract_id = ?", contractID)
	}
	if serviceID != 0 {
		q = q.Where("utility_usage.service_id = ?", serviceID)
	}
	if month != "" {
		q = q.Where("utility_usage.month = ?", month)
	}

	var rows []utilDTO.UsageSummaryRow
	if err := q.Order("utility_usage.month DESC").Scan(&rows).Error; err != nil {
		return nil, errs.Persist("utilities.UsageSummary", err)
	}
	return rows, nil
}
