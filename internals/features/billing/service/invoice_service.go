// internals/features/billing/service/invoice_service.go
package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	billingDTO "kosku_backend/internals/features/billing/dto"
	billingModel "kosku_backend/internals/features/billing/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifService "kosku_backend/internals/features/notifications/service"
	roomModel "kosku_backend/internals/features/rooms/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

// billableContract: baris hasil join contracts x rooms yang dipakai mesin tagihan.
type billableContract struct {
	ContractID uint
	RoomID     uint
	RoomName   string
	RoomPrice  float64
	StartDate  time.Time
}

// loadUsageLines mengambil pemakaian utilitas bulan tagihan, join harga layanan.
// Window recorded_at [start_date, due_date] mengikuti perilaku penagihan lama.
func loadUsageLines(tx *gorm.DB, roomID, contractID uint, month string, startDate, dueDate time.Time) ([]UsageLine, error) {
	var lines []UsageLine
	err := tx.Table("utility_usage u").
		Select("u.usage_amount AS amount, s.price AS unit_price").
		Joins("JOIN services s ON s.id = u.service_id").
		Where("u.room_id = ? AND u.contract_id = ? AND u.month = ?", roomID, contractID, month).
		Where("u.recorded_at >= ? AND u.recorded_at <= ?", startDate, dueDate).
		Where("u.deleted_at IS NULL").
		Scan(&lines).Error
	if err != nil {
		return nil, errs.Persist("billing.loadUsageLines", err)
	}
	return lines, nil
}

// SettleContractBill membuat tagihan penutup sebuah kontrak: hitung amount
// dari data meter bulan berjalan, upsert invoice (contract, bulan), dan
// siapkan payment pending pasangannya. Dipanggil di dalam transaksi
// pengakhiran kontrak / pindah kamar.
func SettleContractBill(tx *gorm.DB, c *contractModel.Contract, roomPrice float64, dueDate time.Time) (*billingModel.Invoice, error) {
	month := helper.MonthOf(dueDate)
	lines, err := loadUsageLines(tx, c.RoomID, c.ID, month, c.StartDate, dueDate)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.MissingUtilityData(c.ID, c.RoomID, month)
	}

	amount := ComputeInvoiceAmount(roomPrice, c.StartDate, dueDate, lines)

	var inv billingModel.Invoice
	err = tx.Where("contract_id = ? AND billing_month = ?", c.ID, month).First(&inv).Error
	switch {
	case err == nil:
		inv.Amount = amount
		inv.DueDate = dueDate
		inv.Status = billingModel.InvoicePending
		if err := tx.Save(&inv).Error; err != nil {
			return nil, errs.Persist("billing.SettleContractBill(update invoice)", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		inv = billingModel.Invoice{
			ContractID:   c.ID,
			BranchID:     c.BranchID,
			Amount:       amount,
			DueDate:      dueDate,
			BillingMonth: month,
			Status:       billingModel.InvoicePending,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return nil, errs.Persist("billing.SettleContractBill(create invoice)", err)
		}
	default:
		return nil, errs.Persist("billing.SettleContractBill(lookup invoice)", err)
	}

	var p billingModel.Payment
	err = tx.Where("contract_id = ? AND due_date = ?", c.ID, dueDate).First(&p).Error
	switch {
	case err == nil:
		p.Amount = amount
		if err := tx.Save(&p).Error; err != nil {
			return nil, errs.Persist("billing.SettleContractBill(update payment)", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = billingModel.Payment{
			ContractID: c.ID,
			Amount:     amount,
			DueDate:    dueDate,
			Status:     billingModel.PaymentPending,
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, errs.Persist("billing.SettleContractBill(create payment)", err)
		}
	default:
		return nil, errs.Persist("billing.SettleContractBill(lookup payment)", err)
	}

	return &inv, nil
}

// GenerateInvoice membuat satu invoice untuk kontrak tertentu. Amount selalu
// dihitung server-side; kontrak tanpa data meter bulan berjalan ditolak.
func GenerateInvoice(db *gorm.DB, actor scope.Actor, contractID, branchID uint, dueDate time.Time, status string) (*billingModel.Invoice, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak membuat invoice")
	}
	if status == "" {
		status = billingModel.InvoicePending
	}
	if !billingModel.ValidInvoiceStatus(status) {
		return nil, errs.Validation("Status invoice tidak dikenal: %s", status)
	}
	if err := scope.CanAccessBranch(db, actor, branchID); err != nil {
		return nil, err
	}

	var inv *billingModel.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var c contractModel.Contract
		if err := tx.Preload("Room").First(&c, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("billing.GenerateInvoice(load contract)", err)
		}
		if c.Room == nil {
			return errs.NotFound("Kamar kontrak %d tidak ditemukan", contractID)
		}

		month := helper.MonthOf(dueDate)
		lines, err := loadUsageLines(tx, c.RoomID, c.ID, month, c.StartDate, dueDate)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errs.MissingUtilityData(c.ID, c.RoomID, month)
		}

		amount := ComputeInvoiceAmount(c.Room.Price, c.StartDate, dueDate, lines)

		inv = &billingModel.Invoice{
			ContractID:   c.ID,
			BranchID:     branchID,
			Amount:       amount,
			DueDate:      dueDate,
			BillingMonth: month,
			Status:       status,
		}
		if err := tx.Create(inv).Error; err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return errs.Conflict("Invoice kontrak %d untuk bulan %s sudah ada", c.ID, month)
			}
			return errs.Persist("billing.GenerateInvoice(create)", err)
		}

		if status == billingModel.InvoicePaid {
			return upsertPaymentForInvoice(tx, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifService.Notify(db, actor.UserID,
		fmt.Sprintf("Invoice #%d dibuat (total %.0f, status %s) untuk kontrak %d.", inv.ID, inv.Amount, inv.Status, inv.ContractID))
	return inv, nil
}

// BulkGenerateInvoices men-generate/refresh invoice seluruh kontrak billable
// sebuah cabang untuk satu bulan. Kontrak tanpa data meter dilewati diam-diam;
// invoice bulan yang sama di-update in place (idempotent).
func BulkGenerateInvoices(db *gorm.DB, actor scope.Actor, branchID uint, month string, dueDate time.Time) ([]billingModel.Invoice, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak membuat invoice")
	}
	if err := scope.CanAccessBranch(db, actor, branchID); err != nil {
		return nil, err
	}

	var created []billingModel.Invoice
	var notes []string

	err := db.Transaction(func(tx *gorm.DB) error {
		// Kontrak billable: kamar occupied di cabang, bulan tagihan masuk rentang kontrak,
		// status bukan deleted, dan punya data meter bulan itu.
		var rows []billableContract
		err := tx.Table("contracts c").
			Select("c.id AS contract_id, c.room_id, r.name AS room_name, r.price AS room_price, c.start_date").
			Joins("JOIN rooms r ON r.id = c.room_id").
			Where("r.branch_id = ? AND r.status = ?", branchID, roomModel.RoomOccupied).
			Where("to_char(c.start_date, 'YYYY-MM') <= ? AND to_char(c.end_date, 'YYYY-MM') >= ?", month, month).
			Where("c.status IN ?", []string{contractModel.ContractActive, contractModel.ContractEnded, contractModel.ContractCancelled}).
			Where("c.deleted_at IS NULL").
			Where(`EXISTS (
				SELECT 1 FROM utility_usage u
				WHERE u.room_id = c.room_id AND u.contract_id = c.id
				  AND u.month = ? AND u.deleted_at IS NULL
				  AND u.recorded_at >= c.start_date AND u.recorded_at <= ?
			)`, month, dueDate).
			Scan(&rows).Error
		if err != nil {
			return errs.Persist("billing.BulkGenerateInvoices(list contracts)", err)
		}

		for _, row := range rows {
			lines, err := loadUsageLines(tx, row.RoomID, row.ContractID, month, row.StartDate, dueDate)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				continue
			}

			amount := ComputeInvoiceAmount(row.RoomPrice, row.StartDate, dueDate, lines)

			var existing billingModel.Invoice
			err = tx.Where("contract_id = ? AND billing_month = ?", row.ContractID, month).First(&existing).Error
			switch {
			case err == nil:
				existing.Amount = amount
				existing.DueDate = dueDate
				existing.Status = billingModel.InvoicePending
				if err := tx.Save(&existing).Error; err != nil {
					return errs.Persist("billing.BulkGenerateInvoices(update)", err)
				}
				created = append(created, existing)
			case errors.Is(err, gorm.ErrRecordNotFound):
				inv := billingModel.Invoice{
					ContractID:   row.ContractID,
					BranchID:     branchID,
					Amount:       amount,
					DueDate:      dueDate,
					BillingMonth: month,
					Status:       billingModel.InvoicePending,
				}
				if err := tx.Create(&inv).Error; err != nil {
					return errs.Persist("billing.BulkGenerateInvoices(create)", err)
				}
				created = append(created, inv)
			default:
				return errs.Persist("billing.BulkGenerateInvoices(lookup)", err)
			}

			notes = append(notes, fmt.Sprintf("Invoice kamar %s periode %s dibuat/diperbarui.", row.RoomName, month))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range notes {
		notifService.Notify(db, actor.UserID, n)
	}
	return created, nil
}

// UpdateInvoice menghitung ulang amount dari data meter terkini, lalu kalau
// status baru paid juga meng-upsert payment (contract_id, due_date).
func UpdateInvoice(db *gorm.DB, actor scope.Actor, invoiceID uint, dueDate time.Time, status string) (*billingModel.Invoice, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengubah invoice")
	}
	if !billingModel.ValidInvoiceStatus(status) {
		return nil, errs.Validation("Status invoice tidak dikenal: %s", status)
	}

	var inv billingModel.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Invoice %d tidak ditemukan", invoiceID)
			}
			return errs.Persist("billing.UpdateInvoice(load)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, inv.BranchID); err != nil {
			return err
		}

		var c contractModel.Contract
		if err := tx.Preload("Room").First(&c, inv.ContractID).Error; err != nil {
			return errs.Persist("billing.UpdateInvoice(load contract)", err)
		}

		month := helper.MonthOf(dueDate)
		lines, err := loadUsageLines(tx, c.RoomID, c.ID, month, c.StartDate, dueDate)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errs.MissingUtilityData(c.ID, c.RoomID, month)
		}

		inv.Amount = ComputeInvoiceAmount(c.Room.Price, c.StartDate, dueDate, lines)
		inv.DueDate = dueDate
		inv.BillingMonth = month
		inv.Status = status
		if err := tx.Save(&inv).Error; err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return errs.Conflict("Invoice kontrak %d untuk bulan %s sudah ada", c.ID, month)
			}
			return errs.Persist("billing.UpdateInvoice(save)", err)
		}

		if status == billingModel.InvoicePaid {
			return upsertPaymentForInvoice(tx, &inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifService.Notify(db, actor.UserID,
		fmt.Sprintf("Invoice #%d diperbarui (total %.0f, status %s).", inv.ID, inv.Amount, inv.Status))
	return &inv, nil
}

// DeleteInvoice: soft delete, slot (contract, bulan) bisa dipakai lagi.
func DeleteInvoice(db *gorm.DB, actor scope.Actor, invoiceID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak menghapus invoice")
	}
	var inv billingModel.Invoice
	if err := db.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Invoice %d tidak ditemukan", invoiceID)
		}
		return errs.Persist("billing.DeleteInvoice(load)", err)
	}
	if err := scope.CanAccessBranch(db, actor, inv.BranchID); err != nil {
		return err
	}
	if err := db.Delete(&inv).Error; err != nil {
		return errs.Persist("billing.DeleteInvoice", err)
	}
	return nil
}

// ListInvoices: list ber-scope cabang; customer hanya melihat invoice kontraknya sendiri.
func ListInvoices(db *gorm.DB, actor scope.Actor, branchID uint, month string, status string, p helper.PageParams) ([]billingModel.Invoice, int64, error) {
	q := db.Model(&billingModel.Invoice{})

	if actor.Role == constants.RoleCustomer {
		q = q.Where("contract_id IN (SELECT id FROM contracts WHERE user_id = ? AND deleted_at IS NULL)", actor.UserID)
	} else {
		q = scope.ApplyBranchScope(q, actor, "invoices.branch_id")
	}
	if branchID != 0 {
		q = q.Where("invoices.branch_id = ?", branchID)
	}
	if month != "" {
		q = q.Where("invoices.billing_month = ?", month)
	}
	if status != "" {
		q = q.Where("invoices.status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("billing.ListInvoices(count)", err)
	}

	var invoices []billingModel.Invoice
	if err := q.Order("invoices.due_date DESC, invoices.id DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&invoices).Error; err != nil {
		return nil, 0, errs.Persist("billing.ListInvoices", err)
	}
	return invoices, total, nil
}

func GetInvoice(db *gorm.DB, actor scope.Actor, invoiceID uint) (*billingModel.Invoice, error) {
	var inv billingModel.Invoice
	if err := db.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Invoice %d tidak ditemukan", invoiceID)
		}
		return nil, errs.Persist("billing.GetInvoice", err)
	}
	if actor.Role == constants.RoleCustomer {
		var n int64
		if err := db.Model(&contractModel.Contract{}).
			Where("id = ? AND user_id = ?", inv.ContractID, actor.UserID).
			Count(&n).Error; err != nil {
			return nil, errs.Persist("billing.GetInvoice(owner check)", err)
		}
		if n == 0 {
			return nil, errs.NotFound("Invoice %d tidak ditemukan", invoiceID)
		}
		return &inv, nil
	}
	if err := scope.CanAccessBranch(db, actor, inv.BranchID); err != nil {
		return nil, err
	}
	return &inv, nil
}

// usageDetailLine: baris pemakaian + nama layanan untuk rincian invoice.
type usageDetailLine struct {
	ServiceName string
	UsageAmount float64
	UnitPrice   float64
}

// GetInvoiceDetail mengembalikan invoice beserta rinciannya: sewa kamar
// prorata + satu baris per layanan, direkonstruksi dari data meter bulan
// tagihan (sumber yang sama dengan perhitungan amount).
func GetInvoiceDetail(db *gorm.DB, actor scope.Actor, invoiceID uint) (*billingDTO.InvoiceDetailResponse, error) {
	inv, err := GetInvoice(db, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	var c contractModel.Contract
	if err := db.Preload("Room").First(&c, inv.ContractID).Error; err != nil {
		return nil, errs.Persist("billing.GetInvoiceDetail(load contract)", err)
	}

	detail := &billingDTO.InvoiceDetailResponse{
		Invoice: billingDTO.InvoiceResponse{
			ID:           inv.ID,
			ContractID:   inv.ContractID,
			BranchID:     inv.BranchID,
			RoomID:       c.RoomID,
			Amount:       inv.Amount,
			DueDate:      inv.DueDate.Format(helper.DateLayout),
			BillingMonth: inv.BillingMonth,
			Status:       inv.Status,
			CreatedAt:    inv.CreatedAt,
		},
	}

	if c.Room != nil {
		detail.Invoice.RoomName = c.Room.Name
		usageDays, daysInMonth := ProrateDays(c.StartDate, inv.DueDate)
		ratio := float64(usageDays) / float64(daysInMonth)
		detail.Lines = append(detail.Lines, billingDTO.InvoiceLine{
			Label:  fmt.Sprintf("Sewa kamar %s (%d/%d hari)", c.Room.Name, usageDays, daysInMonth),
			Amount: math.Round(c.Room.Price * ratio),
		})
	}

	var usageLines []usageDetailLine
	err = db.Table("utility_usage u").
		Select("s.name AS service_name, u.usage_amount, s.price AS unit_price").
		Joins("JOIN services s ON s.id = u.service_id").
		Where("u.room_id = ? AND u.contract_id = ? AND u.month = ?", c.RoomID, c.ID, inv.BillingMonth).
		Where("u.recorded_at >= ? AND u.recorded_at <= ?", c.StartDate, inv.DueDate).
		Where("u.deleted_at IS NULL").
		Scan(&usageLines).Error
	if err != nil {
		return nil, errs.Persist("billing.GetInvoiceDetail(usage)", err)
	}
	for _, l := range usageLines {
		detail.Lines = append(detail.Lines, billingDTO.InvoiceLine{
			Label:     l.ServiceName,
			Quantity:  l.UsageAmount,
			UnitPrice: l.UnitPrice,
			Amount:    l.UsageAmount * l.UnitPrice,
		})
	}

	return detail, nil
}
