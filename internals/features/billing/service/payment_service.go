// internals/features/billing/service/payment_service.go
package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	"kosku_backend/internals/configs"
	"kosku_backend/internals/constants"
	billingModel "kosku_backend/internals/features/billing/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifService "kosku_backend/internals/features/notifications/service"
	userModel "kosku_backend/internals/features/users/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

var snapClient snap.Client

// InitMidtrans menyiapkan client Snap. Dipanggil sekali dari main.
func InitMidtrans() {
	env := midtrans.Sandbox
	if configs.GetEnv("MIDTRANS_ENV", "sandbox") == "production" {
		env = midtrans.Production
	}
	snapClient.New(configs.MidtransServerKey, env)
	log.Println("✅ Midtrans Snap client siap")
}

// upsertPaymentForInvoice menjaga satu payment per (contract_id, due_date).
// Dipanggil di dalam transaksi yang menandai invoice paid.
func upsertPaymentForInvoice(tx *gorm.DB, inv *billingModel.Invoice) error {
	today := time.Now()
	var p billingModel.Payment
	err := tx.Where("contract_id = ? AND due_date = ?", inv.ContractID, inv.DueDate).First(&p).Error
	switch {
	case err == nil:
		p.Amount = inv.Amount
		p.PaymentDate = &today
		p.Status = billingModel.PaymentPaid
		if err := tx.Save(&p).Error; err != nil {
			return errs.Persist("billing.upsertPaymentForInvoice(update)", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = billingModel.Payment{
			ContractID:  inv.ContractID,
			Amount:      inv.Amount,
			DueDate:     inv.DueDate,
			PaymentDate: &today,
			Status:      billingModel.PaymentPaid,
		}
		if err := tx.Create(&p).Error; err != nil {
			return errs.Persist("billing.upsertPaymentForInvoice(create)", err)
		}
	default:
		return errs.Persist("billing.upsertPaymentForInvoice(lookup)", err)
	}
	return nil
}

// UpsertPayment: pencatatan pembayaran manual (transfer/tunai) oleh staff.
func UpsertPayment(db *gorm.DB, actor scope.Actor, contractID uint, amount float64, dueDate time.Time, paymentDate *time.Time, status string) (*billingModel.Payment, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mencatat pembayaran")
	}
	if status != billingModel.PaymentPending && status != billingModel.PaymentPaid {
		return nil, errs.Validation("Status pembayaran tidak dikenal: %s", status)
	}

	var p billingModel.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var c contractModel.Contract
		if err := tx.First(&c, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Kontrak %d tidak ditemukan", contractID)
			}
			return errs.Persist("billing.UpsertPayment(load contract)", err)
		}
		if err := scope.CanAccessBranch(tx, actor, c.BranchID); err != nil {
			return err
		}

		err := tx.Where("contract_id = ? AND due_date = ?", contractID, dueDate).First(&p).Error
		switch {
		case err == nil:
			p.Amount = helper.Round2(amount)
			p.PaymentDate = paymentDate
			p.Status = status
			if err := tx.Save(&p).Error; err != nil {
				return errs.Persist("billing.UpsertPayment(update)", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = billingModel.Payment{
				ContractID:  contractID,
				Amount:      helper.Round2(amount),
				DueDate:     dueDate,
				PaymentDate: paymentDate,
				Status:      status,
			}
			if err := tx.Create(&p).Error; err != nil {
				return errs.Persist("billing.UpsertPayment(create)", err)
			}
		default:
			return errs.Persist("billing.UpsertPayment(lookup)", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifService.Notify(db, actor.UserID,
		fmt.Sprintf("Pembayaran #%d (kontrak %d, status %s) tercatat.", p.ID, p.ContractID, p.Status))
	return &p, nil
}

// ListPayments ber-scope: customer hanya pembayaran kontraknya sendiri.
func ListPayments(db *gorm.DB, actor scope.Actor, contractID uint, p helper.PageParams) ([]billingModel.Payment, int64, error) {
	q := db.Model(&billingModel.Payment{})

	if actor.Role == constants.RoleCustomer {
		q = q.Where("contract_id IN (SELECT id FROM contracts WHERE user_id = ? AND deleted_at IS NULL)", actor.UserID)
	} else if !actor.IsAdmin() {
		q = q.Where("contract_id IN (SELECT id FROM contracts c WHERE c.deleted_at IS NULL AND "+
			branchSubquery(actor)+")", actor.UserID)
	}
	if contractID != 0 {
		q = q.Where("contract_id = ?", contractID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("billing.ListPayments(count)", err)
	}

	var payments []billingModel.Payment
	if err := q.Order("due_date DESC, id DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&payments).Error; err != nil {
		return nil, 0, errs.Persist("billing.ListPayments", err)
	}
	return payments, total, nil
}

// DeletePayment: soft delete; pembayaran yang sudah paid tidak boleh dihapus.
func DeletePayment(db *gorm.DB, actor scope.Actor, paymentID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak menghapus pembayaran")
	}

	var p billingModel.Payment
	if err := db.First(&p, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Pembayaran %d tidak ditemukan", paymentID)
		}
		return errs.Persist("billing.DeletePayment(load)", err)
	}
	if p.Status == billingModel.PaymentPaid {
		return errs.Conflict("Pembayaran %d sudah paid, tidak bisa dihapus", paymentID)
	}

	var c contractModel.Contract
	if err := db.First(&c, p.ContractID).Error; err != nil {
		return errs.Persist("billing.DeletePayment(load contract)", err)
	}
	if err := scope.CanAccessBranch(db, actor, c.BranchID); err != nil {
		return err
	}

	if err := db.Delete(&p).Error; err != nil {
		return errs.Persist("billing.DeletePayment", err)
	}
	return nil
}

func branchSubquery(actor scope.Actor) string {
	if actor.Role == constants.RoleOwner {
		return "c.branch_id IN (SELECT id FROM branches WHERE owner_id = ? AND deleted_at IS NULL)"
	}
	return "c.branch_id IN (SELECT branch_id FROM employee_assignments WHERE employee_id = ? AND deleted_at IS NULL)"
}

/* =========================
   Midtrans Snap checkout
   ========================= */

// CreateCheckout membuat Snap token untuk sebuah invoice pending.
// Payment pending dibuat/di-reuse dengan order_ref unik per attempt.
func CreateCheckout(db *gorm.DB, actor scope.Actor, invoiceID uint) (orderRef, token, redirectURL string, err error) {
	var inv billingModel.Invoice
	if err := db.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", "", errs.NotFound("Invoice %d tidak ditemukan", invoiceID)
		}
		return "", "", "", errs.Persist("billing.CreateCheckout(load invoice)", err)
	}
	if inv.Status == billingModel.InvoicePaid {
		return "", "", "", errs.Conflict("Invoice %d sudah lunas", invoiceID)
	}

	var c contractModel.Contract
	if err := db.First(&c, inv.ContractID).Error; err != nil {
		return "", "", "", errs.Persist("billing.CreateCheckout(load contract)", err)
	}
	if actor.Role == constants.RoleCustomer && c.UserID != actor.UserID {
		return "", "", "", errs.Forbidden("Invoice ini bukan milik Anda")
	}

	var u userModel.User
	if err := db.First(&u, c.UserID).Error; err != nil {
		return "", "", "", errs.Persist("billing.CreateCheckout(load user)", err)
	}

	orderRef = fmt.Sprintf("INV-%d-%d", inv.ID, time.Now().Unix())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderRef,
			GrossAmt: int64(inv.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: u.Name,
			Email: u.Email,
			Phone: u.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    fmt.Sprintf("invoice-%d", inv.ID),
			Name:  fmt.Sprintf("Tagihan sewa %s", inv.BillingMonth),
			Price: int64(inv.Amount),
			Qty:   1,
		}},
	}

	resp, snapErr := snapClient.CreateTransaction(req)
	if snapErr != nil {
		return "", "", "", errs.Persist("billing.CreateCheckout(snap)", snapErr)
	}

	// Simpan payment pending pemegang order_ref untuk rekonsiliasi webhook.
	err = db.Transaction(func(tx *gorm.DB) error {
		var p billingModel.Payment
		lookupErr := tx.Where("contract_id = ? AND due_date = ?", inv.ContractID, inv.DueDate).First(&p).Error
		switch {
		case lookupErr == nil:
			p.OrderRef = orderRef
			p.Amount = inv.Amount
			return tx.Save(&p).Error
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			p = billingModel.Payment{
				ContractID: inv.ContractID,
				Amount:     inv.Amount,
				DueDate:    inv.DueDate,
				Status:     billingModel.PaymentPending,
				OrderRef:   orderRef,
			}
			return tx.Create(&p).Error
		default:
			return lookupErr
		}
	})
	if err != nil {
		return "", "", "", errs.Persist("billing.CreateCheckout(save payment)", err)
	}

	return orderRef, resp.Token, resp.RedirectURL, nil
}

// HandlePaymentNotification memproses webhook Midtrans: settlement/capture
// menandai payment + invoice paid dalam satu transaksi.
func HandlePaymentNotification(db *gorm.DB, orderRef, transactionStatus, fraudStatus string) error {
	settled := transactionStatus == "settlement" ||
		(transactionStatus == "capture" && fraudStatus == "accept")
	if !settled {
		log.Printf("[INFO] Webhook Midtrans order %s status %s diabaikan", orderRef, transactionStatus)
		return nil
	}

	var ownerUserID uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var p billingModel.Payment
		if err := tx.Where("order_ref = ?", orderRef).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Payment dengan order %s tidak ditemukan", orderRef)
			}
			return errs.Persist("billing.HandlePaymentNotification(lookup)", err)
		}

		now := time.Now()
		p.Status = billingModel.PaymentPaid
		p.PaymentDate = &now
		if err := tx.Save(&p).Error; err != nil {
			return errs.Persist("billing.HandlePaymentNotification(save payment)", err)
		}

		if err := tx.Model(&billingModel.Invoice{}).
			Where("contract_id = ? AND due_date = ?", p.ContractID, p.DueDate).
			Update("status", billingModel.InvoicePaid).Error; err != nil {
			return errs.Persist("billing.HandlePaymentNotification(save invoice)", err)
		}

		var c contractModel.Contract
		if err := tx.First(&c, p.ContractID).Error; err == nil {
			ownerUserID = c.UserID
		}
		return nil
	})
	if err != nil {
		return err
	}

	if ownerUserID != 0 {
		notifService.Notify(db, ownerUserID,
			fmt.Sprintf("Pembayaran order %s berhasil. Terima kasih!", orderRef))
	}
	return nil
}
