// file: internals/features/billing/model/invoice_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice: maksimal satu invoice non-deleted per (contract, bulan kalender due_date).
// Amount selalu hasil mesin prorata: sewa kamar prorata + seluruh biaya utilitas
// bulan tagihan.
type Invoice struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ContractID uint      `json:"contract_id" gorm:"not null;index:idx_invoice_period,unique,where:deleted_at IS NULL"`
	BranchID   uint      `json:"branch_id" gorm:"not null;index"`
	Amount     float64   `json:"amount" gorm:"type:numeric(14,2);not null"`
	DueDate    time.Time `json:"due_date" gorm:"type:date;not null"`
	// Bulan tagihan "YYYY-MM", kolom guard untuk unique index (contract, month).
	BillingMonth string `json:"billing_month" gorm:"type:char(7);not null;index:idx_invoice_period,unique,where:deleted_at IS NULL"`
	Status       string `json:"status" gorm:"type:varchar(20);not null;default:pending"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Invoice) TableName() string { return "invoices" }

func ValidInvoiceStatus(s string) bool {
	return s == InvoicePending || s == InvoicePaid || s == InvoiceOverdue
}
