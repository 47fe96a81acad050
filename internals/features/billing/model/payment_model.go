// file: internals/features/billing/model/payment_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Payment: dibuat pending bersamaan dengan invoice, jadi paid saat invoice dibayar.
// Dicocokkan ke invoice lewat (contract_id, due_date).
type Payment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ContractID  uint       `json:"contract_id" gorm:"not null;index"`
	Amount      float64    `json:"amount" gorm:"type:numeric(14,2);not null"`
	DueDate     time.Time  `json:"due_date" gorm:"type:date;not null"`
	PaymentDate *time.Time `json:"payment_date,omitempty" gorm:"type:date"`
	Status      string     `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	// Order ID Midtrans untuk pembayaran online (kosong jika manual).
	OrderRef string `json:"order_ref,omitempty" gorm:"type:varchar(64);index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Payment) TableName() string { return "payments" }
