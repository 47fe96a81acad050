// internals/features/billing/dto/payment_dto.go
package dto

import "time"

type UpsertPaymentRequest struct {
	ContractID  uint    `json:"contract_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	DueDate     string  `json:"due_date" validate:"required"` // YYYY-MM-DD
	PaymentDate string  `json:"payment_date" validate:"omitempty"`
	Status      string  `json:"status" validate:"required,oneof=pending paid"`
}

type PaymentResponse struct {
	ID          uint       `json:"id"`
	ContractID  uint       `json:"contract_id"`
	Amount      float64    `json:"amount"`
	DueDate     string     `json:"due_date"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Status      string     `json:"status"`
}

// Request checkout Midtrans Snap untuk sebuah invoice
type CheckoutRequest struct {
	InvoiceID uint `json:"invoice_id" validate:"required"`
}

type CheckoutResponse struct {
	OrderRef    string `json:"order_ref"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
}
