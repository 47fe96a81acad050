// internals/features/billing/dto/invoice_dto.go
package dto

import "time"

// Request pembuatan invoice satuan (amount dihitung server-side)
type CreateInvoiceRequest struct {
	ContractID uint   `json:"contract_id" validate:"required"`
	BranchID   uint   `json:"branch_id" validate:"required"`
	DueDate    string `json:"due_date" validate:"required"` // YYYY-MM-DD
	Status     string `json:"status" validate:"omitempty,oneof=pending paid overdue"`
}

// Request generate massal per cabang per bulan
type BulkInvoiceRequest struct {
	BranchID uint   `json:"branch_id" validate:"required"`
	Month    string `json:"month" validate:"required"`    // YYYY-MM
	DueDate  string `json:"due_date" validate:"required"` // YYYY-MM-DD
}

type UpdateInvoiceRequest struct {
	DueDate string `json:"due_date" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=pending paid overdue"`
}

type InvoiceResponse struct {
	ID           uint      `json:"id"`
	ContractID   uint      `json:"contract_id"`
	BranchID     uint      `json:"branch_id"`
	RoomID       uint      `json:"room_id,omitempty"`
	RoomName     string    `json:"room_name,omitempty"`
	Amount       float64   `json:"amount"`
	DueDate      string    `json:"due_date"`
	BillingMonth string    `json:"billing_month"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// InvoiceLine: satu baris rincian tagihan (sewa prorata atau layanan).
type InvoiceLine struct {
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Amount    float64 `json:"amount"`
}

type InvoiceDetailResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Lines   []InvoiceLine   `json:"lines"`
}

type BulkInvoiceResponse struct {
	Count    int               `json:"count"`
	Invoices []InvoiceResponse `json:"invoices"`
}
