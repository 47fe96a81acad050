// internals/features/contracts/dto/contract_dto.go
package dto

import "time"

type CreateContractRequest struct {
	RoomID    uint    `json:"room_id" validate:"required"`
	UserID    uint    `json:"user_id" validate:"required"`
	BranchID  uint    `json:"branch_id" validate:"required"`
	StartDate string  `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate   string  `json:"end_date" validate:"required"`
	Deposit   float64 `json:"deposit" validate:"min=0"`
}

type UpdateContractRequest struct {
	RoomID    uint    `json:"room_id" validate:"required"`
	UserID    uint    `json:"user_id" validate:"required"`
	BranchID  uint    `json:"branch_id" validate:"required"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
	Status    string  `json:"status" validate:"omitempty,oneof=active ended cancelled"`
	Deposit   float64 `json:"deposit" validate:"min=0"`
}

// Pindah kamar: akhiri kontrak lama + tagihan penutup + kontrak baru, satu transaksi.
type ChangeRoomRequest struct {
	NewRoomID uint    `json:"new_room_id" validate:"required"`
	BranchID  uint    `json:"branch_id" validate:"required"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
	Deposit   float64 `json:"deposit" validate:"min=0"`
}

type ContractResponse struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	RoomName  string    `json:"room_name,omitempty"`
	UserID    uint      `json:"user_id"`
	BranchID  uint      `json:"branch_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	Deposit   float64   `json:"deposit"`
	CreatedAt time.Time `json:"created_at"`
}

// Hasil pengakhiran kontrak: invoice penutup (nil kalau kontrak non-active
// langsung dihapus tanpa tagihan).
type EndContractResponse struct {
	ContractID uint     `json:"contract_id"`
	Status     string   `json:"status"`
	InvoiceID  *uint    `json:"invoice_id,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
}

type ChangeRoomResponse struct {
	OldContractID uint    `json:"old_contract_id"`
	NewContractID uint    `json:"new_contract_id"`
	InvoiceID     uint    `json:"invoice_id"`
	Amount        float64 `json:"amount"`
}
