// internals/features/utilities/dto/utility_dto.go
package dto

// Master layanan utilitas per cabang
type CreateServiceRequest struct {
	BranchID uint    `json:"branch_id" validate:"required"`
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Type     string  `json:"type" validate:"required,oneof=electricity water other"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Unit     string  `json:"unit" validate:"required,max=20"`
}

type UpdateServiceRequest struct {
	Name  string  `json:"name" validate:"omitempty,min=2,max=100"`
	Type  string  `json:"type" validate:"omitempty,oneof=electricity water other"`
	Price float64 `json:"price" validate:"omitempty,gt=0"`
	Unit  string  `json:"unit" validate:"omitempty,max=20"`
}

// Satu bacaan meter. contract_id tidak dikirim client, di-resolve server
// dari kontrak active kamar.
type RecordReadingRequest struct {
	RoomID     uint    `json:"room_id" validate:"required"`
	ServiceID  uint    `json:"service_id" validate:"required"`
	Month      string  `json:"month" validate:"required"` // YYYY-MM
	OldReading float64 `json:"old_reading" validate:"min=0"`
	NewReading float64 `json:"new_reading" validate:"min=0"`
	RecordDate string  `json:"record_date" validate:"required"` // YYYY-MM-DD
}

type BulkReadingRequest struct {
	BranchID uint                   `json:"branch_id" validate:"required"`
	Entries  []RecordReadingRequest `json:"entries" validate:"required,min=1,dive"`
}

// LatestReadingResponse: prefill angka lama di form input meter.
// new_reading 0 artinya kamar/layanan belum pernah dicatat.
type LatestReadingResponse struct {
	NewReading float64 `json:"new_reading"`
	RecordedAt string  `json:"recorded_at,omitempty"`
	ContractID uint    `json:"contract_id,omitempty"`
}

// UsageSummaryRow: agregat pemakaian per (bulan, layanan, kontrak).
type UsageSummaryRow struct {
	Month       string  `json:"month"`
	ServiceID   uint    `json:"service_id"`
	ContractID  uint    `json:"contract_id"`
	ServiceName string  `json:"service_name"`
	TotalUsage  float64 `json:"total_usage"`
	RecordCount int64   `json:"record_count"`
}

type UsageResponse struct {
	ID          uint    `json:"id"`
	RoomID      uint    `json:"room_id"`
	ContractID  uint    `json:"contract_id"`
	ServiceID   uint    `json:"service_id"`
	ServiceName string  `json:"service_name,omitempty"`
	Month       string  `json:"month"`
	OldReading  float64 `json:"old_reading"`
	NewReading  float64 `json:"new_reading"`
	UsageAmount float64 `json:"usage_amount"`
	RecordedAt  string  `json:"recorded_at"`
}
