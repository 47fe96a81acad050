// internals/features/rooms/dto/room_dto.go
package dto

type CreateRoomRequest struct {
	BranchID   uint    `json:"branch_id" validate:"required"`
	RoomTypeID *uint   `json:"room_type_id"`
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	Price      float64 `json:"price" validate:"required,gt=0"`
}

type UpdateRoomRequest struct {
	RoomTypeID *uint   `json:"room_type_id"`
	Name       string  `json:"name" validate:"omitempty,min=1,max=100"`
	Price      float64 `json:"price" validate:"omitempty,gt=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
}

// Satu penghuni dalam payload sinkronisasi
type OccupantEntry struct {
	UserID   uint    `json:"user_id" validate:"required"`
	Relation *string `json:"relation"`
}

// SyncOccupantsRequest mengganti daftar penghuni sebuah kamar secara utuh:
// yang hilang dari daftar dikeluarkan, yang baru ditambahkan.
type SyncOccupantsRequest struct {
	RoomID uint            `json:"room_id" validate:"required"`
	Data   []OccupantEntry `json:"data" validate:"required,dive"`
}

type RoomResponse struct {
	ID       uint    `json:"id"`
	BranchID uint    `json:"branch_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
}
