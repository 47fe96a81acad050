// file: internals/features/rooms/model/room_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// Room: status hanya dimutasi oleh state machine kontrak + occupancy tracker.
// Invariant: occupied ⇔ tepat satu kontrak active (non-deleted) untuk kamar ini.
type Room struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	BranchID   uint    `json:"branch_id" gorm:"not null;index"`
	RoomTypeID *uint   `json:"room_type_id,omitempty"`
	Name       string  `json:"name" gorm:"type:varchar(60);not null"`
	Price      float64 `json:"price" gorm:"type:numeric(14,2);not null"`
	Status     string  `json:"status" gorm:"type:varchar(20);not null;default:available"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Room) TableName() string { return "rooms" }

func ScopeRoomByBranch(branchID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_id = ?", branchID)
	}
}

// RoomOccupant: penghuni kamar di bawah kontrak berjalan.
// Validity window selalu subset window kontrak active kamar tsb.
type RoomOccupant struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	RoomID    uint       `json:"room_id" gorm:"not null;index"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Relation  *string    `json:"relation,omitempty" gorm:"type:varchar(60)"`
	StartDate *time.Time `json:"start_date,omitempty" gorm:"type:date"`
	EndDate   *time.Time `json:"end_date,omitempty" gorm:"type:date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (RoomOccupant) TableName() string { return "room_occupants" }

// RoomType: referensi tipe kamar per cabang (CRUD tipis).
type RoomType struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	BranchID    uint   `json:"branch_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"type:varchar(60);not null"`
	Description string `json:"description" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (RoomType) TableName() string { return "room_types" }
