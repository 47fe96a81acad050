// file: internals/features/contracts/model/contract_model.go
package model

import (
	"time"

	"gorm.io/gorm"

	roomModel "kosku_backend/internals/features/rooms/model"
)

const (
	ContractActive    = "active"
	ContractEnded     = "ended"
	ContractCancelled = "cancelled"
	ContractDeleted   = "deleted"
)

// Contract: satu penyewa, satu kamar, satu rentang tanggal.
// Invariant: maksimal satu kontrak active per kamar; branch_id kontrak = branch_id kamar.
// active adalah satu-satunya state non-terminal; tidak pernah kembali ke active.
type Contract struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoomID    uint      `json:"room_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	BranchID  uint      `json:"branch_id" gorm:"not null;index"`
	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:active"`
	Deposit   float64   `json:"deposit" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedBy uint      `json:"created_by"`

	Room *roomModel.Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Contract) TableName() string { return "contracts" }

func (c *Contract) IsActive() bool { return c.Status == ContractActive }

func ScopeContractByBranch(branchID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("contracts.branch_id = ?", branchID)
	}
}

func ScopeContractActive(db *gorm.DB) *gorm.DB {
	return db.Where("contracts.status = ?", ContractActive)
}
