// file: internals/features/utilities/model/usage_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

// UtilityUsage: satu bacaan meter per (room, contract, service, month).
// Invariants:
//   - new_reading >= old_reading, keduanya non-negatif
//   - usage_amount = new_reading - old_reading (toleransi 0.01)
//   - old_reading >= new_reading terakhir dari bulan sebelumnya (kontinuitas meter)
//   - maksimal satu record non-deleted per key; tulisan berikutnya update in place
type UtilityUsage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RoomID      uint      `json:"room_id" gorm:"not null;index:idx_usage_key,unique,where:deleted_at IS NULL"`
	ContractID  uint      `json:"contract_id" gorm:"not null;index:idx_usage_key,unique,where:deleted_at IS NULL"`
	ServiceID   uint      `json:"service_id" gorm:"not null;index:idx_usage_key,unique,where:deleted_at IS NULL"`
	Month       string    `json:"month" gorm:"type:char(7);not null;index:idx_usage_key,unique,where:deleted_at IS NULL"`
	OldReading  float64   `json:"old_reading" gorm:"type:numeric(14,2);not null"`
	NewReading  float64   `json:"new_reading" gorm:"type:numeric(14,2);not null"`
	UsageAmount float64   `json:"usage_amount" gorm:"type:numeric(14,2);not null"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"type:date;not null"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (UtilityUsage) TableName() string { return "utility_usage" }

func ScopeUsageByMonth(month string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("utility_usage.month = ?", month)
	}
}
