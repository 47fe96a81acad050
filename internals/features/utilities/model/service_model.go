// file: internals/features/utilities/model/service_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ServiceElectricity = "electricity"
	ServiceWater       = "water"
	ServiceOther       = "other"
)

// Service: tarif layanan per cabang (listrik/air/lainnya).
// Cabang wajib punya minimal satu electricity dan satu water sebelum kontrak dibuat.
type Service struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	BranchID uint    `json:"branch_id" gorm:"not null;index"`
	Name     string  `json:"name" gorm:"type:varchar(60);not null"`
	Type     string  `json:"type" gorm:"type:varchar(20);not null"`
	Price    float64 `json:"price" gorm:"type:numeric(14,2);not null"`
	Unit     string  `json:"unit" gorm:"type:varchar(20)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Service) TableName() string { return "services" }

func ValidServiceType(t string) bool {
	return t == ServiceElectricity || t == ServiceWater || t == ServiceOther
}
