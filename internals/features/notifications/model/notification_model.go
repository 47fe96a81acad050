// file: internals/features/notifications/model/notification_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Message string `json:"message" gorm:"type:text;not null"`
	IsRead  bool   `json:"is_read" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
