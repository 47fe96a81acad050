// file: internals/features/branches/model/branch_model.go
package model

import (
	"time"

	"gorm.io/gorm"
)

type Branch struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"type:varchar(120);not null"`
	Address string `json:"address" gorm:"type:text"`
	OwnerID uint   `json:"owner_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Branch) TableName() string { return "branches" }

// EmployeeAssignment: penugasan pegawai ke cabang (dipakai scope akses).
type EmployeeAssignment struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	EmployeeID uint `json:"employee_id" gorm:"not null;index"`
	BranchID   uint `json:"branch_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (EmployeeAssignment) TableName() string { return "employee_assignments" }
