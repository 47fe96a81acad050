// file: internals/features/users/model/user_model.go
package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"type:varchar(60);uniqueIndex;not null"`
	Name     string `json:"name" gorm:"type:varchar(120)"`
	Email    string `json:"email" gorm:"type:varchar(120)"`
	Phone    string `json:"phone" gorm:"type:varchar(30)"`
	Password string `json:"-" gorm:"type:varchar(100);not null"`
	Role     string `json:"role" gorm:"type:varchar(20);not null;default:customer"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`

	// Info pembayaran pemilik, ditampilkan di detail invoice
	QRCodeURL   string         `json:"qr_code_url" gorm:"type:text"`
	BankDetails datatypes.JSON `json:"bank_details,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (User) TableName() string { return "users" }

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// TokenBlacklist: access token yang sudah logout / dicabut.
type TokenBlacklist struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Token     string         `json:"token" gorm:"type:text;not null;index"`
	ExpiredAt time.Time      `json:"expired_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }
