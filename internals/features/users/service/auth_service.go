// internals/features/users/service/auth_service.go
package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"kosku_backend/internals/configs"
	"kosku_backend/internals/constants"
	userDTO "kosku_backend/internals/features/users/dto"
	userModel "kosku_backend/internals/features/users/model"
	"kosku_backend/internals/helpers/errs"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func issueToken(u *userModel.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Register membuat akun baru. Role default customer; role lain hanya
// bisa di-set lewat endpoint staff.
func Register(db *gorm.DB, req userDTO.RegisterRequest, allowRole bool) (*userModel.User, error) {
	role := constants.RoleCustomer
	if allowRole && req.Role != "" {
		role = req.Role
	}

	u := userModel.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     role,
		IsActive: true,
	}
	if err := u.SetPassword(req.Password); err != nil {
		return nil, errs.Persist("users.Register(hash)", err)
	}

	if err := db.Create(&u).Error; err != nil {
		return nil, errs.Conflict("Username atau email sudah terpakai")
	}
	return &u, nil
}

// Login memverifikasi kredensial dan menerbitkan pasangan token.
func Login(db *gorm.DB, req userDTO.LoginRequest) (*userDTO.LoginResponse, error) {
	var u userModel.User
	err := db.Where("username = ? OR email = ?", req.Identifier, req.Identifier).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Validation("Username atau password salah")
		}
		return nil, errs.Persist("users.Login(lookup)", err)
	}
	if !u.IsActive {
		return nil, errs.Forbidden("Akun Anda telah dinonaktifkan")
	}
	if !u.CheckPassword(req.Password) {
		return nil, errs.Validation("Username atau password salah")
	}

	access, err := issueToken(&u, configs.JWTSecret, accessTokenTTL)
	if err != nil {
		return nil, errs.Persist("users.Login(sign access)", err)
	}
	refresh, err := issueToken(&u, configs.JWTRefreshSecret, refreshTokenTTL)
	if err != nil {
		return nil, errs.Persist("users.Login(sign refresh)", err)
	}

	return &userDTO.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User: userDTO.UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
			Phone:    u.Phone,
			Role:     u.Role,
			IsActive: u.IsActive,
		},
	}, nil
}

// Logout memasukkan token ke blacklist sampai masa berlakunya habis.
func Logout(db *gorm.DB, token string) error {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(configs.JWTSecret), nil
	}); err != nil {
		return errs.Validation("Token tidak valid")
	}

	expiredAt := time.Now().Add(accessTokenTTL)
	if expFloat, ok := claims["exp"].(float64); ok {
		expiredAt = time.Unix(int64(expFloat), 0)
	}

	entry := userModel.TokenBlacklist{Token: token, ExpiredAt: expiredAt}
	if err := db.Create(&entry).Error; err != nil {
		return errs.Persist("users.Logout", err)
	}
	return nil
}

// GetProfile mengambil profil user; password tidak pernah ikut serialize.
func GetProfile(db *gorm.DB, userID uint) (*userModel.User, error) {
	var u userModel.User
	if err := db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("User %d tidak ditemukan", userID)
		}
		return nil, errs.Persist("users.GetProfile", err)
	}
	return &u, nil
}
