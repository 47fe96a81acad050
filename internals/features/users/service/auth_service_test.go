package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kosku_backend/internals/configs"
	"kosku_backend/internals/constants"
	userDTO "kosku_backend/internals/features/users/dto"
	userModel "kosku_backend/internals/features/users/model"
	"kosku_backend/internals/helpers/errs"
)

func setupTestDB(t *testing.T) *gorm.DB {
	configs.JWTSecret = "test-secret"
	configs.JWTRefreshSecret = "test-refresh-secret"

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userModel.User{}, &userModel.TokenBlacklist{}))
	return db
}

func registerRequest() userDTO.RegisterRequest {
	return userDTO.RegisterRequest{
		Username: "budi",
		Name:     "Budi Santoso",
		Email:    "budi@example.com",
		Password: "rahasia-banget",
	}
}

func TestRegister_DefaultsToCustomer(t *testing.T) {
	db := setupTestDB(t)

	req := registerRequest()
	req.Role = constants.RoleAdmin
	u, err := Register(db, req, false)
	require.NoError(t, err)

	// Registrasi publik tidak boleh memilih role sendiri.
	assert.Equal(t, constants.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "rahasia-banget", u.Password)
}

func TestRegister_StaffCanAssignRole(t *testing.T) {
	db := setupTestDB(t)

	req := registerRequest()
	req.Role = constants.RoleEmployee
	u, err := Register(db, req, true)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleEmployee, u.Role)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)

	_, err := Register(db, registerRequest(), false)
	require.NoError(t, err)

	_, err = Register(db, registerRequest(), false)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	db := setupTestDB(t)
	_, err := Register(db, registerRequest(), false)
	require.NoError(t, err)

	resp, err := Login(db, userDTO.LoginRequest{Identifier: "budi", Password: "rahasia-banget"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	resp, err = Login(db, userDTO.LoginRequest{Identifier: "budi@example.com", Password: "rahasia-banget"})
	require.NoError(t, err)
	assert.Equal(t, "budi", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	_, err := Register(db, registerRequest(), false)
	require.NoError(t, err)

	_, err = Login(db, userDTO.LoginRequest{Identifier: "budi", Password: "salah"})
	require.Error(t, err)
}

func TestLogin_InactiveAccount(t *testing.T) {
	db := setupTestDB(t)
	u, err := Register(db, registerRequest(), false)
	require.NoError(t, err)
	require.NoError(t, db.Model(u).Update("is_active", false).Error)

	_, err = Login(db, userDTO.LoginRequest{Identifier: "budi", Password: "rahasia-banget"})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindPermissionDenied, kind)
}

func TestLogout_BlacklistsToken(t *testing.T) {
	db := setupTestDB(t)
	_, err := Register(db, registerRequest(), false)
	require.NoError(t, err)

	resp, err := Login(db, userDTO.LoginRequest{Identifier: "budi", Password: "rahasia-banget"})
	require.NoError(t, err)

	require.NoError(t, Logout(db, resp.AccessToken))

	var count int64
	require.NoError(t, db.Model(&userModel.TokenBlacklist{}).
		Where("token = ?", resp.AccessToken).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
