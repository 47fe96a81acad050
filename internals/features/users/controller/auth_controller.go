// internals/features/users/controller/auth_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userDTO "kosku_backend/internals/features/users/dto"
	userService "kosku_backend/internals/features/users/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

var validate = validator.New()

// POST /api/auth/register — pendaftaran publik, selalu role customer.
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req userDTO.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	u, err := userService.Register(ctrl.DB, req, false)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Registrasi berhasil", userDTO.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		IsActive: u.IsActive,
	})
}

// POST /api/users — staff membuat akun dengan role tertentu.
func (ctrl *AuthController) CreateUser(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if !actor.IsStaff() {
		return helper.Error(c, fiber.StatusForbidden, "Tidak punya hak membuat user")
	}

	var req userDTO.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	u, err := userService.Register(ctrl.DB, req, true)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "User berhasil dibuat", userDTO.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		IsActive: u.IsActive,
	})
}

// POST /api/auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req userDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	resp, err := userService.Login(ctrl.DB, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Login berhasil", resp)
}

// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		token = c.Cookies("access_token")
	}
	if token == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Token tidak ditemukan")
	}

	if err := userService.Logout(ctrl.DB, token); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Logout berhasil", nil)
}

// GET /api/auth/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	u, err := userService.GetProfile(ctrl.DB, actor.UserID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Profil user", u)
}
