// internals/features/branches/controller/branch_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	branchDTO "kosku_backend/internals/features/branches/dto"
	branchModel "kosku_backend/internals/features/branches/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

type BranchController struct {
	DB *gorm.DB
}

func NewBranchController(db *gorm.DB) *BranchController {
	return &BranchController{DB: db}
}

var validate = validator.New()

// POST /api/branches — owner membuat cabang miliknya sendiri.
func (ctrl *BranchController) Create(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if !constants.RoleIn(actor.Role, constants.OwnerAndAbove) {
		return helper.Error(c, fiber.StatusForbidden, "Hanya owner atau admin yang boleh membuat cabang")
	}

	var req branchDTO.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	branch := branchModel.Branch{
		Name:    req.Name,
		Address: req.Address,
		OwnerID: actor.UserID,
	}
	if err := ctrl.DB.Create(&branch).Error; err != nil {
		return helper.FromError(c, errs.Persist("branches.Create", err))
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Cabang berhasil dibuat", branch)
}

// GET /api/branches
func (ctrl *BranchController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	q := scope.ApplyBranchScope(ctrl.DB.Model(&branchModel.Branch{}), actor, "branches.id")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, errs.Persist("branches.List(count)", err))
	}

	var branches []branchModel.Branch
	if err := q.Order("branches.id").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&branches).Error; err != nil {
		return helper.FromError(c, errs.Persist("branches.List", err))
	}
	return helper.SuccessWithPagination(c, "Daftar cabang", branches, helper.BuildPagination(total, p))
}

// PUT /api/branches/:id
func (ctrl *BranchController) Update(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID cabang tidak valid")
	}

	var req branchDTO.UpdateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var branch branchModel.Branch
	if err := ctrl.DB.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Cabang tidak ditemukan")
		}
		return helper.FromError(c, errs.Persist("branches.Update(load)", err))
	}
	if !actor.IsAdmin() && branch.OwnerID != actor.UserID {
		return helper.Error(c, fiber.StatusForbidden, "Bukan cabang milik Anda")
	}

	if req.Name != "" {
		branch.Name = req.Name
	}
	if req.Address != "" {
		branch.Address = req.Address
	}
	if err := ctrl.DB.Save(&branch).Error; err != nil {
		return helper.FromError(c, errs.Persist("branches.Update", err))
	}
	return helper.Success(c, "Cabang berhasil diperbarui", branch)
}

// POST /api/branches/assign — tugaskan employee ke cabang.
func (ctrl *BranchController) AssignEmployee(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if !constants.RoleIn(actor.Role, constants.OwnerAndAbove) {
		return helper.Error(c, fiber.StatusForbidden, "Hanya owner atau admin yang boleh menugaskan employee")
	}

	var req branchDTO.AssignEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := scope.CanAccessBranch(ctrl.DB, actor, req.BranchID); err != nil {
		return helper.FromError(c, err)
	}

	assignment := branchModel.EmployeeAssignment{
		EmployeeID: req.EmployeeID,
		BranchID:   req.BranchID,
	}
	if err := ctrl.DB.Create(&assignment).Error; err != nil {
		return helper.FromError(c, errs.Persist("branches.AssignEmployee", err))
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Employee berhasil ditugaskan", assignment)
}
