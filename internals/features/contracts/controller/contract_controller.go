// internals/features/contracts/controller/contract_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	contractDTO "kosku_backend/internals/features/contracts/dto"
	contractService "kosku_backend/internals/features/contracts/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type ContractController struct {
	DB *gorm.DB
}

func NewContractController(db *gorm.DB) *ContractController {
	return &ContractController{DB: db}
}

var validate = validator.New()

// POST /api/contracts
func (ctrl *ContractController) Create(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req contractDTO.CreateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	contract, err := contractService.CreateContract(ctrl.DB, actor, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Kontrak berhasil dibuat", contract)
}

// GET /api/contracts
func (ctrl *ContractController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	branchID := uint(c.QueryInt("branch_id", 0))
	status := c.Query("status")
	search := c.Query("search")

	contracts, total, err := contractService.ListContracts(ctrl.DB, actor, branchID, status, search, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar kontrak", contracts, helper.BuildPagination(total, p))
}

// GET /api/contracts/:id
func (ctrl *ContractController) GetByID(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kontrak tidak valid")
	}

	contract, err := contractService.GetContract(ctrl.DB, actor, uint(id))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Detail kontrak", contract)
}

// PUT /api/contracts/:id
func (ctrl *ContractController) Update(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kontrak tidak valid")
	}

	var req contractDTO.UpdateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	contract, err := contractService.UpdateContract(ctrl.DB, actor, uint(id), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Kontrak berhasil diperbarui", contract)
}

// POST /api/contracts/:id/end
func (ctrl *ContractController) End(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kontrak tidak valid")
	}

	resp, err := contractService.EndContract(ctrl.DB, actor, uint(id))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Kontrak berhasil diakhiri", resp)
}

// POST /api/contracts/:id/change-room
func (ctrl *ContractController) ChangeRoom(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kontrak tidak valid")
	}

	var req contractDTO.ChangeRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	resp, err := contractService.ChangeRoom(ctrl.DB, actor, uint(id), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Pindah kamar berhasil", resp)
}

// DELETE /api/contracts/:id
func (ctrl *ContractController) Delete(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kontrak tidak valid")
	}

	if err := contractService.DeleteContract(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Kontrak berhasil dihapus", nil)
}
