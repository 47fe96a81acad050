// internals/features/utilities/controller/utility_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	utilDTO "kosku_backend/internals/features/utilities/dto"
	utilService "kosku_backend/internals/features/utilities/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type UtilityController struct {
	DB *gorm.DB
}

func NewUtilityController(db *gorm.DB) *UtilityController {
	return &UtilityController{DB: db}
}

var validate = validator.New()

/* =========================
   Layanan (master data)
   ========================= */

// POST /api/services
func (ctrl *UtilityController) CreateService(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req utilDTO.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	svc, err := utilService.CreateService(ctrl.DB, actor, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Layanan berhasil dibuat", svc)
}

// GET /api/services
func (ctrl *UtilityController) ListServices(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	branchID := uint(c.QueryInt("branch_id", 0))

	services, total, err := utilService.ListServices(ctrl.DB, actor, branchID, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar layanan", services, helper.BuildPagination(total, p))
}

// PUT /api/services/:id
func (ctrl *UtilityController) UpdateService(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID layanan tidak valid")
	}

	var req utilDTO.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	svc, err := utilService.UpdateService(ctrl.DB, actor, uint(id), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Layanan berhasil diperbarui", svc)
}

// DELETE /api/services/:id
func (ctrl *UtilityController) DeleteService(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID layanan tidak valid")
	}

	if err := utilService.DeleteService(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Layanan berhasil dihapus", nil)
}

/* =========================
   Bacaan meter
   ========================= */

// POST /api/utility-usage
func (ctrl *UtilityController) RecordReading(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req utilDTO.RecordReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	usage, err := utilService.RecordReading(ctrl.DB, actor, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Angka meter berhasil dicatat", usage)
}

// POST /api/utility-usage/bulk
func (ctrl *UtilityController) BulkRecord(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req utilDTO.BulkReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	usages, err := utilService.BulkRecordReadings(ctrl.DB, actor, req.BranchID, req.Entries)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Input meter massal berhasil", fiber.Map{
		"count":   len(usages),
		"entries": usages,
	})
}

// GET /api/utility-usage
func (ctrl *UtilityController) ListUsage(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	roomID := uint(c.QueryInt("room_id", 0))
	month := c.Query("month")
	if month != "" && !helper.ValidMonth(month) {
		return helper.Error(c, fiber.StatusBadRequest, "Format bulan tidak valid (YYYY-MM)")
	}

	usages, total, err := utilService.ListUsage(ctrl.DB, actor, roomID, month, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar bacaan meter", usages, helper.BuildPagination(total, p))
}

// DELETE /api/utility-usage/:id
func (ctrl *UtilityController) DeleteUsage(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID bacaan tidak valid")
	}

	if err := utilService.DeleteUsage(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Bacaan meter berhasil dihapus", nil)
}

// GET /api/utility-usage/latest?room_id=&service_id=
func (ctrl *UtilityController) LatestReading(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	roomID := uint(c.QueryInt("room_id", 0))
	serviceID := uint(c.QueryInt("service_id", 0))

	latest, err := utilService.LatestReading(ctrl.DB, actor, roomID, serviceID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Bacaan meter terakhir", latest)
}

// GET /api/utility-usage/summary
func (ctrl *UtilityController) UsageSummary(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	roomID := uint(c.QueryInt("room_id", 0))
	contractID := uint(c.QueryInt("contract_id", 0))
	serviceID := uint(c.QueryInt("service_id", 0))
	month := c.Query("month")

	rows, err := utilService.UsageSummary(ctrl.DB, actor, roomID, contractID, serviceID, month)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Rekap pemakaian meter", rows)
}
