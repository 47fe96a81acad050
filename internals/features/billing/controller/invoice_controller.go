// internals/features/billing/controller/invoice_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	billingDTO "kosku_backend/internals/features/billing/dto"
	billingService "kosku_backend/internals/features/billing/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

var validate = validator.New()

// POST /api/invoices
func (ctrl *InvoiceController) Create(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req billingDTO.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	dueDate, err := helper.ParseDate(req.DueDate)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format jatuh tempo tidak valid (YYYY-MM-DD)")
	}

	inv, err := billingService.GenerateInvoice(ctrl.DB, actor, req.ContractID, req.BranchID, dueDate, req.Status)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Invoice berhasil dibuat", inv)
}

// POST /api/invoices/bulk
func (ctrl *InvoiceController) BulkGenerate(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req billingDTO.BulkInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if !helper.ValidMonth(req.Month) {
		return helper.Error(c, fiber.StatusBadRequest, "Format bulan tidak valid (YYYY-MM)")
	}
	dueDate, err := helper.ParseDate(req.DueDate)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format jatuh tempo tidak valid (YYYY-MM-DD)")
	}

	invoices, err := billingService.BulkGenerateInvoices(ctrl.DB, actor, req.BranchID, req.Month, dueDate)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Generate invoice massal berhasil", fiber.Map{
		"count":    len(invoices),
		"invoices": invoices,
	})
}

// GET /api/invoices
func (ctrl *InvoiceController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	branchID := uint(c.QueryInt("branch_id", 0))
	month := c.Query("month")
	status := c.Query("status")

	invoices, total, err := billingService.ListInvoices(ctrl.DB, actor, branchID, month, status, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar invoice", invoices, helper.BuildPagination(total, p))
}

// GET /api/invoices/:id
func (ctrl *InvoiceController) GetByID(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	detail, err := billingService.GetInvoiceDetail(ctrl.DB, actor, uint(id))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Detail invoice", detail)
}

// PUT /api/invoices/:id
func (ctrl *InvoiceController) Update(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	var req billingDTO.UpdateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	dueDate, err := helper.ParseDate(req.DueDate)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format jatuh tempo tidak valid (YYYY-MM-DD)")
	}

	inv, err := billingService.UpdateInvoice(ctrl.DB, actor, uint(id), dueDate, req.Status)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Invoice berhasil diperbarui", inv)
}

// DELETE /api/invoices/:id
func (ctrl *InvoiceController) Delete(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	if err := billingService.DeleteInvoice(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Invoice berhasil dihapus", nil)
}
