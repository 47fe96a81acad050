// internals/features/billing/controller/payment_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	billingDTO "kosku_backend/internals/features/billing/dto"
	billingService "kosku_backend/internals/features/billing/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// POST /api/payments
func (ctrl *PaymentController) Upsert(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req billingDTO.UpsertPaymentRequest
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

	var paymentDate *time.Time
	if req.PaymentDate != "" {
		pd, err := helper.ParseDate(req.PaymentDate)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Format tanggal bayar tidak valid (YYYY-MM-DD)")
		}
		paymentDate = &pd
	}

	p, err := billingService.UpsertPayment(ctrl.DB, actor, req.ContractID, req.Amount, dueDate, paymentDate, req.Status)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Pembayaran berhasil dicatat", p)
}

// GET /api/payments
func (ctrl *PaymentController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	contractID := uint(c.QueryInt("contract_id", 0))

	payments, total, err := billingService.ListPayments(ctrl.DB, actor, contractID, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar pembayaran", payments, helper.BuildPagination(total, p))
}

// POST /api/payments/checkout
func (ctrl *PaymentController) Checkout(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req billingDTO.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	orderRef, token, redirectURL, err := billingService.CreateCheckout(ctrl.DB, actor, req.InvoiceID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Checkout berhasil dibuat", billingDTO.CheckoutResponse{
		OrderRef:    orderRef,
		SnapToken:   token,
		RedirectURL: redirectURL,
	})
}

// POST /api/payments/notification — webhook Midtrans, tanpa auth.
func (ctrl *PaymentController) Notification(c *fiber.Ctx) error {
	var payload struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload webhook tidak valid")
	}
	if payload.OrderID == "" {
		return helper.Error(c, fiber.StatusBadRequest, "order_id wajib diisi")
	}

	if err := billingService.HandlePaymentNotification(ctrl.DB, payload.OrderID, payload.TransactionStatus, payload.FraudStatus); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Notifikasi diproses", nil)
}

// DELETE /api/payments/:id
func (ctrl *PaymentController) Delete(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID pembayaran tidak valid")
	}

	if err := billingService.DeletePayment(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Pembayaran berhasil dihapus", nil)
}
