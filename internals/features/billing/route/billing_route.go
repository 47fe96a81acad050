// internals/features/billing/route/billing_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	"kosku_backend/internals/features/billing/controller"
	"kosku_backend/internals/middlewares/auth"
)

func BillingRoutes(api fiber.Router, db *gorm.DB) {
	invoiceCtrl := controller.NewInvoiceController(db)
	paymentCtrl := controller.NewPaymentController(db)
	staffOnly := auth.OnlyRoles(constants.RoleErrorStaff("tagihan"), constants.StaffRoles...)

	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceCtrl.List)
	invoices.Get("/:id", invoiceCtrl.GetByID)
	invoices.Post("/", staffOnly, invoiceCtrl.Create)
	invoices.Post("/bulk", staffOnly, invoiceCtrl.BulkGenerate)
	invoices.Put("/:id", staffOnly, invoiceCtrl.Update)
	invoices.Delete("/:id", staffOnly, invoiceCtrl.Delete)

	payments := api.Group("/payments")
	payments.Get("/", paymentCtrl.List)
	payments.Post("/", staffOnly, paymentCtrl.Upsert)
	payments.Post("/checkout", paymentCtrl.Checkout)
	payments.Delete("/:id", staffOnly, paymentCtrl.Delete)
}

// PublicBillingRoutes: endpoint webhook tanpa auth middleware.
func PublicBillingRoutes(api fiber.Router, db *gorm.DB) {
	paymentCtrl := controller.NewPaymentController(db)
	api.Post("/payments/notification", paymentCtrl.Notification)
}
