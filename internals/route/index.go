// internals/route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	billingRoute "kosku_backend/internals/features/billing/route"
	branchRoute "kosku_backend/internals/features/branches/route"
	contractRoute "kosku_backend/internals/features/contracts/route"
	notificationRoute "kosku_backend/internals/features/notifications/route"
	roomRoute "kosku_backend/internals/features/rooms/route"
	userRoute "kosku_backend/internals/features/users/route"
	utilityRoute "kosku_backend/internals/features/utilities/route"
	"kosku_backend/internals/middlewares/auth"
)

// SetupRoutes memasang seluruh route aplikasi.
// /api publik: register, login, webhook pembayaran. Sisanya lewat AuthMiddleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	BaseRoutes(app)

	public := app.Group("/api")
	userRoute.PublicUserRoutes(public, db)
	billingRoute.PublicBillingRoutes(public, db)

	api := app.Group("/api", auth.AuthMiddleware(db))
	userRoute.UserRoutes(api, db)
	branchRoute.BranchRoutes(api, db)
	roomRoute.RoomRoutes(api, db)
	contractRoute.ContractRoutes(api, db)
	utilityRoute.UtilityRoutes(api, db)
	billingRoute.BillingRoutes(api, db)
	notificationRoute.NotificationRoutes(api, db)
}
