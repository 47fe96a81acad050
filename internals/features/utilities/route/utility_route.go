// internals/features/utilities/route/utility_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	"kosku_backend/internals/features/utilities/controller"
	"kosku_backend/internals/middlewares/auth"
)

func UtilityRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUtilityController(db)
	staffOnly := auth.OnlyRoles(constants.RoleErrorStaff("utilitas"), constants.StaffRoles...)

	services := api.Group("/services")
	services.Get("/", ctrl.ListServices)
	services.Post("/", staffOnly, ctrl.CreateService)
	services.Put("/:id", staffOnly, ctrl.UpdateService)
	services.Delete("/:id", staffOnly, ctrl.DeleteService)

	usage := api.Group("/utility-usage")
	usage.Get("/", ctrl.ListUsage)
	usage.Get("/latest", staffOnly, ctrl.LatestReading)
	usage.Get("/summary", staffOnly, ctrl.UsageSummary)
	usage.Post("/", staffOnly, ctrl.RecordReading)
	usage.Post("/bulk", staffOnly, ctrl.BulkRecord)
	usage.Delete("/:id", staffOnly, ctrl.DeleteUsage)
}
