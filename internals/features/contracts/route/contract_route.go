// internals/features/contracts/route/contract_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	"kosku_backend/internals/features/contracts/controller"
	"kosku_backend/internals/middlewares/auth"
)

func ContractRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewContractController(db)

	contracts := api.Group("/contracts")
	contracts.Get("/", ctrl.List)
	contracts.Get("/:id", ctrl.GetByID)

	staffOnly := auth.OnlyRoles(constants.RoleErrorStaff("kontrak"), constants.StaffRoles...)
	contracts.Post("/", staffOnly, ctrl.Create)
	contracts.Put("/:id", staffOnly, ctrl.Update)
	contracts.Post("/:id/end", staffOnly, ctrl.End)
	contracts.Post("/:id/change-room", staffOnly, ctrl.ChangeRoom)
	contracts.Delete("/:id", auth.OnlyRoles(constants.RoleErrorOwner("kontrak"), constants.OwnerAndAbove...), ctrl.Delete)
}
