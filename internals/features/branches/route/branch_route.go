// internals/features/branches/route/branch_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/features/branches/controller"
)

func BranchRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBranchController(db)

	branches := api.Group("/branches")
	branches.Get("/", ctrl.List)
	branches.Post("/", ctrl.Create)
	branches.Put("/:id", ctrl.Update)
	branches.Post("/assign", ctrl.AssignEmployee)
}
