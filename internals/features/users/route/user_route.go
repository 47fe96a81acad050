// internals/features/users/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	"kosku_backend/internals/features/users/controller"
	"kosku_backend/internals/middlewares"
	"kosku_backend/internals/middlewares/auth"
)

// PublicUserRoutes: register & login, tanpa auth.
func PublicUserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", ctrl.Register)
	authGroup.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
}

// UserRoutes: endpoint yang butuh token.
func UserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	authGroup := api.Group("/auth")
	authGroup.Post("/logout", ctrl.Logout)
	authGroup.Get("/me", ctrl.Me)

	api.Post("/users",
		auth.OnlyRoles(constants.RoleErrorStaff("user"), constants.StaffRoles...),
		ctrl.CreateUser)
}
