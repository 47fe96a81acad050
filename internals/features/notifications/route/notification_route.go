// internals/features/notifications/route/notification_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/features/notifications/controller"
)

func NotificationRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewNotificationController(db)

	notifications := api.Group("/notifications")
	notifications.Get("/", ctrl.List)
	notifications.Patch("/:id/read", ctrl.MarkRead)
}
