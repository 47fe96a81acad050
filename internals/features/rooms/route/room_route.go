// internals/features/rooms/route/room_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	"kosku_backend/internals/features/rooms/controller"
	"kosku_backend/internals/middlewares/auth"
)

func RoomRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewRoomController(db)
	staffOnly := auth.OnlyRoles(constants.RoleErrorStaff("kamar"), constants.StaffRoles...)

	rooms := api.Group("/rooms")
	rooms.Get("/", ctrl.List)
	rooms.Get("/:id", ctrl.GetByID)
	rooms.Get("/:id/occupants", ctrl.Occupants)
	rooms.Post("/", staffOnly, ctrl.Create)
	rooms.Put("/:id", staffOnly, ctrl.Update)
	rooms.Delete("/:id", staffOnly, ctrl.Delete)

	occupants := api.Group("/room-occupants")
	occupants.Put("/", staffOnly, ctrl.SyncOccupants)
	occupants.Delete("/:id", staffOnly, ctrl.RemoveOccupant)
}
