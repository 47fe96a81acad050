// internals/features/rooms/controller/room_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	roomDTO "kosku_backend/internals/features/rooms/dto"
	roomService "kosku_backend/internals/features/rooms/service"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/scope"
)

type RoomController struct {
	DB *gorm.DB
}

func NewRoomController(db *gorm.DB) *RoomController {
	return &RoomController{DB: db}
}

var validate = validator.New()

// POST /api/rooms
func (ctrl *RoomController) Create(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req roomDTO.CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	room, err := roomService.CreateRoom(ctrl.DB, actor, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Kamar berhasil dibuat", room)
}

// GET /api/rooms
func (ctrl *RoomController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	branchID := uint(c.QueryInt("branch_id", 0))
	status := c.Query("status")

	rooms, total, err := roomService.ListRooms(ctrl.DB, actor, branchID, status, p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithPagination(c, "Daftar kamar", rooms, helper.BuildPagination(total, p))
}

// GET /api/rooms/:id
func (ctrl *RoomController) GetByID(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kamar tidak valid")
	}

	room, err := roomService.GetRoom(ctrl.DB, actor, uint(id))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Detail kamar", room)
}

// PUT /api/rooms/:id
func (ctrl *RoomController) Update(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kamar tidak valid")
	}

	var req roomDTO.UpdateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	room, err := roomService.UpdateRoom(ctrl.DB, actor, uint(id), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Kamar berhasil diperbarui", room)
}

// DELETE /api/rooms/:id
func (ctrl *RoomController) Delete(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kamar tidak valid")
	}

	if err := roomService.DeleteRoom(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Kamar berhasil dihapus", nil)
}

// GET /api/rooms/:id/occupants
func (ctrl *RoomController) Occupants(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID kamar tidak valid")
	}

	occupants, err := roomService.ListOccupants(ctrl.DB, actor, uint(id))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Daftar penghuni", occupants)
}

// PUT /api/room-occupants
func (ctrl *RoomController) SyncOccupants(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req roomDTO.SyncOccupantsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	occupants, err := roomService.SyncOccupants(ctrl.DB, actor, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Penghuni kamar berhasil disinkronkan", occupants)
}

// DELETE /api/room-occupants/:id
func (ctrl *RoomController) RemoveOccupant(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID penghuni tidak valid")
	}

	if err := roomService.RemoveOccupant(ctrl.DB, actor, uint(id)); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Penghuni berhasil dikeluarkan", nil)
}
