// internals/features/notifications/controller/notification_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notifModel "kosku_backend/internals/features/notifications/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/notifications — notifikasi milik caller sendiri.
func (ctrl *NotificationController) List(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	p := helper.ParsePage(c)
	q := ctrl.DB.Model(&notifModel.Notification{}).Where("user_id = ?", actor.UserID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, errs.Persist("notifications.List(count)", err))
	}

	var notifications []notifModel.Notification
	if err := q.Order("id DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&notifications).Error; err != nil {
		return helper.FromError(c, errs.Persist("notifications.List", err))
	}
	return helper.SuccessWithPagination(c, "Daftar notifikasi", notifications, helper.BuildPagination(total, p))
}

// PATCH /api/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	actor, err := scope.FromLocals(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID notifikasi tidak valid")
	}

	var n notifModel.Notification
	if err := ctrl.DB.Where("id = ? AND user_id = ?", id, actor.UserID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Notifikasi tidak ditemukan")
		}
		return helper.FromError(c, errs.Persist("notifications.MarkRead(load)", err))
	}

	if err := ctrl.DB.Model(&n).Update("is_read", true).Error; err != nil {
		return helper.FromError(c, errs.Persist("notifications.MarkRead", err))
	}
	return helper.Success(c, "Notifikasi ditandai sudah dibaca", n)
}
