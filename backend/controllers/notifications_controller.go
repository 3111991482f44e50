package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/notifications"
	"lms/backend/utils"
)

type NotificationsController struct {
	Cfg    *config.Config
	Notify *notifications.Service
}

func NewNotificationsController(cfg *config.Config, notify *notifications.Service) *NotificationsController {
	return &NotificationsController{Cfg: cfg, Notify: notify}
}

func (nc *NotificationsController) List(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	list, err := nc.Notify.ListForUser(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query notifications")
	}

	return c.JSON(fiber.Map{"notifications": list})
}

func (nc *NotificationsController) MarkRead(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID")
	}

	if err := nc.Notify.MarkRead(c.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Notification not found")
		}
		return utils.InternalServerError(c, "Could not update notification")
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
