package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/gamification"
	"lms/backend/utils"
)

type GamificationController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Points *gamification.Service
}

func NewGamificationController(db *gorm.DB, cfg *config.Config, points *gamification.Service) *GamificationController {
	return &GamificationController{DB: db, Cfg: cfg, Points: points}
}

func (gc *GamificationController) GetMyPoints(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	summary, err := gc.Points.SummaryForUser(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query points")
	}

	return c.JSON(fiber.Map{"points": summary})
}
