package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/progress"
	"lms/backend/utils"
)

type ProgressController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Reconciler *progress.Reconciler
}

func NewProgressController(db *gorm.DB, cfg *config.Config, rec *progress.Reconciler) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Reconciler: rec}
}

// TrackProgress godoc
// @Summary Record playback progress
// @Description Feeds one playback progress sample into the reconciler. Best-effort: samples may be throttled away and persistence happens after a debounce window.
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/progress [post]
func (pc *ProgressController) TrackProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input struct {
		Completed        *bool `json:"completed"`
		WatchTimeSeconds *int  `json:"watch_time_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.WatchTimeSeconds != nil && *input.WatchTimeSeconds < 0 {
		return utils.BadRequest(c, "watch_time_seconds must not be negative")
	}

	accepted := pc.Reconciler.Track(progress.Update{
		UserID:           userID,
		LessonID:         uint(lessonID),
		Completed:        input.Completed,
		WatchTimeSeconds: input.WatchTimeSeconds,
	})

	// Accepted or throttled away, the caller gets the same answer: progress
	// tracking never blocks playback.
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"accepted": accepted,
	})
}

func (pc *ProgressController) GetLessonProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var rec models.LessonProgress
	err = pc.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{
			"progress": fiber.Map{
				"lesson_id":          lessonID,
				"completed":          false,
				"watch_time_seconds": 0,
			},
		})
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"progress": fiber.Map{
			"lesson_id":          rec.LessonID,
			"completed":          rec.Completed,
			"watch_time_seconds": rec.WatchTimeSeconds,
			"completed_at":       rec.CompletedAt,
			"last_watched_at":    rec.LastWatchedAt,
		},
	})
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Returns per-course completion counts for the caller
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type row struct {
		CourseID         uint   `json:"course_id"`
		Title            string `json:"title"`
		TotalLessons     int64  `json:"total_lessons"`
		CompletedLessons int64  `json:"completed_lessons"`
	}
	rows := []row{}
	err = pc.DB.Model(&models.Course{}).
		Select("courses.id AS course_id, courses.title, COUNT(lessons.id) AS total_lessons, COUNT(lesson_progresses.id) AS completed_lessons").
		Joins("JOIN lessons ON lessons.course_id = courses.id AND lessons.deleted_at IS NULL").
		Joins("LEFT JOIN lesson_progresses ON lesson_progresses.lesson_id = lessons.id AND lesson_progresses.user_id = ? AND lesson_progresses.completed = ?", userID, true).
		Where("courses.published = ?", true).
		Group("courses.id, courses.title").
		Scan(&rows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"overview": rows})
}
