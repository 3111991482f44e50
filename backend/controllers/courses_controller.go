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

type CoursesController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Reconciler *progress.Reconciler
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, rec *progress.Reconciler) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Reconciler: rec}
}

func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topic := c.Query("topic")

	query := cc.DB.Model(&models.Course{}).Where("published = ?", true)
	if topic != "" {
		query = query.Where("topic LIKE ?", "%"+topic+"%")
	}

	var courses []models.Course
	if err := query.Preload("Lessons").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query courses")
	}

	result := []fiber.Map{}
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":         course.ID,
			"title":      course.Title,
			"short_desc": course.ShortDesc,
			"topic":      course.Topic,
			"logo_url":   course.LogoURL,
			"lessons":    len(course.Lessons),
		})
	}

	return c.JSON(fiber.Map{"courses": result})
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	lessonIDs := make([]uint, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	byLesson := map[uint]models.LessonProgress{}
	if len(lessonIDs) > 0 {
		var records []models.LessonProgress
		cc.DB.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&records)
		for _, rec := range records {
			byLesson[rec.LessonID] = rec
		}
	}

	lessons := []fiber.Map{}
	for _, lesson := range course.Lessons {
		rec := byLesson[lesson.ID]
		lessons = append(lessons, fiber.Map{
			"id":                 lesson.ID,
			"title":              lesson.Title,
			"description":        lesson.Description,
			"duration_seconds":   lesson.DurationSeconds,
			"sequence_order":     lesson.SequenceOrder,
			"completed":          rec.Completed,
			"watch_time_seconds": rec.WatchTimeSeconds,
		})
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"short_desc":  course.ShortDesc,
			"description": course.Description,
			"topic":       course.Topic,
			"logo_url":    course.LogoURL,
			"lessons":     lessons,
		},
	})
}

// GetLessonDetails returns one lesson with the caller's progress. Opening a
// lesson starts a fresh viewing session for notification purposes.
func (cc *CoursesController) GetLessonDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := c.ParamsInt("lessonId")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if cc.Reconciler != nil {
		cc.Reconciler.BeginView(userID, lesson.ID)
	}

	var rec models.LessonProgress
	cc.DB.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&rec)

	return c.JSON(fiber.Map{
		"lesson": fiber.Map{
			"id":                 lesson.ID,
			"course_id":          lesson.CourseID,
			"title":              lesson.Title,
			"description":        lesson.Description,
			"video_url":          lesson.VideoURL,
			"duration_seconds":   lesson.DurationSeconds,
			"sequence_order":     lesson.SequenceOrder,
			"completed":          rec.Completed,
			"watch_time_seconds": rec.WatchTimeSeconds,
		},
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title       string `json:"title"`
		ShortDesc   string `json:"short_desc"`
		Description string `json:"description"`
		Topic       string `json:"topic"`
		LogoURL     string `json:"logo_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	course := models.Course{
		ProducerID:  userID,
		Title:       input.Title,
		ShortDesc:   input.ShortDesc,
		Description: input.Description,
		Topic:       input.Topic,
		LogoURL:     input.LogoURL,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	var input struct {
		Title       *string `json:"title"`
		ShortDesc   *string `json:"short_desc"`
		Description *string `json:"description"`
		Topic       *string `json:"topic"`
		LogoURL     *string `json:"logo_url"`
		Published   *bool   `json:"published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.ShortDesc != nil {
		course.ShortDesc = *input.ShortDesc
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Topic != nil {
		course.Topic = *input.Topic
	}
	if input.LogoURL != nil {
		course.LogoURL = *input.LogoURL
	}
	if input.Published != nil {
		course.Published = *input.Published
	}

	if err := cc.DB.Save(course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	var input struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		VideoURL        string `json:"video_url"`
		DurationSeconds int    `json:"duration_seconds"`
		SequenceOrder   int    `json:"sequence_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	lesson := models.Lesson{
		CourseID:        course.ID,
		Title:           input.Title,
		Description:     input.Description,
		VideoURL:        input.VideoURL,
		DurationSeconds: input.DurationSeconds,
		SequenceOrder:   input.SequenceOrder,
	}
	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson created",
		"lesson":  lesson,
	})
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	lessonID, err := c.ParamsInt("lessonId")
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND course_id = ?", lessonID, course.ID).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		VideoURL        *string `json:"video_url"`
		DurationSeconds *int    `json:"duration_seconds"`
		SequenceOrder   *int    `json:"sequence_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.VideoURL != nil {
		lesson.VideoURL = *input.VideoURL
	}
	if input.DurationSeconds != nil {
		lesson.DurationSeconds = *input.DurationSeconds
	}
	if input.SequenceOrder != nil {
		lesson.SequenceOrder = *input.SequenceOrder
	}

	if err := cc.DB.Save(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lesson")
	}

	return c.JSON(fiber.Map{
		"message": "Lesson updated",
		"lesson":  lesson,
	})
}

func (cc *CoursesController) ownedCourse(c *fiber.Ctx) (*models.Course, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Where("id = ? AND producer_id = ?", courseID, userID).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &course, nil
}
