package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
)

type CommentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCommentsController(db *gorm.DB, cfg *config.Config) *CommentsController {
	return &CommentsController{DB: db, Cfg: cfg}
}

func (cc *CommentsController) AddCourseComment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Text   string `json:"text"`
		Rating int    `json:"rating"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 0 and 5")
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	comment := models.CourseComment{
		CourseID: uint(courseID),
		UserID:   userID,
		UserName: user.Name,
		Text:     input.Text,
		Rating:   input.Rating,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return c.JSON(comment)
}

func (cc *CommentsController) GetCourseComments(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var comments []models.CourseComment
	result := cc.DB.Preload("Replies").Where("course_id = ?", courseID).Find(&comments)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not fetch comments")
	}

	return c.JSON(comments)
}
