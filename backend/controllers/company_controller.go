package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/gamification"
	"lms/backend/models"
	"lms/backend/notifications"
	"lms/backend/roles"
	"lms/backend/utils"
)

type CompanyController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Points *gamification.Service
	Notify *notifications.Service
}

func NewCompanyController(db *gorm.DB, cfg *config.Config, points *gamification.Service, notify *notifications.Service) *CompanyController {
	return &CompanyController{DB: db, Cfg: cfg, Points: points, Notify: notify}
}

func (cc *CompanyController) company(c *fiber.Ctx) (*models.Company, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var company models.Company
	if err := cc.DB.Where("owner_id = ?", userID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Company not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &company, nil
}

func (cc *CompanyController) GetProfile(c *fiber.Ctx) error {
	company, err := cc.company(c)
	if err != nil {
		return err
	}

	var seatsUsed int64
	cc.DB.Model(&models.CompanyUser{}).
		Where("company_id = ? AND active = ?", company.ID, true).
		Count(&seatsUsed)

	return c.JSON(fiber.Map{
		"company": fiber.Map{
			"id":                company.ID,
			"name":              company.Name,
			"max_collaborators": company.MaxCollaborators,
			"seats_used":        seatsUsed,
		},
	})
}

// AddCollaborator provisions a collaborator account inside the company's
// seat allocation. The account is created with a temporary password and the
// must-change flag set, which keeps the redirect flow parked on the password
// change until it is cleared.
func (cc *CompanyController) AddCollaborator(c *fiber.Ctx) error {
	company, err := cc.company(c)
	if err != nil {
		return err
	}

	var input struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		TempPassword string `json:"temp_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" || input.TempPassword == "" {
		return utils.BadRequest(c, "Email and temp_password are required")
	}

	var seatsUsed int64
	if err := cc.DB.Model(&models.CompanyUser{}).
		Where("company_id = ? AND active = ?", company.ID, true).
		Count(&seatsUsed).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if seatsUsed >= int64(company.MaxCollaborators) {
		return utils.Forbidden(c, "Collaborator seat limit reached")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.TempPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hashedPassword),
		Role:               roles.Collaborator.String(),
		MustChangePassword: true,
	}
	if err := cc.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create collaborator account")
	}

	link := models.CompanyUser{
		CompanyID:   company.ID,
		UserID:      user.ID,
		InviteToken: uuid.NewString(),
		Active:      true,
	}
	if err := cc.DB.Create(&link).Error; err != nil {
		return utils.InternalServerError(c, "Could not link collaborator")
	}

	if cc.Notify != nil {
		_ = cc.Notify.Create(c.Context(), user.ID, notifications.TypeSeatProvisioned,
			"Welcome to "+company.Name,
			"Your collaborator seat is ready. Please change your temporary password.")
	}

	return utils.Created(c, fiber.Map{
		"collaborator": fiber.Map{
			"id":           link.ID,
			"user_id":      user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"invite_token": link.InviteToken,
		},
	})
}

func (cc *CompanyController) ListCollaborators(c *fiber.Ctx) error {
	company, err := cc.company(c)
	if err != nil {
		return err
	}

	type row struct {
		ID     uint   `json:"id"`
		UserID uint   `json:"user_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Active bool   `json:"active"`
	}
	rows := []row{}
	if err := cc.DB.Model(&models.CompanyUser{}).
		Select("company_users.id, company_users.user_id, users.name, users.email, company_users.active").
		Joins("JOIN users ON users.id = company_users.user_id").
		Where("company_users.company_id = ?", company.ID).
		Order("company_users.created_at").
		Scan(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"collaborators": rows})
}

// RemoveCollaborator deactivates the seat. The user row and any earned
// ledger entries are kept.
func (cc *CompanyController) RemoveCollaborator(c *fiber.Ctx) error {
	company, err := cc.company(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid collaborator ID")
	}

	res := cc.DB.Model(&models.CompanyUser{}).
		Where("id = ? AND company_id = ?", id, company.ID).
		Update("active", false)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not update collaborator")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Collaborator not found")
	}

	return c.JSON(fiber.Map{"message": "Collaborator removed"})
}

// Leaderboard returns the company's collaborator point totals.
func (cc *CompanyController) Leaderboard(c *fiber.Ctx) error {
	company, err := cc.company(c)
	if err != nil {
		return err
	}

	rows, err := cc.Points.Leaderboard(c.Context(), company.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query leaderboard")
	}

	return c.JSON(fiber.Map{"leaderboard": rows})
}
