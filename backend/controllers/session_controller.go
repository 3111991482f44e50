package controllers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/roles"
	"lms/backend/utils"
)

type SessionController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSessionController(db *gorm.DB, cfg *config.Config) *SessionController {
	return &SessionController{DB: db, Cfg: cfg}
}

// ResolveRedirect godoc
// @Summary Resolve role-based navigation
// @Description Given the client's current location, decides whether the user should be navigated elsewhere
// @Tags session
// @Accept json
// @Produce json
// @Param path query string true "Current client path"
// @Success 200 {object} map[string]interface{}
// @Router /session/redirect [get]
func (sc *SessionController) ResolveRedirect(c *fiber.Ctx) error {
	path := c.Query("path", "/")

	query := url.Values{}
	for k, v := range c.Queries() {
		if k == "path" {
			continue
		}
		query.Set(k, v)
	}

	state := roles.State{
		Path:  path,
		Query: query,
	}

	// An absent or invalid token is simply an unauthenticated state here,
	// not an auth failure: the resolver's contract is to stay put for it.
	if userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg); err == nil {
		var user models.User
		if err := sc.DB.First(&user, userID).Error; err == nil {
			state.Authenticated = true
			state.PasswordChangePending = user.MustChangePassword
			if role, ok := roles.Parse(user.Role); ok {
				state.Role = role
			}
		}
	}

	decision := roles.Resolve(state)
	return c.JSON(fiber.Map{
		"navigate": decision.Navigate,
		"target":   decision.Target,
	})
}
