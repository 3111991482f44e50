package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lms/backend/config"
	"lms/backend/roles"
	"lms/backend/utils"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireRole guards a route subtree for its owning role. Collaborators pass
// wherever students do.
func RequireRole(cfg *config.Config, owner roles.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, err := utils.ExtractRoleFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		role, ok := roles.Parse(claim)
		if !ok || role.Normalize() != owner.Normalize() {
			return utils.Forbidden(c, "Forbidden - "+owner.String()+" access required")
		}
		return c.Next()
	}
}
