package middleware

import (
	"github.com/gofiber/fiber/v2"

	"drivenmind/auth"
)

// Guarded evaluates the access guard once per request against the current
// session and renders one of the three negative outcomes, or passes the
// request through to the protected handler.
func Guarded(session *auth.Session, check auth.GuardCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := auth.Evaluate(session.Current(), check)

		switch decision.Outcome {
		case auth.OutcomeRequireLogin:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"outcome": decision.Outcome,
				"error":   decision.Message,
			})
		case auth.OutcomeAccessDenied:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"outcome": decision.Outcome,
				"error":   decision.Message,
				"role":    decision.Role,
			})
		case auth.OutcomeUpgradeRequired:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"outcome":          decision.Outcome,
				"error":            decision.Message,
				"upgrade_required": true,
			})
		}

		return c.Next()
	}
}

// Protected only requires a signed-in identity
func Protected(session *auth.Session) fiber.Handler {
	return Guarded(session, auth.GuardCheck{})
}
