package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"drivenmind/auth"
	"drivenmind/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthController exposes the identity lifecycle over HTTP
type AuthController struct {
	identity *auth.IdentityStore
	logger   *log.Logger
}

func NewAuthController(identity *auth.IdentityStore, logger *log.Logger) *AuthController {
	return &AuthController{identity: identity, logger: logger}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := ac.identity.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered",
			})
		case errors.Is(err, auth.ErrInvalidEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "email must be a valid email",
			})
		default:
			ac.logger.Printf("registration failed: %v", err)
			LogError("registration_failed", err, map[string]interface{}{
				"email": req.Email,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create user",
			})
		}
	}

	user.Sanitize()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := ac.identity.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    c.IP(),
		}).Warn("login rejected")

		switch {
		case errors.Is(err, auth.ErrAccountSuspended):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is suspended",
			})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to sign in",
			})
		}
	}

	user.Sanitize()
	return c.JSON(fiber.Map{
		"user": user,
	})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.identity.Logout()
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	user := ac.identity.Current()
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Please sign in to access this content.",
		})
	}
	user.Sanitize()
	return c.JSON(fiber.Map{
		"user": user,
	})
}

func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	var req auth.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := ac.identity.UpdateProfile(c.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrNoCurrentIdentity) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Please sign in to access this content.",
			})
		}
		ac.logger.Printf("profile update failed: %v", err)
		LogError("profile_update_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	user.Sanitize()
	return c.JSON(fiber.Map{
		"user": user,
	})
}
