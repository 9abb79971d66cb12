package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"drivenmind/billing"
	"drivenmind/store"
)

// ContentController serves the demo protected surfaces behind the guard
// middleware, and the anonymous visitor id used by the help widget.
type ContentController struct {
	subscriptions *billing.SubscriptionStore
	sessionFile   *store.SessionFile
	logger        *log.Logger
}

func NewContentController(subscriptions *billing.SubscriptionStore, sessionFile *store.SessionFile, logger *log.Logger) *ContentController {
	return &ContentController{
		subscriptions: subscriptions,
		sessionFile:   sessionFile,
		logger:        logger,
	}
}

func (cc *ContentController) AdminDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"section": "admin-dashboard",
	})
}

func (cc *ContentController) PremiumContent(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"section":          "premium-content",
		"premium_articles": cc.subscriptions.CanAccessFeature(c.Context(), billing.TagPremiumArticles),
		"courses":          cc.subscriptions.CanAccessFeature(c.Context(), billing.TagCourses),
		"coaching":         cc.subscriptions.CanAccessFeature(c.Context(), billing.TagCoaching),
		"priority_support": cc.subscriptions.CanAccessFeature(c.Context(), billing.TagPrioritySupport),
	})
}

func (cc *ContentController) BasicContent(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"section": "basic-content",
	})
}

// Visitor returns the anonymous visitor id, issuing one on first call.
// This id is independent of the authenticated identity.
func (cc *ContentController) Visitor(c *fiber.Ctx) error {
	id, err := cc.sessionFile.VisitorID()
	if err != nil {
		cc.logger.Printf("failed to issue visitor id: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue visitor id",
		})
	}
	return c.JSON(fiber.Map{
		"visitor_id": id,
	})
}
