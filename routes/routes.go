package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"drivenmind/auth"
	"drivenmind/billing"
	controller "drivenmind/controllers"
	"drivenmind/middleware"
	"drivenmind/models"
	"drivenmind/store"
)

// Deps carries everything the route table needs
type Deps struct {
	Identity      *auth.IdentityStore
	Subscriptions *billing.SubscriptionStore
	SessionFile   *store.SessionFile
}

func SetupAuthRoutes(app *fiber.App, deps Deps) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)
	authController := controller.NewAuthController(deps.Identity, authLogger)

	authGroup := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public endpoints
	authGroup.Post("/register", authController.Register)
	authGroup.Post("/login", authController.Login)
	authGroup.Post("/logout", authController.Logout)

	// Session-scoped endpoints
	authGroup.Get("/me", authController.GetCurrentUser)
	authGroup.Put("/profile", authController.UpdateProfile)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, deps Deps) {
	session := deps.Identity.Session()
	subscriptionController := controller.NewSubscriptionController(deps.Subscriptions, log.New(os.Stdout, "BILLING: ", log.LstdFlags))
	contentController := controller.NewContentController(deps.Subscriptions, deps.SessionFile, log.New(os.Stdout, "CONTENT: ", log.LstdFlags))

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Plan catalog (public)
	api.Get("/plans", subscriptionController.GetPlans)
	api.Get("/plans/:id", subscriptionController.GetPlan)

	// Visitor id for the external help widget (public, anonymous)
	api.Get("/visitor", contentController.Visitor)

	// Subscription lifecycle (requires a signed-in identity)
	subscription := api.Group("/subscription", middleware.Protected(session))
	subscription.Get("/", subscriptionController.GetSubscription)
	subscription.Post("/", subscriptionController.Subscribe)
	subscription.Put("/plan", subscriptionController.ChangePlan)
	subscription.Post("/cancel", subscriptionController.Cancel)
	subscription.Post("/reactivate", subscriptionController.Reactivate)
	subscription.Get("/remaining-days", subscriptionController.GetRemainingDays)

	// Payment methods
	payment := api.Group("/payment-methods", middleware.Protected(session))
	payment.Get("/", subscriptionController.GetPaymentMethods)
	payment.Post("/", subscriptionController.AddPaymentMethod)
	payment.Delete("/:id", subscriptionController.RemovePaymentMethod)
	payment.Put("/:id/default", subscriptionController.SetDefaultPaymentMethod)

	// Guarded content surfaces
	api.Get("/admin/dashboard",
		middleware.Guarded(session, auth.GuardCheck{
			RequiredRole: models.RoleAdmin,
			Resource:     models.ResourceAdminDashboard,
		}),
		contentController.AdminDashboard)
	api.Get("/content/premium",
		middleware.Guarded(session, auth.GuardCheck{Resource: models.ResourcePremiumContent}),
		contentController.PremiumContent)
	api.Get("/content/basic",
		middleware.Guarded(session, auth.GuardCheck{Resource: models.ResourceBasicContent}),
		contentController.BasicContent)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, deps)
	SetupAPIRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
