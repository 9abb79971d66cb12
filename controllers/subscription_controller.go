package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"drivenmind/auth"
	"drivenmind/billing"
	"drivenmind/models"
	"drivenmind/store"
	"drivenmind/utils"
)

type SubscribeRequest struct {
	PlanID          string `json:"plan_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"omitempty"`
}

type ChangePlanRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type CancelRequest struct {
	// Defaults to canceling at period end; immediate cancellation must be
	// requested explicitly
	AtPeriodEnd *bool `json:"at_period_end"`
}

type AddPaymentMethodRequest struct {
	Brand    string `json:"brand" validate:"required"`
	Last4    string `json:"last4" validate:"required,len=4"`
	ExpMonth int    `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear  int    `json:"exp_year" validate:"required,min=2000"`
}

// SubscriptionController exposes plans, the subscription lifecycle, and
// payment-method management over HTTP.
type SubscriptionController struct {
	subscriptions *billing.SubscriptionStore
	logger        *log.Logger
}

func NewSubscriptionController(subscriptions *billing.SubscriptionStore, logger *log.Logger) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions, logger: logger}
}

// GetPlans returns the full catalog with monthly and annual pricing
func (sc *SubscriptionController) GetPlans(c *fiber.Ctx) error {
	plans := models.DefaultPlans()
	annual := make(map[models.PlanID]int, len(plans))
	for _, p := range plans {
		annual[p.ID] = models.AnnualPrice(p.Price)
	}
	return c.JSON(fiber.Map{
		"plans":         plans,
		"annual_prices": annual,
	})
}

func (sc *SubscriptionController) GetPlan(c *fiber.Ctx) error {
	plan, err := models.GetPlan(models.PlanID(c.Params("id")))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}
	return c.JSON(fiber.Map{
		"plan":         plan,
		"annual_price": models.AnnualPrice(plan.Price),
	})
}

func (sc *SubscriptionController) GetSubscription(c *fiber.Ctx) error {
	sub, err := sc.subscriptions.Load(c.Context())
	if err != nil {
		return sc.fail(c, err, "Failed to load subscription")
	}
	return c.JSON(fiber.Map{
		"subscription": sub,
	})
}

func (sc *SubscriptionController) Subscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
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

	sub, err := sc.subscriptions.Subscribe(c.Context(), models.PlanID(req.PlanID), req.PaymentMethodID)
	if err != nil {
		return sc.fail(c, err, "Failed to subscribe")
	}
	LogEvent("subscription_created", map[string]interface{}{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscription": sub,
	})
}

func (sc *SubscriptionController) ChangePlan(c *fiber.Ctx) error {
	var req ChangePlanRequest
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

	sub, err := sc.subscriptions.ChangePlan(c.Context(), models.PlanID(req.PlanID))
	if err != nil {
		return sc.fail(c, err, "Failed to change plan")
	}
	return c.JSON(fiber.Map{
		"subscription": sub,
	})
}

func (sc *SubscriptionController) Cancel(c *fiber.Ctx) error {
	var req CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	atPeriodEnd := true
	if req.AtPeriodEnd != nil {
		atPeriodEnd = *req.AtPeriodEnd
	}

	sub, err := sc.subscriptions.Cancel(c.Context(), atPeriodEnd)
	if err != nil {
		return sc.fail(c, err, "Failed to cancel subscription")
	}
	return c.JSON(fiber.Map{
		"subscription": sub,
	})
}

func (sc *SubscriptionController) Reactivate(c *fiber.Ctx) error {
	sub, err := sc.subscriptions.Reactivate(c.Context())
	if err != nil {
		return sc.fail(c, err, "Failed to reactivate subscription")
	}
	return c.JSON(fiber.Map{
		"subscription": sub,
	})
}

func (sc *SubscriptionController) GetRemainingDays(c *fiber.Ctx) error {
	days, err := sc.subscriptions.GetRemainingDays(c.Context())
	if err != nil {
		return sc.fail(c, err, "Failed to compute remaining days")
	}
	return c.JSON(fiber.Map{
		"remaining_days": days,
	})
}

func (sc *SubscriptionController) GetPaymentMethods(c *fiber.Ctx) error {
	methods, err := sc.subscriptions.PaymentMethods(c.Context())
	if err != nil {
		return sc.fail(c, err, "Failed to list payment methods")
	}
	return c.JSON(fiber.Map{
		"payment_methods": methods,
	})
}

func (sc *SubscriptionController) AddPaymentMethod(c *fiber.Ctx) error {
	var req AddPaymentMethodRequest
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

	pm, err := sc.subscriptions.AddPaymentMethod(c.Context(), models.Card{
		Brand:    req.Brand,
		Last4:    req.Last4,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
	})
	if err != nil {
		return sc.fail(c, err, "Failed to add payment method")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_method": pm,
	})
}

func (sc *SubscriptionController) RemovePaymentMethod(c *fiber.Ctx) error {
	if err := sc.subscriptions.RemovePaymentMethod(c.Context(), c.Params("id")); err != nil {
		return sc.fail(c, err, "Failed to remove payment method")
	}
	return c.JSON(fiber.Map{
		"message": "Payment method removed",
	})
}

func (sc *SubscriptionController) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	if err := sc.subscriptions.SetDefaultPaymentMethod(c.Context(), c.Params("id")); err != nil {
		return sc.fail(c, err, "Failed to set default payment method")
	}
	return c.JSON(fiber.Map{
		"message": "Default payment method updated",
	})
}

// fail maps store errors to HTTP responses
func (sc *SubscriptionController) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, auth.ErrNoCurrentIdentity):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Please sign in to access this content.",
		})
	case errors.Is(err, billing.ErrInvalidPlan):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan selected",
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	default:
		sc.logger.Printf("%s: %v", fallback, err)
		LogError("billing_failed", err, map[string]interface{}{
			"operation": fallback,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
