package models

import "time"

// SubscriptionStatus tracks the billing state of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionTrialing SubscriptionStatus = "trialing"
)

// Subscription binds a user to a plan with billing-period bookkeeping.
// A user without an explicit record implicitly holds the free plan; such
// synthesized records carry an empty ID and are never persisted.
type Subscription struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	PlanID PlanID `gorm:"not null" json:"plan_id"`

	// Resolved from the static catalog, not stored
	Plan *Plan `gorm:"-" json:"plan,omitempty"`

	Status SubscriptionStatus `gorm:"not null;default:'active'" json:"status"`

	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`

	PaymentMethodID *string `json:"payment_method_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Explicit reports whether this is a stored record rather than the
// synthesized implicit free subscription.
func (s *Subscription) Explicit() bool {
	return s.ID != ""
}

// Clone returns a copy so callers cannot mutate store-owned state
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Card is the masked summary of a stored card
type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// PaymentMethod represents a stored payment instrument. At most one method
// per user may be the default at a time.
type PaymentMethod struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	Type      string `gorm:"default:'card'" json:"type"`
	Card      Card   `gorm:"embedded;embeddedPrefix:card_" json:"card"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
