package models

import "errors"

// PlanID identifies one of the fixed subscription tiers
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanStarter PlanID = "starter"
	PlanPro     PlanID = "pro"
	PlanElite   PlanID = "elite"
)

// ErrPlanNotFound is returned for plan ids outside the fixed catalog
var ErrPlanNotFound = errors.New("plan not found")

// Entitlements is the machine-readable limits map of a plan. Values are
// booleans or descriptive strings/numbers (e.g. articlesPerMonth can be 5
// or "unlimited"). It is the sole source of truth for feature gating; the
// textual feature list is presentation only.
type Entitlements map[string]interface{}

// Plan represents one subscription tier
type Plan struct {
	ID   PlanID `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// Monthly price in whole currency units
	Price    int    `gorm:"not null" json:"price"`
	Interval string `gorm:"default:'month'" json:"interval"`

	// For display purposes
	Features  []string `gorm:"serializer:json" json:"features"`
	IsPopular bool     `gorm:"default:false" json:"is_popular"`

	Limits Entitlements `gorm:"serializer:json" json:"limits"`
}

// AnnualPrice implements the fixed annual billing rule: a year costs ten
// monthly payments ("2 months free"), in whole currency units.
func AnnualPrice(monthly int) int {
	return monthly * 10
}

// DefaultPlans returns the full plan catalog
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:       PlanFree,
			Name:     "Free",
			Price:    0,
			Interval: "month",
			Features: []string{
				"Access to basic articles",
				"Community forum access",
				"Monthly newsletter",
				"Basic templates",
			},
			Limits: Entitlements{
				"articlesPerMonth": 5,
				"templatesAccess":  "basic",
				"communityAccess":  true,
				"supportLevel":     "community",
			},
		},
		{
			ID:       PlanStarter,
			Name:     "Starter",
			Price:    29,
			Interval: "month",
			Features: []string{
				"Everything in Free",
				"Unlimited article access",
				"Premium templates",
				"Email support",
				"Monthly group coaching calls",
			},
			Limits: Entitlements{
				"articlesPerMonth": "unlimited",
				"templatesAccess":  "premium",
				"communityAccess":  true,
				"supportLevel":     "email",
				"groupCoaching":    true,
			},
		},
		{
			ID:        PlanPro,
			Name:      "Pro",
			Price:     97,
			Interval:  "month",
			IsPopular: true,
			Features: []string{
				"Everything in Starter",
				"All courses included",
				"Priority support",
				"Monthly 1-on-1 coaching session",
				"Advanced business tools",
				"Custom templates",
			},
			Limits: Entitlements{
				"articlesPerMonth": "unlimited",
				"templatesAccess":  "all",
				"coursesAccess":    "all",
				"communityAccess":  true,
				"supportLevel":     "priority",
				"oneOnOneCoaching": true,
				"businessTools":    true,
			},
		},
		{
			ID:       PlanElite,
			Name:     "Elite",
			Price:    297,
			Interval: "month",
			Features: []string{
				"Everything in Pro",
				"Weekly 1-on-1 coaching",
				"Direct access to founder",
				"Custom business strategy sessions",
				"Exclusive mastermind group",
				"Done-for-you templates",
			},
			Limits: Entitlements{
				"articlesPerMonth": "unlimited",
				"templatesAccess":  "all",
				"coursesAccess":    "all",
				"communityAccess":  true,
				"supportLevel":     "white-glove",
				"weeklyCoaching":   true,
				"founderAccess":    true,
				"mastermindAccess": true,
				"customStrategy":   true,
			},
		},
	}
}

var planCatalog = func() map[PlanID]Plan {
	catalog := make(map[PlanID]Plan)
	for _, p := range DefaultPlans() {
		catalog[p.ID] = p
	}
	return catalog
}()

// GetPlan looks up a plan in the static catalog. The returned plan is a
// deep copy; mutating its Features or Limits cannot corrupt the catalog.
func GetPlan(id PlanID) (*Plan, error) {
	p, ok := planCatalog[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	p.Features = append([]string(nil), p.Features...)
	limits := make(Entitlements, len(p.Limits))
	for k, v := range p.Limits {
		limits[k] = v
	}
	p.Limits = limits
	return &p, nil
}
