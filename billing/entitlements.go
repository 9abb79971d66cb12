// Package billing manages the subscription lifecycle, payment methods,
// and plan-entitlement gating for the current identity.
package billing

import (
	"math"
	"time"

	"drivenmind/models"
)

// FeatureTag names a plan-gated surface. These tags are a separate
// namespace from models.ResourceKey: they gate by billing entitlement,
// not by role.
type FeatureTag string

const (
	TagPremiumArticles  FeatureTag = "premium-articles"
	TagCourses          FeatureTag = "courses"
	TagPremiumTemplates FeatureTag = "premium-templates"
	TagCoaching         FeatureTag = "coaching"
	TagPrioritySupport  FeatureTag = "priority-support"
)

// HasEntitlement reports whether the plan defines the given entitlement
// key. The historical semantics check presence only: a key mapped to
// false still counts as present. strict switches to value truthiness
// (false, 0, and "" no longer count), for callers that want the
// corrected behavior.
func HasEntitlement(plan *models.Plan, key string, strict bool) bool {
	if plan == nil {
		return false
	}
	value, ok := plan.Limits[key]
	if !ok {
		return false
	}
	if !strict {
		return true
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return value != nil
	}
}

// PlanCanAccessFeature applies the per-tag gating logic over the
// subscription's plan entitlements. Unknown tags are denied.
func PlanCanAccessFeature(sub *models.Subscription, tag FeatureTag) bool {
	if sub == nil || sub.Plan == nil {
		return false
	}
	limits := sub.Plan.Limits

	switch tag {
	case TagPremiumArticles:
		return limits["articlesPerMonth"] == "unlimited" || sub.PlanID != models.PlanFree
	case TagCourses:
		return limits["coursesAccess"] == "all"
	case TagPremiumTemplates:
		return limits["templatesAccess"] != "basic"
	case TagCoaching:
		return truthyBool(limits["oneOnOneCoaching"]) || truthyBool(limits["weeklyCoaching"])
	case TagPrioritySupport:
		return limits["supportLevel"] == "priority" || limits["supportLevel"] == "white-glove"
	default:
		return false
	}
}

// RemainingDays returns the ceiling of the time left in the current
// period in days, floored at zero. Nil when the subscription has no
// period end (the implicit free plan).
func RemainingDays(sub *models.Subscription, now time.Time) *int {
	if sub == nil || sub.CurrentPeriodEnd == nil {
		return nil
	}
	diff := sub.CurrentPeriodEnd.Sub(now)
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

func truthyBool(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}
