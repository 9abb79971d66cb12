package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivenmind/models"
)

func planOf(t *testing.T, id models.PlanID) *models.Plan {
	t.Helper()
	plan, err := models.GetPlan(id)
	require.NoError(t, err)
	return plan
}

func subOn(t *testing.T, id models.PlanID) *models.Subscription {
	t.Helper()
	return &models.Subscription{
		ID:     "sub_test",
		UserID: "u1",
		PlanID: id,
		Plan:   planOf(t, id),
		Status: models.SubscriptionActive,
	}
}

func TestHasEntitlementPresenceOnly(t *testing.T) {
	plan := &models.Plan{Limits: models.Entitlements{
		"communityAccess":  true,
		"trialUsed":        false,
		"articlesPerMonth": 5,
	}}

	assert.True(t, HasEntitlement(plan, "communityAccess", false))
	// Presence wins even for a false value
	assert.True(t, HasEntitlement(plan, "trialUsed", false))
	assert.False(t, HasEntitlement(plan, "missing", false))
	assert.False(t, HasEntitlement(nil, "communityAccess", false))
}

func TestHasEntitlementStrictTruthiness(t *testing.T) {
	plan := &models.Plan{Limits: models.Entitlements{
		"communityAccess":  true,
		"trialUsed":        false,
		"articlesPerMonth": 0,
		"templatesAccess":  "",
		"supportLevel":     "priority",
	}}

	assert.True(t, HasEntitlement(plan, "communityAccess", true))
	assert.False(t, HasEntitlement(plan, "trialUsed", true))
	assert.False(t, HasEntitlement(plan, "articlesPerMonth", true))
	assert.False(t, HasEntitlement(plan, "templatesAccess", true))
	assert.True(t, HasEntitlement(plan, "supportLevel", true))
}

func TestPlanCanAccessFeaturePerPlan(t *testing.T) {
	free := subOn(t, models.PlanFree)
	starter := subOn(t, models.PlanStarter)
	pro := subOn(t, models.PlanPro)
	elite := subOn(t, models.PlanElite)

	tests := []struct {
		tag  FeatureTag
		want map[*models.Subscription]bool
	}{
		{TagPremiumArticles, map[*models.Subscription]bool{free: false, starter: true, pro: true, elite: true}},
		{TagCourses, map[*models.Subscription]bool{free: false, starter: false, pro: true, elite: true}},
		{TagPremiumTemplates, map[*models.Subscription]bool{free: false, starter: true, pro: true, elite: true}},
		{TagCoaching, map[*models.Subscription]bool{free: false, starter: false, pro: true, elite: true}},
		{TagPrioritySupport, map[*models.Subscription]bool{free: false, starter: false, pro: true, elite: true}},
	}
	for _, tt := range tests {
		for sub, want := range tt.want {
			assert.Equal(t, want, PlanCanAccessFeature(sub, tt.tag),
				"tag %s plan %s", tt.tag, sub.PlanID)
		}
	}
}

func TestPlanCanAccessFeatureEdges(t *testing.T) {
	assert.False(t, PlanCanAccessFeature(nil, TagCourses))
	assert.False(t, PlanCanAccessFeature(&models.Subscription{PlanID: models.PlanPro}, TagCourses), "unresolved plan")
	assert.False(t, PlanCanAccessFeature(subOn(t, models.PlanElite), "unknown-tag"))

	// A plan that never mentions templatesAccess passes the
	// premium-templates gate: only the explicit "basic" tier is excluded.
	noTemplates := &models.Subscription{
		PlanID: models.PlanPro,
		Plan:   &models.Plan{Limits: models.Entitlements{}},
	}
	assert.True(t, PlanCanAccessFeature(noTemplates, TagPremiumTemplates))
}

func TestRemainingDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	end := now.Add(30 * 24 * time.Hour)
	sub := &models.Subscription{CurrentPeriodEnd: &end}
	days := RemainingDays(sub, now)
	require.NotNil(t, days)
	assert.Equal(t, 30, *days)

	// Partial days round up
	end = now.Add(24*time.Hour + time.Hour)
	days = RemainingDays(&models.Subscription{CurrentPeriodEnd: &end}, now)
	require.NotNil(t, days)
	assert.Equal(t, 2, *days)

	// A lapsed period floors at zero
	end = now.Add(-48 * time.Hour)
	days = RemainingDays(&models.Subscription{CurrentPeriodEnd: &end}, now)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)

	assert.Nil(t, RemainingDays(&models.Subscription{}, now))
	assert.Nil(t, RemainingDays(nil, now))
}
