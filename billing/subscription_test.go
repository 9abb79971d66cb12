package billing

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivenmind/auth"
	"drivenmind/models"
	"drivenmind/store"
	"drivenmind/utils"
)

var billingNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type billingFixture struct {
	repos    store.Repositories
	identity *auth.IdentityStore
	subs     *SubscriptionStore
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	repos := store.NewMemoryRepositories()
	discard := log.New(io.Discard, "", 0)
	file := store.NewSessionFile(filepath.Join(t.TempDir(), "session.json"), discard)
	session := auth.NewSession()
	clock := utils.FixedClock{Instant: billingNow}

	f := &billingFixture{
		repos:    repos,
		identity: auth.NewIdentityStore(repos.Identities, file, session, clock, 0, discard),
		subs:     NewSubscriptionStore(repos.Subscriptions, repos.PaymentMethods, session, clock, 0, false, discard),
	}
	f.identity.SetOnChange(func(_ *models.User) { f.subs.Reset() })
	return f
}

func (f *billingFixture) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := f.identity.Login(context.Background(), email, password)
	require.NoError(t, err)
}

func TestLoadSynthesizesImplicitFree(t *testing.T) {
	f := newBillingFixture(t)
	// user@example.com has no stored subscription
	f.login(t, "user@example.com", "user123")

	sub, err := f.subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.PlanID)
	assert.False(t, sub.Explicit())
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Nil(t, sub.CurrentPeriodEnd)

	// Never persisted
	_, err = f.repos.Subscriptions.FindByUserID(f.identity.Current().ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	days, err := f.subs.GetRemainingDays(context.Background())
	require.NoError(t, err)
	assert.Nil(t, days)
}

func TestLoadRequiresIdentity(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.subs.Load(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoCurrentIdentity)
	assert.False(t, f.subs.HasFeature(context.Background(), "communityAccess"))
	assert.False(t, f.subs.CanAccessFeature(context.Background(), TagPremiumArticles))
}

func TestSubscribeStartsThirtyDayPeriod(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	sub, err := f.subs.Subscribe(context.Background(), models.PlanPro, "")
	require.NoError(t, err)
	assert.True(t, sub.Explicit())
	assert.Equal(t, models.PlanPro, sub.PlanID)
	assert.Equal(t, billingNow, sub.CurrentPeriodStart)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, billingNow.Add(30*24*time.Hour), *sub.CurrentPeriodEnd)

	days, err := f.subs.GetRemainingDays(context.Background())
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, 30, *days)

	// The record is durable now
	stored, err := f.repos.Subscriptions.FindByUserID(f.identity.Current().ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, stored.ID)
}

func TestSubscribeRejectsUnknownPlan(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	_, err := f.subs.Subscribe(context.Background(), "platinum", "")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestSubscribeReplacesExistingRecord(t *testing.T) {
	f := newBillingFixture(t)
	// premium@example.com is seeded on the starter plan
	f.login(t, "premium@example.com", "premium123")

	before, err := f.subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlanStarter, before.PlanID)

	after, err := f.subs.Subscribe(context.Background(), models.PlanElite, "")
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, models.PlanElite, after.PlanID)
}

func TestChangePlanKeepsPeriod(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	created, err := f.subs.Subscribe(context.Background(), models.PlanStarter, "")
	require.NoError(t, err)

	changed, err := f.subs.ChangePlan(context.Background(), models.PlanElite)
	require.NoError(t, err)
	assert.Equal(t, models.PlanElite, changed.PlanID)
	assert.Equal(t, created.ID, changed.ID)
	assert.Equal(t, created.CurrentPeriodStart, changed.CurrentPeriodStart)
	assert.Equal(t, *created.CurrentPeriodEnd, *changed.CurrentPeriodEnd)

	_, err = f.subs.ChangePlan(context.Background(), "gold")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestChangePlanPromotesImplicitSubscription(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	changed, err := f.subs.ChangePlan(context.Background(), models.PlanStarter)
	require.NoError(t, err)
	assert.True(t, changed.Explicit())

	stored, err := f.repos.Subscriptions.FindByUserID(f.identity.Current().ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStarter, stored.PlanID)
}

func TestCancelAtPeriodEndKeepsAccess(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")
	_, err := f.subs.Subscribe(context.Background(), models.PlanPro, "")
	require.NoError(t, err)

	sub, err := f.subs.Cancel(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	// Entitlements and remaining days are unaffected until the period ends
	assert.True(t, f.subs.CanAccessFeature(context.Background(), TagCourses))
	days, err := f.subs.GetRemainingDays(context.Background())
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, 30, *days)
}

func TestCancelImmediately(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")
	_, err := f.subs.Subscribe(context.Background(), models.PlanPro, "")
	require.NoError(t, err)

	sub, err := f.subs.Cancel(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCanceled, sub.Status)
	assert.False(t, sub.CancelAtPeriodEnd)
}

func TestReactivateClearsPendingCancellation(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")
	_, err := f.subs.Subscribe(context.Background(), models.PlanPro, "")
	require.NoError(t, err)
	_, err = f.subs.Cancel(context.Background(), true)
	require.NoError(t, err)

	sub, err := f.subs.Reactivate(context.Background())
	require.NoError(t, err)
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestExpireDueFinalizesLapsedCancellation(t *testing.T) {
	repos := store.NewMemoryRepositories()
	discard := log.New(io.Discard, "", 0)
	file := store.NewSessionFile(filepath.Join(t.TempDir(), "session.json"), discard)
	session := auth.NewSession()
	clock := &utils.FixedClock{Instant: billingNow}

	identity := auth.NewIdentityStore(repos.Identities, file, session, clock, 0, discard)
	subs := NewSubscriptionStore(repos.Subscriptions, repos.PaymentMethods, session, clock, 0, false, discard)
	_, err := identity.Login(context.Background(), "user@example.com", "user123")
	require.NoError(t, err)

	_, err = subs.Subscribe(context.Background(), models.PlanStarter, "")
	require.NoError(t, err)
	_, err = subs.Cancel(context.Background(), true)
	require.NoError(t, err)

	// Still inside the period: nothing happens
	require.NoError(t, subs.ExpireDue(context.Background()))
	sub, err := subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	// Past period end the pending cancellation is finalized
	clock.Instant = billingNow.Add(31 * 24 * time.Hour)
	require.NoError(t, subs.ExpireDue(context.Background()))
	sub, err = subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCanceled, sub.Status)
}

func TestExpireDueIgnoresHealthySubscriptions(t *testing.T) {
	f := newBillingFixture(t)

	// No identity, no cached subscription: a quiet no-op
	require.NoError(t, f.subs.ExpireDue(context.Background()))

	f.login(t, "premium@example.com", "premium123")
	_, err := f.subs.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.subs.ExpireDue(context.Background()))

	sub, err := f.subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestIdentityChangeDropsCachedSubscription(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "premium@example.com", "premium123")

	sub, err := f.subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlanStarter, sub.PlanID)

	f.identity.Logout()
	f.login(t, "user@example.com", "user123")

	sub, err = f.subs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.PlanID)
	assert.False(t, sub.Explicit())
}

func TestFirstPaymentMethodBecomesDefault(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	first, err := f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2027})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "card", first.Type)

	second, err := f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "mastercard", Last4: "5555", ExpMonth: 6, ExpYear: 2028})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestSetDefaultPaymentMethodIsExclusive(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	first, err := f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "visa", Last4: "4242"})
	require.NoError(t, err)
	second, err := f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "amex", Last4: "0005"})
	require.NoError(t, err)

	require.NoError(t, f.subs.SetDefaultPaymentMethod(context.Background(), second.ID))
	methods, err := f.subs.PaymentMethods(context.Background())
	require.NoError(t, err)
	defaults := 0
	for _, pm := range methods {
		if pm.IsDefault {
			defaults++
			assert.Equal(t, second.ID, pm.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	// Setting it back is just as exclusive
	require.NoError(t, f.subs.SetDefaultPaymentMethod(context.Background(), first.ID))
	methods, err = f.subs.PaymentMethods(context.Background())
	require.NoError(t, err)
	defaults = 0
	for _, pm := range methods {
		if pm.IsDefault {
			defaults++
			assert.Equal(t, first.ID, pm.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	err = f.subs.SetDefaultPaymentMethod(context.Background(), "pm_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveDefaultDoesNotPromote(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	first, err := f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "visa", Last4: "4242"})
	require.NoError(t, err)
	_, err = f.subs.AddPaymentMethod(context.Background(), models.Card{Brand: "amex", Last4: "0005"})
	require.NoError(t, err)

	require.NoError(t, f.subs.RemovePaymentMethod(context.Background(), first.ID))
	methods, err := f.subs.PaymentMethods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.False(t, methods[0].IsDefault)
}

func TestHasFeaturePresenceSemantics(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	// Implicit free plan
	assert.True(t, f.subs.HasFeature(context.Background(), "communityAccess"))
	assert.True(t, f.subs.HasFeature(context.Background(), "articlesPerMonth"))
	assert.False(t, f.subs.HasFeature(context.Background(), "oneOnOneCoaching"))

	_, err := f.subs.Subscribe(context.Background(), models.PlanPro, "")
	require.NoError(t, err)
	assert.True(t, f.subs.HasFeature(context.Background(), "oneOnOneCoaching"))
}

func TestCanAccessFeatureFollowsPlan(t *testing.T) {
	f := newBillingFixture(t)
	f.login(t, "user@example.com", "user123")

	assert.False(t, f.subs.CanAccessFeature(context.Background(), TagPremiumArticles))

	_, err := f.subs.Subscribe(context.Background(), models.PlanStarter, "")
	require.NoError(t, err)
	assert.True(t, f.subs.CanAccessFeature(context.Background(), TagPremiumArticles))
	assert.False(t, f.subs.CanAccessFeature(context.Background(), TagCourses))

	_, err = f.subs.ChangePlan(context.Background(), models.PlanElite)
	require.NoError(t, err)
	assert.True(t, f.subs.CanAccessFeature(context.Background(), TagCourses))
	assert.True(t, f.subs.CanAccessFeature(context.Background(), TagCoaching))
}
