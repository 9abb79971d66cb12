package billing

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"drivenmind/auth"
	"drivenmind/models"
	"drivenmind/store"
	"drivenmind/utils"
)

// ErrInvalidPlan is returned for plan ids outside the fixed catalog
var ErrInvalidPlan = errors.New("invalid plan selected")

// Fixed-length billing period. Calendar month length is deliberately
// ignored; downstream trial and remaining-day math assumes exactly 30.
const billingPeriod = 30 * 24 * time.Hour

// SubscriptionStore manages the current identity's subscription and
// payment methods. All operations are scoped to the session's identity
// and return auth.ErrNoCurrentIdentity when logged out. State is dropped
// whenever the identity changes.
type SubscriptionStore struct {
	subs    store.SubscriptionRepository
	methods store.PaymentMethodRepository
	session *auth.Session
	clock   utils.Clock
	latency time.Duration
	logger  *log.Logger

	// Presence-only entitlement checks unless flipped by config
	strictEntitlements bool

	mu      sync.Mutex
	current *models.Subscription // cached for the current identity
}

// NewSubscriptionStore wires the subscription store
func NewSubscriptionStore(subs store.SubscriptionRepository, methods store.PaymentMethodRepository, session *auth.Session, clock utils.Clock, latency time.Duration, strictEntitlements bool, logger *log.Logger) *SubscriptionStore {
	return &SubscriptionStore{
		subs:               subs,
		methods:            methods,
		session:            session,
		clock:              clock,
		latency:            latency,
		strictEntitlements: strictEntitlements,
		logger:             logger,
	}
}

// Reset drops cached state; wired to the identity-change hook
func (s *SubscriptionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Load returns the current identity's subscription: the stored record if
// one exists, otherwise a synthesized implicit free subscription. The
// synthesized record is never persisted.
func (s *SubscriptionStore) Load(ctx context.Context) (*models.Subscription, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	user := s.session.Current()
	if user == nil {
		return nil, auth.ErrNoCurrentIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.UserID == user.ID {
		return s.current.Clone(), nil
	}

	sub, err := s.subs.FindByUserID(user.ID)
	if errors.Is(err, store.ErrNotFound) {
		sub = s.implicitFree(user.ID)
	} else if err != nil {
		return nil, err
	}
	if err := s.resolvePlan(sub); err != nil {
		return nil, err
	}
	s.current = sub
	return sub.Clone(), nil
}

// Subscribe starts a fresh subscription on the given plan with a
// 30-day period beginning now.
func (s *SubscriptionStore) Subscribe(ctx context.Context, planID models.PlanID, paymentMethodID string) (*models.Subscription, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	user := s.session.Current()
	if user == nil {
		return nil, auth.ErrNoCurrentIdentity
	}
	plan, err := models.GetPlan(planID)
	if err != nil {
		return nil, ErrInvalidPlan
	}

	now := s.clock.Now()
	end := now.Add(billingPeriod)
	sub := &models.Subscription{
		ID:                 "sub_" + uuid.NewString(),
		UserID:             user.ID,
		PlanID:             planID,
		Plan:               plan,
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   &end,
	}
	if paymentMethodID != "" {
		sub.PaymentMethodID = &paymentMethodID
	}

	// Replaces any previous record for this identity
	if err := s.subs.DeleteByUserID(user.ID); err != nil {
		return nil, err
	}
	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = sub
	s.mu.Unlock()
	s.logger.Printf("subscribed %s to plan %s", user.Email, planID)
	return sub.Clone(), nil
}

// ChangePlan swaps the plan on the existing subscription in place,
// leaving the period dates untouched.
func (s *SubscriptionStore) ChangePlan(ctx context.Context, planID models.PlanID) (*models.Subscription, error) {
	plan, err := models.GetPlan(planID)
	if err != nil {
		return nil, ErrInvalidPlan
	}
	return s.mutate(ctx, func(sub *models.Subscription) {
		sub.PlanID = planID
		sub.Plan = plan
	})
}

// Cancel either flags the subscription to lapse at period end (access
// continues, status stays active) or cancels it immediately.
func (s *SubscriptionStore) Cancel(ctx context.Context, atPeriodEnd bool) (*models.Subscription, error) {
	return s.mutate(ctx, func(sub *models.Subscription) {
		sub.CancelAtPeriodEnd = atPeriodEnd
		if atPeriodEnd {
			sub.Status = models.SubscriptionActive
		} else {
			sub.Status = models.SubscriptionCanceled
		}
	})
}

// Reactivate clears a pending cancellation
func (s *SubscriptionStore) Reactivate(ctx context.Context) (*models.Subscription, error) {
	return s.mutate(ctx, func(sub *models.Subscription) {
		sub.CancelAtPeriodEnd = false
		sub.Status = models.SubscriptionActive
	})
}

// ExpireDue finalizes a pending cancellation once the period has lapsed.
// Called periodically by the billing worker.
func (s *SubscriptionStore) ExpireDue(ctx context.Context) error {
	s.mu.Lock()
	sub := s.current.Clone()
	s.mu.Unlock()
	if sub == nil || !sub.CancelAtPeriodEnd || sub.Status != models.SubscriptionActive {
		return nil
	}
	if sub.CurrentPeriodEnd == nil || s.clock.Now().Before(*sub.CurrentPeriodEnd) {
		return nil
	}
	_, err := s.mutate(ctx, func(sub *models.Subscription) {
		sub.Status = models.SubscriptionCanceled
	})
	if err == nil {
		s.logger.Printf("subscription %s lapsed at period end", sub.ID)
	}
	return err
}

// PaymentMethods lists the current identity's stored instruments
func (s *SubscriptionStore) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	user := s.session.Current()
	if user == nil {
		return nil, auth.ErrNoCurrentIdentity
	}
	return s.methods.ListByUserID(user.ID)
}

// AddPaymentMethod appends a new card. The first method stored for an
// identity becomes the default.
func (s *SubscriptionStore) AddPaymentMethod(ctx context.Context, card models.Card) (*models.PaymentMethod, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	user := s.session.Current()
	if user == nil {
		return nil, auth.ErrNoCurrentIdentity
	}

	existing, err := s.methods.ListByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	pm := &models.PaymentMethod{
		ID:        "pm_" + uuid.NewString(),
		UserID:    user.ID,
		Type:      "card",
		Card:      card,
		IsDefault: len(existing) == 0,
		CreatedAt: s.clock.Now(),
	}
	if err := s.methods.Create(pm); err != nil {
		return nil, err
	}
	cp := *pm
	return &cp, nil
}

// RemovePaymentMethod deletes by id. Removing the default does not
// promote another method; the identity is left with no default.
func (s *SubscriptionStore) RemovePaymentMethod(ctx context.Context, id string) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	if s.session.Current() == nil {
		return auth.ErrNoCurrentIdentity
	}
	return s.methods.Delete(id)
}

// SetDefaultPaymentMethod marks the given method default and clears the
// flag on every other method for the same identity.
func (s *SubscriptionStore) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	user := s.session.Current()
	if user == nil {
		return auth.ErrNoCurrentIdentity
	}

	methods, err := s.methods.ListByUserID(user.ID)
	if err != nil {
		return err
	}
	found := false
	for _, pm := range methods {
		if pm.ID == id {
			found = true
			break
		}
	}
	if !found {
		return store.ErrNotFound
	}
	for _, pm := range methods {
		isDefault := pm.ID == id
		if pm.IsDefault == isDefault {
			continue
		}
		pm.IsDefault = isDefault
		if err := s.methods.Update(&pm); err != nil {
			return err
		}
	}
	return nil
}

// HasFeature reports whether the current plan defines the entitlement
// key, using presence-only semantics unless strict mode is configured.
// False when logged out or the subscription cannot be loaded.
func (s *SubscriptionStore) HasFeature(ctx context.Context, key string) bool {
	sub, err := s.Load(ctx)
	if err != nil {
		return false
	}
	return HasEntitlement(sub.Plan, key, s.strictEntitlements)
}

// CanAccessFeature applies the per-tag entitlement gating to the current
// subscription. False when logged out.
func (s *SubscriptionStore) CanAccessFeature(ctx context.Context, tag FeatureTag) bool {
	sub, err := s.Load(ctx)
	if err != nil {
		return false
	}
	return PlanCanAccessFeature(sub, tag)
}

// GetRemainingDays returns the days left in the current period, nil when
// the subscription has no period end.
func (s *SubscriptionStore) GetRemainingDays(ctx context.Context) (*int, error) {
	sub, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return RemainingDays(sub, s.clock.Now()), nil
}

// mutate loads the current subscription, applies fn, persists, and
// refreshes the cache. A subscription that was implicit becomes explicit
// on its first mutation.
func (s *SubscriptionStore) mutate(ctx context.Context, fn func(*models.Subscription)) (*models.Subscription, error) {
	sub, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	fn(sub)
	if !sub.Explicit() {
		sub.ID = "sub_" + uuid.NewString()
	}
	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = sub
	s.mu.Unlock()
	return sub.Clone(), nil
}

func (s *SubscriptionStore) implicitFree(userID string) *models.Subscription {
	return &models.Subscription{
		UserID:             userID,
		PlanID:             models.PlanFree,
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: models.DateOf(s.clock.Now()),
	}
}

func (s *SubscriptionStore) resolvePlan(sub *models.Subscription) error {
	plan, err := models.GetPlan(sub.PlanID)
	if err != nil {
		return err
	}
	sub.Plan = plan
	return nil
}

func (s *SubscriptionStore) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
