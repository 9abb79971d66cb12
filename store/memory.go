package store

import (
	"sort"
	"sync"
	"time"

	"drivenmind/models"
)

// memoryDB is the shared state behind the in-memory repositories
type memoryDB struct {
	mu             sync.Mutex
	users          map[string]*models.User // keyed by id
	subscriptions  map[string]*models.Subscription
	paymentMethods map[string]*models.PaymentMethod
}

// MemoryIdentityRepository is the mock identity database
type MemoryIdentityRepository struct{ db *memoryDB }

// MemorySubscriptionRepository is the mock subscription database
type MemorySubscriptionRepository struct{ db *memoryDB }

// MemoryPaymentMethodRepository is the mock payment-method database
type MemoryPaymentMethodRepository struct{ db *memoryDB }

// NewMemoryRepositories returns repositories over a shared in-memory
// database pre-seeded with the demo accounts, subscriptions, and cards.
func NewMemoryRepositories() Repositories {
	db := &memoryDB{
		users:          make(map[string]*models.User),
		subscriptions:  make(map[string]*models.Subscription),
		paymentMethods: make(map[string]*models.PaymentMethod),
	}
	seed(db)
	return Repositories{
		Identities:     &MemoryIdentityRepository{db: db},
		Subscriptions:  &MemorySubscriptionRepository{db: db},
		PaymentMethods: &MemoryPaymentMethodRepository{db: db},
	}
}

// NewEmptyMemoryRepositories returns unseeded repositories, used by tests
// that want full control over the fixture data.
func NewEmptyMemoryRepositories() Repositories {
	db := &memoryDB{
		users:          make(map[string]*models.User),
		subscriptions:  make(map[string]*models.Subscription),
		paymentMethods: make(map[string]*models.PaymentMethod),
	}
	return Repositories{
		Identities:     &MemoryIdentityRepository{db: db},
		Subscriptions:  &MemorySubscriptionRepository{db: db},
		PaymentMethods: &MemoryPaymentMethodRepository{db: db},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seed(db *memoryDB) {
	users := []*models.User{
		{
			ID:        "1",
			Email:     "admin@drivenmind.io",
			Password:  "admin123",
			Name:      "Admin User",
			Role:      models.RoleAdmin,
			Status:    models.StatusActive,
			AvatarURL: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&crop=face",
			JoinDate:  date(2024, 1, 1),
			LastLogin: date(2024, 12, 20),
		},
		{
			ID:        "2",
			Email:     "moderator@drivenmind.io",
			Password:  "mod123",
			Name:      "Moderator User",
			Role:      models.RoleModerator,
			Status:    models.StatusActive,
			AvatarURL: "https://images.unsplash.com/photo-1494790108755-2616b612b5bb?w=100&h=100&fit=crop&crop=face",
			JoinDate:  date(2024, 2, 1),
			LastLogin: date(2024, 12, 19),
		},
		{
			ID:        "3",
			Email:     "premium@example.com",
			Password:  "premium123",
			Name:      "Premium User",
			Role:      models.RolePremium,
			Status:    models.StatusActive,
			AvatarURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100&h=100&fit=crop&crop=face",
			JoinDate:  date(2024, 3, 1),
			LastLogin: date(2024, 12, 18),
		},
		{
			ID:        "4",
			Email:     "user@example.com",
			Password:  "user123",
			Name:      "Free User",
			Role:      models.RoleFree,
			Status:    models.StatusActive,
			AvatarURL: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=100&h=100&fit=crop&crop=face",
			JoinDate:  date(2024, 4, 1),
			LastLogin: date(2024, 12, 17),
		},
	}
	for _, u := range users {
		db.users[u.ID] = u
	}

	periodStart := date(2024, 12, 1)
	periodEnd := date(2025, 1, 1)
	subs := []*models.Subscription{
		{ID: "sub_1", UserID: "1", PlanID: models.PlanElite},
		{ID: "sub_2", UserID: "2", PlanID: models.PlanPro},
		{ID: "sub_3", UserID: "3", PlanID: models.PlanStarter},
	}
	for i, s := range subs {
		s.Status = models.SubscriptionActive
		s.CurrentPeriodStart = periodStart
		end := periodEnd
		s.CurrentPeriodEnd = &end
		pmID := []string{"pm_1", "pm_2", "pm_3"}[i]
		s.PaymentMethodID = &pmID
		db.subscriptions[s.ID] = s
	}

	methods := []*models.PaymentMethod{
		{
			ID:        "pm_1",
			UserID:    "1",
			Type:      "card",
			Card:      models.Card{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2025},
			IsDefault: true,
		},
		{
			ID:     "pm_2",
			UserID: "2",
			Type:   "card",
			Card:   models.Card{Brand: "mastercard", Last4: "5555", ExpMonth: 8, ExpYear: 2026},
		},
	}
	for _, pm := range methods {
		db.paymentMethods[pm.ID] = pm
	}
}

func (r *MemoryIdentityRepository) FindByID(id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryIdentityRepository) FindByEmail(email string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryIdentityRepository) Create(user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.db.users[user.ID] = user.Clone()
	return nil
}

func (r *MemoryIdentityRepository) Update(user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return ErrNotFound
	}
	r.db.users[user.ID] = user.Clone()
	return nil
}

func (r *MemorySubscriptionRepository) FindByUserID(userID string) (*models.Subscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.subscriptions {
		if s.UserID == userID {
			return s.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySubscriptionRepository) Save(sub *models.Subscription) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.subscriptions[sub.ID] = sub.Clone()
	return nil
}

func (r *MemorySubscriptionRepository) DeleteByUserID(userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, s := range r.db.subscriptions {
		if s.UserID == userID {
			delete(r.db.subscriptions, id)
		}
	}
	return nil
}

func (r *MemoryPaymentMethodRepository) ListByUserID(userID string) ([]models.PaymentMethod, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.PaymentMethod
	for _, pm := range r.db.paymentMethods {
		if pm.UserID == userID {
			out = append(out, *pm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryPaymentMethodRepository) Create(pm *models.PaymentMethod) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *pm
	r.db.paymentMethods[pm.ID] = &cp
	return nil
}

func (r *MemoryPaymentMethodRepository) Update(pm *models.PaymentMethod) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.paymentMethods[pm.ID]; !ok {
		return ErrNotFound
	}
	cp := *pm
	r.db.paymentMethods[pm.ID] = &cp
	return nil
}

func (r *MemoryPaymentMethodRepository) Delete(id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.paymentMethods[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.paymentMethods, id)
	return nil
}
