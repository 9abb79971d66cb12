// Package store defines the repository contracts over identity,
// subscription, and payment-method records, plus the durable local
// key-value session file. The in-memory implementation is the default
// mock backend; the GORM implementation satisfies the same contracts
// against Postgres.
package store

import (
	"errors"

	"drivenmind/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when creating an identity with an email
	// that already exists (case-sensitive exact match)
	ErrEmailTaken = errors.New("email already registered")
)

// IdentityRepository stores user accounts. Email lookups are exact and
// case-sensitive, matching the login semantics.
type IdentityRepository interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
}

// SubscriptionRepository stores at most one subscription record per user
type SubscriptionRepository interface {
	FindByUserID(userID string) (*models.Subscription, error)
	Save(sub *models.Subscription) error
	DeleteByUserID(userID string) error
}

// PaymentMethodRepository stores payment instruments per user
type PaymentMethodRepository interface {
	ListByUserID(userID string) ([]models.PaymentMethod, error)
	Create(pm *models.PaymentMethod) error
	Update(pm *models.PaymentMethod) error
	Delete(id string) error
}

// Repositories bundles the three stores so they can be injected together
type Repositories struct {
	Identities     IdentityRepository
	Subscriptions  SubscriptionRepository
	PaymentMethods PaymentMethodRepository
}
