package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"drivenmind/models"
)

// GormConfig holds the Postgres connection settings
type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the settings as a lib/pq-style connection string
func (c GormConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// OpenGorm connects to Postgres, migrates the schema, seeds the plan
// catalog, and returns repositories satisfying the same contracts as the
// in-memory backend.
func OpenGorm(cfg GormConfig) (Repositories, *gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.PaymentMethod{},
	); err != nil {
		return Repositories{}, nil, fmt.Errorf("database migration failed: %w", err)
	}

	if err := seedPlans(db); err != nil {
		return Repositories{}, nil, fmt.Errorf("plan seeding failed: %w", err)
	}

	return Repositories{
		Identities:     &GormIdentityRepository{db: db},
		Subscriptions:  &GormSubscriptionRepository{db: db},
		PaymentMethods: &GormPaymentMethodRepository{db: db},
	}, db, nil
}

// seedPlans mirrors the static catalog into the plans table so reporting
// queries can join against it. The catalog in models stays authoritative.
func seedPlans(db *gorm.DB) error {
	for _, plan := range models.DefaultPlans() {
		if err := db.FirstOrCreate(&plan, "id = ?", plan.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// GormIdentityRepository stores user accounts in Postgres
type GormIdentityRepository struct{ db *gorm.DB }

// GormSubscriptionRepository stores subscriptions in Postgres
type GormSubscriptionRepository struct{ db *gorm.DB }

// GormPaymentMethodRepository stores payment methods in Postgres
type GormPaymentMethodRepository struct{ db *gorm.DB }

func (r *GormIdentityRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormIdentityRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormIdentityRepository) Create(user *models.User) error {
	var existing models.User
	if err := r.db.First(&existing, "email = ?", user.Email).Error; err == nil {
		return ErrEmailTaken
	}
	return r.db.Create(user).Error
}

func (r *GormIdentityRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *GormSubscriptionRepository) FindByUserID(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *GormSubscriptionRepository) Save(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *GormSubscriptionRepository) DeleteByUserID(userID string) error {
	return r.db.Delete(&models.Subscription{}, "user_id = ?", userID).Error
}

func (r *GormPaymentMethodRepository) ListByUserID(userID string) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	if err := r.db.Order("created_at, id").Find(&out, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormPaymentMethodRepository) Create(pm *models.PaymentMethod) error {
	return r.db.Create(pm).Error
}

func (r *GormPaymentMethodRepository) Update(pm *models.PaymentMethod) error {
	return r.db.Save(pm).Error
}

func (r *GormPaymentMethodRepository) Delete(id string) error {
	return r.db.Delete(&models.PaymentMethod{}, "id = ?", id).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
