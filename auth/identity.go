package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"

	"drivenmind/models"
	"drivenmind/store"
	"drivenmind/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNoCurrentIdentity  = errors.New("no current identity")
)

// Avatar assigned to accounts created through registration
const defaultAvatarURL = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&crop=face"

// ProfileUpdate carries the fields a profile update may merge. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar" validate:"omitempty,url"`
}

// IdentityStore manages the login/registration lifecycle around the
// session handle. Every mutation persists the identity record to the
// session file after the in-memory state is updated, so a reload observes
// the newest value.
type IdentityStore struct {
	repo    store.IdentityRepository
	file    *store.SessionFile
	session *Session
	clock   utils.Clock
	latency time.Duration
	logger  *log.Logger

	onChange func(*models.User)
}

// NewIdentityStore wires the identity store. latency simulates backend
// round trips for UX parity with the mock API; zero disables it.
func NewIdentityStore(repo store.IdentityRepository, file *store.SessionFile, session *Session, clock utils.Clock, latency time.Duration, logger *log.Logger) *IdentityStore {
	return &IdentityStore{
		repo:    repo,
		file:    file,
		session: session,
		clock:   clock,
		latency: latency,
		logger:  logger,
	}
}

// SetOnChange registers a hook invoked whenever the current identity
// changes (login, register, logout). The subscription store uses it to
// drop state belonging to the previous identity.
func (s *IdentityStore) SetOnChange(fn func(*models.User)) {
	s.onChange = fn
}

// Restore reloads the persisted identity on process start. A corrupt or
// missing record leaves the session logged out.
func (s *IdentityStore) Restore() {
	user := s.file.LoadIdentity()
	if user == nil {
		return
	}
	s.session.set(user)
	s.logger.Printf("restored session for %s", user.Email)
	s.notify(user)
}

// Session exposes the session handle for guard evaluation
func (s *IdentityStore) Session() *Session {
	return s.session
}

// Current returns the current identity, or nil when logged out
func (s *IdentityStore) Current() *models.User {
	return s.session.Current()
}

// Login authenticates against the identity set with a case-sensitive
// exact email+password match. On success the identity becomes current,
// its last-login date is stamped to today, and the record is persisted.
func (s *IdentityStore) Login(ctx context.Context, email, password string) (*models.User, error) {
	// Captured before the simulated delay: a logout issued while this call
	// is in flight bumps the generation and the result is discarded.
	gen := s.session.generation()
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil || user.Password != password {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return nil, ErrAccountSuspended
	}

	user.LastLogin = models.DateOf(s.clock.Now())
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}

	if !s.session.setIfGeneration(gen, user) {
		// A logout raced this login; drop the stale result.
		s.logger.Printf("discarding stale login for %s", user.Email)
		return nil, ErrNoCurrentIdentity
	}
	if err := s.file.SaveIdentity(user); err != nil {
		return nil, err
	}
	s.notify(user)
	return user.Clone(), nil
}

// Register creates a new free-tier identity and logs it in
func (s *IdentityStore) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	gen := s.session.generation()
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if _, err := s.repo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	today := models.DateOf(s.clock.Now())
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		Name:      name,
		Role:      models.RoleFree,
		Status:    models.StatusActive,
		AvatarURL: defaultAvatarURL,
		JoinDate:  today,
		LastLogin: today,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if !s.session.setIfGeneration(gen, user) {
		s.logger.Printf("discarding stale registration session for %s", user.Email)
		return user.Clone(), nil
	}
	if err := s.file.SaveIdentity(user); err != nil {
		return nil, err
	}
	s.notify(user)
	return user.Clone(), nil
}

// Logout clears the current identity in memory and on disk. Idempotent.
func (s *IdentityStore) Logout() {
	s.session.clear()
	if err := s.file.ClearIdentity(); err != nil {
		s.logger.Printf("failed to clear persisted session: %v", err)
	}
	s.notify(nil)
}

// UpdateProfile merges the given fields into the current identity and
// persists the result. Returns ErrNoCurrentIdentity when logged out.
func (s *IdentityStore) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	user := s.session.Current()
	if user == nil {
		return nil, ErrNoCurrentIdentity
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	s.session.set(user)
	if err := s.file.SaveIdentity(user); err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

// HasRole reports whether the current identity holds at least the required
// role. False when logged out.
func (s *IdentityStore) HasRole(required models.Role) bool {
	user := s.session.Current()
	if user == nil {
		return false
	}
	return models.HasRole(user.Role, required)
}

// CanAccessResource reports whether the current identity's role may view
// the given protected surface. False when logged out. Distinct from the
// plan-entitlement gate in the billing package.
func (s *IdentityStore) CanAccessResource(resource models.ResourceKey) bool {
	user := s.session.Current()
	if user == nil {
		return false
	}
	return models.RoleCanAccessResource(user.Role, resource)
}

func (s *IdentityStore) notify(user *models.User) {
	if s.onChange != nil {
		s.onChange(user)
	}
}

func (s *IdentityStore) delay(ctx context.Context) error {
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
