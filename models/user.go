package models

import (
	"time"
)

// AccountStatus is an open status enum: any status is reachable from any
// other via explicit admin action, there is no transition guard.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
)

// User represents a user account in the system
type User struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Mock credential, compared verbatim on login. Real password hashing
	// is out of scope for this advisory access model.
	Password string `gorm:"not null" json:"-"`

	// Profile information
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`

	// Access control
	Role   Role          `gorm:"not null;default:'free'" json:"role"`
	Status AccountStatus `gorm:"not null;default:'active'" json:"status"`

	// Calendar-date granularity, time-of-day is always midnight
	JoinDate  time.Time `json:"join_date"`
	LastLogin time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize strips the credential before the record leaves the store
func (u *User) Sanitize() {
	u.Password = ""
}

// Clone returns a copy so callers cannot mutate store-owned state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// DateOf truncates a timestamp to calendar-date granularity
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
