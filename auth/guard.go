package auth

import (
	"fmt"

	"drivenmind/models"
)

// Outcome is the result class of a guard evaluation
type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeRequireLogin    Outcome = "require-login"
	OutcomeAccessDenied    Outcome = "access-denied"
	OutcomeUpgradeRequired Outcome = "upgrade-required"
)

// GuardCheck describes what a protected surface demands. Zero values mean
// "no requirement of that kind".
type GuardCheck struct {
	RequiredRole models.Role
	Resource     models.ResourceKey
}

// Decision is the rendered outcome of one guard evaluation. Role carries
// the caller's actual role on access-denied outcomes.
type Decision struct {
	Outcome Outcome     `json:"outcome"`
	Role    models.Role `json:"role,omitempty"`
	Message string      `json:"message"`
}

// Allowed reports whether the protected content should be rendered
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Evaluate renders the guard decision for one navigation. Pure function:
// the checks run in fixed order and only the first failure is surfaced,
// even when several would fail.
func Evaluate(user *models.User, check GuardCheck) Decision {
	if user == nil {
		return Decision{
			Outcome: OutcomeRequireLogin,
			Message: "Please sign in to access this content.",
		}
	}

	if check.RequiredRole != "" && !models.HasRole(user.Role, check.RequiredRole) {
		return Decision{
			Outcome: OutcomeAccessDenied,
			Role:    user.Role,
			Message: fmt.Sprintf("You don't have permission to access this content. Your current role: %s", user.Role),
		}
	}

	if check.Resource != "" && !models.RoleCanAccessResource(user.Role, check.Resource) {
		return Decision{
			Outcome: OutcomeUpgradeRequired,
			Message: "This content requires a higher access level. Please upgrade your account to continue.",
		}
	}

	return Decision{Outcome: OutcomeAllow}
}
