package models

// Role is the access level attached to an identity. Roles form a strict
// hierarchy; a higher role satisfies every requirement a lower one does.
type Role string

const (
	RoleFree      Role = "free"
	RolePremium   Role = "premium"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleRank orders the hierarchy. Unknown roles rank 0 and never satisfy
// any requirement, nor are they ever satisfied.
var roleRank = map[Role]int{
	RoleFree:      1,
	RolePremium:   2,
	RoleModerator: 3,
	RoleAdmin:     4,
}

// Rank returns the role's position in the hierarchy, 0 for unknown roles
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether the role is one of the four defined levels
func (r Role) Valid() bool {
	return roleRank[r] != 0
}

// HasRole reports whether current meets or exceeds required. A comparison
// involving an unknown role on either side fails.
func HasRole(current, required Role) bool {
	cur, req := current.Rank(), required.Rank()
	if cur == 0 || req == 0 {
		return false
	}
	return cur >= req
}
