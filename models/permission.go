package models

// ResourceKey names a protected surface in the role-permission table.
// This table gates by role; plan-entitlement gating lives in billing.
type ResourceKey string

const (
	ResourceAdminDashboard    ResourceKey = "admin-dashboard"
	ResourceUserManagement    ResourceKey = "user-management"
	ResourceContentManagement ResourceKey = "content-management"
	ResourcePremiumContent    ResourceKey = "premium-content"
	ResourceBasicContent      ResourceKey = "basic-content"
)

var permissionTable = map[ResourceKey][]Role{
	ResourceAdminDashboard:    {RoleAdmin},
	ResourceUserManagement:    {RoleAdmin},
	ResourceContentManagement: {RoleAdmin, RoleModerator},
	ResourcePremiumContent:    {RoleAdmin, RoleModerator, RolePremium},
	ResourceBasicContent:      {RoleAdmin, RoleModerator, RolePremium, RoleFree},
}

// RoleCanAccessResource consults the permission table. A resource missing
// from the table is denied for every role, admins included.
func RoleCanAccessResource(role Role, resource ResourceKey) bool {
	allowed, ok := permissionTable[resource]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
