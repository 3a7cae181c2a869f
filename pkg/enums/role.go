package enums

import "fmt"

// Role represents a portal-level permissions role.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleAdmin           Role = "admin"
	RoleTeamLeader      Role = "team_leader"
	RoleCampaignManager Role = "campaign_manager"
	RoleRep             Role = "rep"
)

var validRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleTeamLeader,
	RoleCampaignManager,
	RoleRep,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// IsAdmin reports whether the role carries tenant-admin privileges.
// Super admins hold every admin privilege.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsSuperAdmin reports whether the role manages tenants across the platform.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// CanManageTeam reports whether the role may view team-wide records and
// award stars.
func (r Role) CanManageTeam() bool {
	return r.IsAdmin() || r == RoleTeamLeader || r == RoleCampaignManager
}

// IsSalesRole reports whether the role participates in the sales leaderboard
// and bonus program.
func (r Role) IsSalesRole() bool {
	return r == RoleRep || r == RoleTeamLeader || r == RoleCampaignManager
}
