package types

import (
	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// Actor identifies the authenticated caller of a service operation. It is
// built from verified JWT claims by the auth middleware and passed down to
// services for ownership and role checks.
type Actor struct {
	ID     uuid.UUID
	Name   string
	Role   enums.Role
	TeamID string
}

// IsAdmin reports whether the actor carries tenant-admin privileges.
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// CanManageTeam reports whether the actor may act on teammates' records.
func (a Actor) CanManageTeam() bool {
	return a.Role.CanManageTeam()
}

// SameTeam reports whether the actor belongs to the given team.
func (a Actor) SameTeam(teamID string) bool {
	return a.TeamID == teamID
}
