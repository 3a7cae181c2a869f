package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// Profile is the outward-facing view of a user. Password hashes never
// leave the service.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      enums.Role `json:"role"`
	TeamID    string     `json:"team_id"`
	Position  string     `json:"position"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProfileFromModel strips credentials from a directory row.
func ProfileFromModel(u *models.User) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		TeamID:    u.TeamID,
		Position:  u.Position,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ProfilesFromModels maps a directory listing to profiles.
func ProfilesFromModels(list []models.User) []Profile {
	profiles := make([]Profile, 0, len(list))
	for i := range list {
		profiles = append(profiles, ProfileFromModel(&list[i]))
	}
	return profiles
}
