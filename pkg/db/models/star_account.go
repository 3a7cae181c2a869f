package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StarAccount holds one user's recognition balance. Rows are created lazily
// and never deleted. TotalStars always equals EarnedStars minus SpentStars.
type StarAccount struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	TeamID      string    `gorm:"column:team_id;not null;index"`
	TotalStars  int       `gorm:"column:total_stars;not null;default:0"`
	EarnedStars int       `gorm:"column:earned_stars;not null;default:0"`
	SpentStars  int       `gorm:"column:spent_stars;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *StarAccount) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
