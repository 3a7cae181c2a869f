package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeachBack records one user's confirmation that they can teach the module
// back. At most one confirmation per user is kept.
type TeachBack struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// TrainingModule is team-scoped training material with file descriptors.
type TrainingModule struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description"`
	Category    string          `gorm:"column:category"`
	Files       json.RawMessage `gorm:"column:files;type:json"`
	TeachBacks  []TeachBack     `gorm:"column:teach_backs;serializer:json"`
	CreatedBy   uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	TeamID      string          `gorm:"column:team_id;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *TrainingModule) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
