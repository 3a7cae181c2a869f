package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestQuestion is one multiple-choice question. CorrectIndex points into
// Options and is stripped before a test is handed to a taker.
type TestQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// KnowledgeTest is a team-scoped quiz built by managers.
type KnowledgeTest struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title            string         `gorm:"column:title;not null"`
	Description      string         `gorm:"column:description"`
	Questions        []TestQuestion `gorm:"column:questions;serializer:json"`
	TimeLimitMinutes int            `gorm:"column:time_limit_minutes"`
	CreatedBy        uuid.UUID      `gorm:"column:created_by;type:uuid;not null"`
	TeamID           string         `gorm:"column:team_id;not null;index"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *KnowledgeTest) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
