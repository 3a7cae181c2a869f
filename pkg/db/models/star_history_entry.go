package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// StarHistoryEntry is an append-only record of a ledger event. Entries are
// never edited or removed. Reset markers carry no user and no amount.
type StarHistoryEntry struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	TeamID    *string             `gorm:"column:team_id;index"`
	Amount    *int                `gorm:"column:amount"`
	Reason    string              `gorm:"column:reason;not null"`
	GivenBy   *string             `gorm:"column:given_by"`
	Type      enums.StarEventType `gorm:"column:type;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (e *StarHistoryEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
