package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// Message backs both team chat and system notifications. System messages
// (bonus alerts, shift assignments) have no sender user and set
// IsSystemMessage. Messages are never edited.
type Message struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Content         string            `gorm:"column:content;not null"`
	SenderID        *uuid.UUID        `gorm:"column:sender_id;type:uuid;index"`
	SenderName      string            `gorm:"column:sender_name;not null"`
	RecipientID     *uuid.UUID        `gorm:"column:recipient_id;type:uuid;index"`
	IsGroupMessage  bool              `gorm:"column:is_group_message;not null;default:false"`
	TeamID          string            `gorm:"column:team_id;not null;index"`
	Type            enums.MessageType `gorm:"column:type;not null"`
	IsSystemMessage bool              `gorm:"column:is_system_message;not null;default:false"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
