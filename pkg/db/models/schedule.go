package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// Shift is one assigned slot inside a schedule. EmployeeID may be empty for
// unassigned slots; assigned shifts trigger a notification on save.
type Shift struct {
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

// Schedule is a team-scoped weekly plan of shifts and activities.
type Schedule struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title       string             `gorm:"column:title;not null"`
	Description string             `gorm:"column:description"`
	WeekOf      time.Time          `gorm:"column:week_of;not null"`
	Type        enums.ScheduleType `gorm:"column:type;not null"`
	Activities  json.RawMessage    `gorm:"column:activities;type:json"`
	Shifts      []Shift            `gorm:"column:shifts;serializer:json"`
	CreatedBy   uuid.UUID          `gorm:"column:created_by;type:uuid;not null"`
	CreatorName string             `gorm:"column:creator_name;not null"`
	TeamID      string             `gorm:"column:team_id;not null;index"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
