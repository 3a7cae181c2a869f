package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestResult is one user's submission for a knowledge test. A user may
// submit a given test once.
type TestResult struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TestID      uuid.UUID `gorm:"column:test_id;type:uuid;not null;uniqueIndex:idx_test_results_test_user"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_test_results_test_user"`
	Answers     []int     `gorm:"column:answers;serializer:json"`
	Score       int       `gorm:"column:score;not null"`
	Total       int       `gorm:"column:total;not null"`
	Percentage  float64   `gorm:"column:percentage;not null"`
	CompletedAt time.Time `gorm:"column:completed_at;not null"`
}

func (r *TestResult) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
