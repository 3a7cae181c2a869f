package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// SaleRecord is one logged sales entry. Owners and admins may edit or
// delete records after the fact.
type SaleRecord struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	SalesCount  int            `gorm:"column:sales_count;not null"`
	Description string         `gorm:"column:description"`
	Date        time.Time      `gorm:"column:date;not null;index"`
	Type        enums.SaleType `gorm:"column:type;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *SaleRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
