package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// DefaultTenantSlug names the tenant seeded on first boot. It cannot be
// deleted.
const DefaultTenantSlug = "default"

// Tenant is one organization served by the portal. Requests are mapped to a
// tenant by host: custom domain first, then subdomain prefix, then exact
// domain.
type Tenant struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string             `gorm:"column:slug;not null;uniqueIndex"`
	Name         string             `gorm:"column:name;not null"`
	Domain       string             `gorm:"column:domain;not null;uniqueIndex"`
	Subdomain    string             `gorm:"column:subdomain;not null;index"`
	CustomDomain *string            `gorm:"column:custom_domain"`
	Theme        json.RawMessage    `gorm:"column:theme;type:json"`
	Features     json.RawMessage    `gorm:"column:features;type:json"`
	Settings     json.RawMessage    `gorm:"column:settings;type:json"`
	Status       enums.TenantStatus `gorm:"column:status;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
