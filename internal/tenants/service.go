package tenants

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Service manages the organizations served by the portal.
type Service interface {
	Seed(ctx context.Context, cfg config.TenantConfig) (*models.Tenant, error)
	ResolveHost(ctx context.Context, host string) (*models.Tenant, error)
	List(ctx context.Context, actor types.Actor) ([]models.Tenant, error)
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Tenant, error)
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Tenant, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Tenant, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	DomainAvailable(ctx context.Context, domain string) (bool, error)
}

// CreateInput provisions a new tenant.
type CreateInput struct {
	Name         string
	Domain       string
	Subdomain    string
	CustomDomain *string
	Theme        json.RawMessage
	Features     json.RawMessage
	Settings     json.RawMessage
}

// UpdateInput patches tenant branding and configuration.
type UpdateInput struct {
	Name         *string
	CustomDomain *string
	Theme        json.RawMessage
	Features     json.RawMessage
	Settings     json.RawMessage
	Status       *enums.TenantStatus
}

type service struct {
	repo Repository
}

// NewService wires the tenant service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	return &service{repo: repo}, nil
}

// Seed ensures the default tenant exists. It runs on every boot and is
// idempotent.
func (s *service) Seed(ctx context.Context, cfg config.TenantConfig) (*models.Tenant, error) {
	existing, err := s.repo.GetBySlug(ctx, models.DefaultTenantSlug)
	if err == nil {
		return existing, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default tenant")
	}

	tenant := &models.Tenant{
		Slug:      models.DefaultTenantSlug,
		Name:      cfg.DefaultName,
		Domain:    cfg.DefaultDomain,
		Subdomain: models.DefaultTenantSlug,
		Status:    enums.TenantStatusActive,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed default tenant")
	}
	return tenant, nil
}

// ResolveHost maps a request host to its tenant. Custom domains win over
// subdomain prefixes, which win over exact domain matches.
func (s *service) ResolveHost(ctx context.Context, host string) (*models.Tenant, error) {
	host = normalizeHost(host)
	if host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "host is required")
	}

	if tenant, err := s.repo.GetByCustomDomain(ctx, host); err == nil {
		return tenant, nil
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve custom domain")
	}

	if label, _, found := strings.Cut(host, "."); found {
		if tenant, err := s.repo.GetBySubdomain(ctx, label); err == nil {
			return tenant, nil
		} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve subdomain")
		}
	}

	tenant, err := s.repo.GetByDomain(ctx, host)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no tenant for host")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve domain")
	}
	return tenant, nil
}

func (s *service) List(ctx context.Context, actor types.Actor) ([]models.Tenant, error) {
	if !actor.Role.IsSuperAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "super admin role required")
	}
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}
	return tenants, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Tenant, error) {
	if !actor.Role.IsSuperAdmin() && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return s.load(ctx, id)
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Tenant, error) {
	if !actor.Role.IsSuperAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "super admin role required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	domain := normalizeHost(input.Domain)
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "domain is required")
	}

	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	if subdomain == "" {
		subdomain = slugify(input.Name)
	}

	available, err := s.DomainAvailable(ctx, domain)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "domain already in use")
	}
	if _, err := s.repo.GetBySlug(ctx, subdomain); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subdomain already in use")
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subdomain")
	}

	tenant := &models.Tenant{
		Slug:         subdomain,
		Name:         strings.TrimSpace(input.Name),
		Domain:       domain,
		Subdomain:    subdomain,
		CustomDomain: input.CustomDomain,
		Theme:        input.Theme,
		Features:     input.Features,
		Settings:     input.Settings,
		Status:       enums.TenantStatusActive,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}
	return tenant, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Tenant, error) {
	if !actor.Role.IsSuperAdmin() && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		tenant.Name = strings.TrimSpace(*input.Name)
	}
	if input.CustomDomain != nil {
		tenant.CustomDomain = input.CustomDomain
	}
	if input.Theme != nil {
		tenant.Theme = input.Theme
	}
	if input.Features != nil {
		tenant.Features = input.Features
	}
	if input.Settings != nil {
		tenant.Settings = input.Settings
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tenant status %q", *input.Status))
		}
		tenant.Status = *input.Status
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant")
	}
	return tenant, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if !actor.Role.IsSuperAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "super admin role required")
	}

	tenant, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if tenant.Slug == models.DefaultTenantSlug {
		return pkgerrors.New(pkgerrors.CodeValidation, "default tenant cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tenant")
	}
	return nil
}

func (s *service) DomainAvailable(ctx context.Context, domain string) (bool, error) {
	domain = normalizeHost(domain)
	if domain == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "domain is required")
	}

	if _, err := s.repo.GetByDomain(ctx, domain); err == nil {
		return false, nil
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check domain")
	}
	if _, err := s.repo.GetByCustomDomain(ctx, domain); err == nil {
		return false, nil
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check custom domain")
	}
	return true, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return tenant, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

func slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	return strings.Trim(slug, "-")
}
