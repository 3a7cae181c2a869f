package tenants

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

type fakeRepository struct {
	tenants map[uuid.UUID]*models.Tenant
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{tenants: make(map[uuid.UUID]*models.Tenant)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, tenant *models.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	cp := *tenant
	f.tenants[tenant.ID] = &cp
	return nil
}

func (f *fakeRepository) find(match func(*models.Tenant) bool) (*models.Tenant, error) {
	for _, t := range f.tenants {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	return f.find(func(t *models.Tenant) bool { return t.ID == id })
}

func (f *fakeRepository) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	return f.find(func(t *models.Tenant) bool { return t.Slug == slug })
}

func (f *fakeRepository) GetByDomain(_ context.Context, domain string) (*models.Tenant, error) {
	return f.find(func(t *models.Tenant) bool { return t.Domain == domain })
}

func (f *fakeRepository) GetByCustomDomain(_ context.Context, domain string) (*models.Tenant, error) {
	return f.find(func(t *models.Tenant) bool { return t.CustomDomain != nil && *t.CustomDomain == domain })
}

func (f *fakeRepository) GetBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	return f.find(func(t *models.Tenant) bool { return t.Subdomain == subdomain })
}

func (f *fakeRepository) List(context.Context) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range f.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, tenant *models.Tenant) error {
	cp := *tenant
	f.tenants[tenant.ID] = &cp
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tenants, id)
	return nil
}

func superAdmin() types.Actor {
	return types.Actor{ID: uuid.New(), Role: enums.RoleSuperAdmin, TeamID: "team1"}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func seedDefault(t *testing.T, svc Service) *models.Tenant {
	t.Helper()
	tenant, err := svc.Seed(context.Background(), config.TenantConfig{DefaultName: "ICD Connect", DefaultDomain: "localhost"})
	require.NoError(t, err)
	return tenant
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	first := seedDefault(t, svc)
	second := seedDefault(t, svc)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.tenants, 1)
	assert.Equal(t, models.DefaultTenantSlug, first.Slug)
}

func TestResolveHostPrecedence(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	seedDefault(t, svc)
	custom := "portal.acme-sales.com"
	acme, err := svc.Create(context.Background(), superAdmin(), CreateInput{
		Name:         "Acme Sales",
		Domain:       "acme.icdconnect.com",
		Subdomain:    "acme",
		CustomDomain: &custom,
	})
	require.NoError(t, err)

	// Custom domain wins.
	got, err := svc.ResolveHost(context.Background(), "portal.acme-sales.com:443")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)

	// Subdomain prefix.
	got, err = svc.ResolveHost(context.Background(), "acme.icdconnect.com")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)

	// Exact domain.
	got, err = svc.ResolveHost(context.Background(), "localhost:5001")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTenantSlug, got.Slug)

	_, err = svc.ResolveHost(context.Background(), "unknown.example.net")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateRequiresSuperAdminAndUniqueDomain(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin}
	_, err = svc.Create(context.Background(), admin, CreateInput{Name: "X", Domain: "x.test"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Create(context.Background(), superAdmin(), CreateInput{Name: "X", Domain: "x.test"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), superAdmin(), CreateInput{Name: "Y", Domain: "x.test"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDefaultTenantCannotBeDeleted(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	def := seedDefault(t, svc)
	assertCode(t, svc.Delete(context.Background(), superAdmin(), def.ID), pkgerrors.CodeValidation)

	other, err := svc.Create(context.Background(), superAdmin(), CreateInput{Name: "Acme", Domain: "acme.test"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), superAdmin(), other.ID))
}

func TestUpdateAllowedForAdminToo(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	def := seedDefault(t, svc)

	name := "Renamed"
	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin}
	updated, err := svc.Update(context.Background(), admin, def.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	rep := types.Actor{ID: uuid.New(), Role: enums.RoleRep}
	_, err = svc.Update(context.Background(), rep, def.ID, UpdateInput{Name: &name})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestDomainAvailable(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	seedDefault(t, svc)

	available, err := svc.DomainAvailable(context.Background(), "localhost")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.DomainAvailable(context.Background(), "fresh.example.com")
	require.NoError(t, err)
	assert.True(t, available)
}
