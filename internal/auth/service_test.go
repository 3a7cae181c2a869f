package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillow22-icdconnect/icd-connect-backend/internal/users"
	pkgauth "github.com/apillow22-icdconnect/icd-connect-backend/pkg/auth"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/security"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

type fakeUsers struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUsers) add(user *models.User) *models.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user
}

func (f *fakeUsers) Create(_ context.Context, input users.CreateUserInput) (*models.User, error) {
	if _, ok := f.byEmail[input.Email]; ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	return f.add(&models.User{
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Name:         input.Name,
		Role:         input.Role,
		TeamID:       input.TeamID,
		Position:     input.Position,
		IsActive:     true,
	}), nil
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (f *fakeUsers) Profile(ctx context.Context, id uuid.UUID) (users.Profile, error) {
	user, err := f.Get(ctx, id)
	if err != nil {
		return users.Profile{}, err
	}
	return users.ProfileFromModel(user), nil
}

func (f *fakeUsers) TeamMembers(context.Context, types.Actor, string) ([]users.Profile, error) {
	panic("not used")
}

func (f *fakeUsers) TeamRoster(context.Context, string) ([]models.User, error) { panic("not used") }
func (f *fakeUsers) Admins(context.Context) ([]models.User, error)            { panic("not used") }
func (f *fakeUsers) SalesStaff(context.Context) ([]models.User, error)        { panic("not used") }

func (f *fakeUsers) UpdateProfile(context.Context, types.Actor, users.UpdateProfileInput) (users.Profile, error) {
	panic("not used")
}

func (f *fakeUsers) AdminUpdate(context.Context, types.Actor, uuid.UUID, users.AdminUpdateInput) (users.Profile, error) {
	panic("not used")
}

func (f *fakeUsers) Delete(context.Context, types.Actor, uuid.UUID) error { panic("not used") }

func (f *fakeUsers) Touch(_ context.Context, user *models.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

type fakeLimiter struct {
	counts map[string]int64
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "icd-connect", ExpirationMinutes: 60}
}

func newTestService(t *testing.T, directory users.Service, limiter loginLimiter) Service {
	t.Helper()
	svc, err := NewService(directory, testJWTConfig(), config.PasswordConfig{}, config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginEmailLimit: 3,
		LoginIPLimit:    10,
	}, limiter)
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, directory *fakeUsers, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return directory.add(&models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Jordan Reyes",
		Role:         enums.RoleRep,
		TeamID:       "team1",
		Position:     "Sales Rep",
		IsActive:     true,
	})
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestLoginIssuesTokenAndStampsLastLogin(t *testing.T) {
	directory := newFakeUsers()
	user := seedUser(t, directory, "jordan@example.com", "hunter2hunter2")
	svc := newTestService(t, directory, nil)

	result, err := svc.Login(context.Background(), LoginInput{Email: "  Jordan@Example.com ", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, "jordan@example.com", result.User.Email)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.RoleRep, claims.Role)
	assert.Equal(t, "team1", claims.TeamID)

	require.NotNil(t, directory.byID[user.ID].LastLoginAt)
}

func TestLoginFailuresAreIndistinct(t *testing.T) {
	directory := newFakeUsers()
	seedUser(t, directory, "jordan@example.com", "hunter2hunter2")
	svc := newTestService(t, directory, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "wrong"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	directory := newFakeUsers()
	user := seedUser(t, directory, "jordan@example.com", "hunter2hunter2")
	user.IsActive = false
	svc := newTestService(t, directory, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "hunter2hunter2"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	directory := newFakeUsers()
	seedUser(t, directory, "jordan@example.com", "hunter2hunter2")
	svc := newTestService(t, directory, &fakeLimiter{})

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "wrong"})
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	}

	// Fourth attempt in the window is throttled before credentials are
	// even checked.
	_, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "hunter2hunter2"})
	assertCode(t, err, pkgerrors.CodeRateLimit)
}

func TestLoginValidatesInput(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "", Password: "x"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: ""})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterRequiresAdmin(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), nil)

	rep := types.Actor{ID: uuid.New(), Role: enums.RoleRep, TeamID: "team1"}
	_, err := svc.Register(context.Background(), rep, RegisterInput{
		Email:    "new@example.com",
		Password: "longenough",
		Name:     "New Rep",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRegisterDefaultsRoleAndTeam(t *testing.T) {
	directory := newFakeUsers()
	svc := newTestService(t, directory, nil)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	profile, err := svc.Register(context.Background(), admin, RegisterInput{
		Email:    "new@example.com",
		Password: "longenough",
		Name:     "New Rep",
		Position: "Sales Rep",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleRep, profile.Role)
	assert.Equal(t, "team1", profile.TeamID)

	stored := directory.byEmail["new@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "longenough", stored.PasswordHash)

	ok, err := security.VerifyPassword("longenough", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejectsShortPasswordAndDuplicateEmail(t *testing.T) {
	directory := newFakeUsers()
	seedUser(t, directory, "taken@example.com", "hunter2hunter2")
	svc := newTestService(t, directory, nil)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}

	_, err := svc.Register(context.Background(), admin, RegisterInput{Email: "x@example.com", Password: "short", Name: "X"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(context.Background(), admin, RegisterInput{Email: "taken@example.com", Password: "longenough", Name: "X"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestMeReturnsProfile(t *testing.T) {
	directory := newFakeUsers()
	user := seedUser(t, directory, "jordan@example.com", "hunter2hunter2")
	svc := newTestService(t, directory, nil)

	profile, err := svc.Me(context.Background(), types.Actor{ID: user.ID, Role: enums.RoleRep, TeamID: "team1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)

	_, err = svc.Me(context.Background(), types.Actor{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}
