package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

type fakeRepository struct {
	users map[uuid.UUID]*models.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListByTeam(_ context.Context, teamID string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.TeamID == teamID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByRoles(_ context.Context, roles ...enums.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, user *models.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func seedUser(t *testing.T, repo *fakeRepository, role enums.Role, teamID string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        uuid.NewString() + "@icdconnect.com",
		PasswordHash: "hash",
		Name:         "Seed User",
		Role:         role,
		TeamID:       teamID,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	input := CreateUserInput{
		Email:        "rep@icdconnect.com",
		PasswordHash: "hash",
		Name:         "Mike Davis",
		Role:         enums.RoleRep,
		TeamID:       "team1",
	}
	_, err = svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{PasswordHash: "h", Name: "n", Role: enums.RoleRep, TeamID: "t"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "a@b.c", PasswordHash: "h", Name: "n", Role: enums.Role("boss"), TeamID: "t"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestGetMapsMissingUserToNotFound(t *testing.T) {
	svc, err := NewService(newFakeRepository())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestTeamMembersScopedToOwnTeam(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	seedUser(t, repo, enums.RoleRep, "team1")
	seedUser(t, repo, enums.RoleRep, "team2")
	leader := seedUser(t, repo, enums.RoleTeamLeader, "team1")

	actor := types.Actor{ID: leader.ID, Role: leader.Role, TeamID: leader.TeamID}

	members, err := svc.TeamMembers(context.Background(), actor, "team1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.TeamMembers(context.Background(), actor, "team2")
	assertCode(t, err, pkgerrors.CodeForbidden)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	members, err = svc.TeamMembers(context.Background(), admin, "team2")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestProfileOmitsPasswordHash(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	user := seedUser(t, repo, enums.RoleRep, "team1")
	profile, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, user.Role, profile.Role)
}

func TestAdminUpdateRequiresAdmin(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	target := seedUser(t, repo, enums.RoleRep, "team1")
	rep := types.Actor{ID: uuid.New(), Role: enums.RoleRep, TeamID: "team1"}

	newRole := enums.RoleTeamLeader
	_, err = svc.AdminUpdate(context.Background(), rep, target.ID, AdminUpdateInput{Role: &newRole})
	assertCode(t, err, pkgerrors.CodeForbidden)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	updated, err := svc.AdminUpdate(context.Background(), admin, target.ID, AdminUpdateInput{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleTeamLeader, updated.Role)
}

func TestDeleteGuards(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	require.NoError(t, err)

	target := seedUser(t, repo, enums.RoleRep, "team1")
	admin := seedUser(t, repo, enums.RoleAdmin, "team1")
	actor := types.Actor{ID: admin.ID, Role: admin.Role, TeamID: admin.TeamID}

	assertCode(t, svc.Delete(context.Background(), actor, admin.ID), pkgerrors.CodeValidation)
	assertCode(t, svc.Delete(context.Background(), types.Actor{ID: target.ID, Role: enums.RoleRep}, admin.ID), pkgerrors.CodeForbidden)

	require.NoError(t, svc.Delete(context.Background(), actor, target.ID))
	_, err = svc.Get(context.Background(), target.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}
