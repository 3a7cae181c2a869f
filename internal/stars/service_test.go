package stars

import (
	"context"
	"sync"
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
	accounts map[uuid.UUID]*models.StarAccount
	history  []models.StarHistoryEntry
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{accounts: make(map[uuid.UUID]*models.StarAccount)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) GetAccount(_ context.Context, userID uuid.UUID) (*models.StarAccount, error) {
	if a, ok := f.accounts[userID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateAccount(_ context.Context, account *models.StarAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	cp := *account
	f.accounts[account.UserID] = &cp
	return nil
}

func (f *fakeRepository) UpdateAccount(_ context.Context, account *models.StarAccount) error {
	cp := *account
	f.accounts[account.UserID] = &cp
	return nil
}

func (f *fakeRepository) ListAccountsByTeam(_ context.Context, teamID string) ([]models.StarAccount, error) {
	var out []models.StarAccount
	for _, a := range f.accounts {
		if a.TeamID == teamID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepository) ZeroAllAccounts(context.Context) error {
	for _, a := range f.accounts {
		a.TotalStars = 0
		a.EarnedStars = 0
		a.SpentStars = 0
	}
	return nil
}

func (f *fakeRepository) AppendHistory(_ context.Context, entry *models.StarHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeRepository) HistoryByUser(_ context.Context, userID uuid.UUID) ([]models.StarHistoryEntry, error) {
	var out []models.StarHistoryEntry
	for _, e := range f.history {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepository) HistoryByTeam(_ context.Context, teamID string) ([]models.StarHistoryEntry, error) {
	var out []models.StarHistoryEntry
	for _, e := range f.history {
		if (e.TeamID != nil && *e.TeamID == teamID) || e.Type == enums.StarEventReset {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeDirectory) add(role enums.Role, teamID string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: uuid.New(), Name: "User " + teamID, Role: role, TeamID: teamID, IsActive: true}
	f.users[u.ID] = u
	return u
}

func (f *fakeDirectory) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (f *fakeDirectory) TeamRoster(_ context.Context, teamID string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.TeamID == teamID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeDirectory) {
	t.Helper()
	repo := newFakeRepository()
	dir := newFakeDirectory()
	svc, err := NewService(repo, dir, stubTxRunner{})
	require.NoError(t, err)
	return svc, repo, dir
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestEarnUpdatesBalanceAndHistory(t *testing.T) {
	svc, repo, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	leader := dir.add(enums.RoleTeamLeader, "team1")
	actor := types.Actor{ID: leader.ID, Name: leader.Name, Role: leader.Role, TeamID: leader.TeamID}

	account, err := svc.Earn(context.Background(), actor, EarnInput{UserID: rep.ID, Amount: 5, Reason: "Great closing"})
	require.NoError(t, err)
	assert.Equal(t, 5, account.TotalStars)
	assert.Equal(t, 5, account.EarnedStars)
	assert.Equal(t, 0, account.SpentStars)

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	assert.Equal(t, enums.StarEventEarned, entry.Type)
	require.NotNil(t, entry.GivenBy)
	assert.Equal(t, leader.Name, *entry.GivenBy)
	require.NotNil(t, entry.Amount)
	assert.Equal(t, 5, *entry.Amount)
}

func TestEarnValidation(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	actor := types.Actor{ID: uuid.New(), Role: enums.RoleTeamLeader, TeamID: "team1"}

	_, err := svc.Earn(context.Background(), actor, EarnInput{UserID: rep.ID, Amount: 0, Reason: "r"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Earn(context.Background(), actor, EarnInput{UserID: rep.ID, Amount: -3, Reason: "r"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Earn(context.Background(), actor, EarnInput{UserID: uuid.New(), Amount: 1, Reason: "r"})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestEarnRequiresManagementRole(t *testing.T) {
	svc, repo, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	colleague := dir.add(enums.RoleRep, "team1")
	actor := types.Actor{ID: rep.ID, Name: rep.Name, Role: rep.Role, TeamID: rep.TeamID}

	// A rep cannot award stars, not to a teammate and not to themselves,
	// even with a valid payload.
	_, err := svc.Earn(context.Background(), actor, EarnInput{UserID: colleague.ID, Amount: 5, Reason: "helped me close"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Earn(context.Background(), actor, EarnInput{UserID: rep.ID, Amount: 5, Reason: "self service"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	assert.Empty(t, repo.history)
	assert.Empty(t, repo.accounts)
}

func TestEarnCrossTeamForbiddenForNonAdmin(t *testing.T) {
	svc, _, dir := newTestService(t)
	other := dir.add(enums.RoleRep, "team2")
	leader := types.Actor{ID: uuid.New(), Role: enums.RoleTeamLeader, TeamID: "team1"}

	_, err := svc.Earn(context.Background(), leader, EarnInput{UserID: other.ID, Amount: 1, Reason: "r"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	_, err = svc.Earn(context.Background(), admin, EarnInput{UserID: other.ID, Amount: 1, Reason: "r"})
	require.NoError(t, err)
}

func TestSpendRejectsInsufficientBalanceWithoutMutation(t *testing.T) {
	svc, repo, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	actor := types.Actor{ID: rep.ID, Name: rep.Name, Role: rep.Role, TeamID: rep.TeamID}
	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}

	_, err := svc.Earn(context.Background(), admin, EarnInput{UserID: rep.ID, Amount: 3, Reason: "seed"})
	require.NoError(t, err)
	historyBefore := len(repo.history)

	_, err = svc.Spend(context.Background(), actor, SpendInput{Amount: 10, Reason: "prize"})
	assertCode(t, err, pkgerrors.CodeInsufficientBalance)

	account, err := svc.Account(context.Background(), actor, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, account.TotalStars)
	assert.Equal(t, 0, account.SpentStars)
	assert.Len(t, repo.history, historyBefore, "failed spend must not append history")
}

func TestSpendKeepsLedgerInvariant(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	actor := types.Actor{ID: rep.ID, Role: rep.Role, TeamID: rep.TeamID}
	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}

	_, err := svc.Earn(context.Background(), admin, EarnInput{UserID: rep.ID, Amount: 10, Reason: "seed"})
	require.NoError(t, err)

	account, err := svc.Spend(context.Background(), actor, SpendInput{Amount: 4, Reason: "gift card"})
	require.NoError(t, err)
	assert.Equal(t, 6, account.TotalStars)
	assert.Equal(t, 10, account.EarnedStars)
	assert.Equal(t, 4, account.SpentStars)
	assert.Equal(t, account.TotalStars, account.EarnedStars-account.SpentStars)
}

func TestSpendForAnotherUserRequiresAdmin(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	other := dir.add(enums.RoleRep, "team1")

	actor := types.Actor{ID: rep.ID, Role: rep.Role, TeamID: rep.TeamID}
	_, err := svc.Spend(context.Background(), actor, SpendInput{UserID: other.ID, Amount: 1, Reason: "r"})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestResetAllZeroesEveryAccountAndAppendsSingleMarker(t *testing.T) {
	svc, repo, dir := newTestService(t)
	a := dir.add(enums.RoleRep, "team1")
	b := dir.add(enums.RoleRep, "team2")
	admin := dir.add(enums.RoleAdmin, "team1")
	actorAdmin := types.Actor{ID: admin.ID, Name: admin.Name, Role: admin.Role, TeamID: admin.TeamID}

	_, err := svc.Earn(context.Background(), actorAdmin, EarnInput{UserID: a.ID, Amount: 7, Reason: "seed"})
	require.NoError(t, err)
	_, err = svc.Earn(context.Background(), actorAdmin, EarnInput{UserID: b.ID, Amount: 9, Reason: "seed"})
	require.NoError(t, err)

	historyBefore := len(repo.history)
	require.NoError(t, svc.ResetAll(context.Background(), actorAdmin))

	for _, userID := range []uuid.UUID{a.ID, b.ID} {
		account, err := svc.Account(context.Background(), actorAdmin, userID)
		require.NoError(t, err)
		assert.Zero(t, account.TotalStars)
		assert.Zero(t, account.EarnedStars)
		assert.Zero(t, account.SpentStars)
	}

	require.Len(t, repo.history, historyBefore+1)
	marker := repo.history[len(repo.history)-1]
	assert.Equal(t, enums.StarEventReset, marker.Type)
	assert.Nil(t, marker.UserID)
	assert.Nil(t, marker.Amount)
	assert.Equal(t, "System reset by admin", marker.Reason)
}

func TestResetAllRequiresAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	leader := types.Actor{ID: uuid.New(), Role: enums.RoleTeamLeader, TeamID: "team1"}
	assertCode(t, svc.ResetAll(context.Background(), leader), pkgerrors.CodeForbidden)
}

func TestTeamHistoryIncludesResetMarkersFromOtherTeams(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	admin := dir.add(enums.RoleAdmin, "team2")
	actorAdmin := types.Actor{ID: admin.ID, Name: admin.Name, Role: admin.Role, TeamID: admin.TeamID}

	_, err := svc.Earn(context.Background(), actorAdmin, EarnInput{UserID: rep.ID, Amount: 2, Reason: "seed"})
	require.NoError(t, err)
	require.NoError(t, svc.ResetAll(context.Background(), actorAdmin))

	leader := types.Actor{ID: uuid.New(), Role: enums.RoleTeamLeader, TeamID: "team1"}
	entries, err := svc.TeamHistory(context.Background(), leader, "team1")
	require.NoError(t, err)

	var sawReset bool
	for _, e := range entries {
		if e.Type == enums.StarEventReset {
			sawReset = true
		}
	}
	assert.True(t, sawReset, "reset marker issued by a team2 admin must appear in team1 history")
}

func TestTeamAccountsDecoratesRoster(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	dir.add(enums.RoleRep, "team2")
	leader := dir.add(enums.RoleTeamLeader, "team1")
	actor := types.Actor{ID: leader.ID, Role: leader.Role, TeamID: leader.TeamID}

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	_, err := svc.Earn(context.Background(), admin, EarnInput{UserID: rep.ID, Amount: 4, Reason: "seed"})
	require.NoError(t, err)

	views, err := svc.TeamAccounts(context.Background(), actor, "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byUser := make(map[uuid.UUID]AccountView, len(views))
	for _, v := range views {
		byUser[v.UserID] = v
	}
	assert.Equal(t, 4, byUser[rep.ID].TotalStars)
	assert.Equal(t, rep.Name, byUser[rep.ID].Name)
	assert.Zero(t, byUser[leader.ID].TotalStars, "accounts are lazily created zeroed")
}

func TestTeamViewsRequireManagementRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	rep := types.Actor{ID: uuid.New(), Role: enums.RoleRep, TeamID: "team1"}

	_, err := svc.TeamAccounts(context.Background(), rep, "team1")
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.TeamHistory(context.Background(), rep, "team1")
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestConcurrentEarnsSerialize(t *testing.T) {
	svc, _, dir := newTestService(t)
	rep := dir.add(enums.RoleRep, "team1")
	admin := types.Actor{ID: uuid.New(), Name: "Admin", Role: enums.RoleAdmin, TeamID: "team1"}

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Earn(context.Background(), admin, EarnInput{UserID: rep.ID, Amount: 1, Reason: "race"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := svc.Account(context.Background(), admin, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, account.TotalStars)
	assert.Equal(t, workers, account.EarnedStars)
}
