//go:build db
// +build db

package stars

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StarAccount{}, &models.StarHistoryEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestRepositoryAccountFlow(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	userID := uuid.New()
	account := &models.StarAccount{ID: uuid.New(), UserID: userID, TeamID: "team1"}
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	// user_id carries a unique index
	dup := &models.StarAccount{ID: uuid.New(), UserID: userID, TeamID: "team1"}
	if err := repo.CreateAccount(ctx, dup); err == nil {
		t.Fatal("expected duplicate account insert to fail")
	}

	account.EarnedStars = 5
	account.TotalStars = 5
	if err := repo.UpdateAccount(ctx, account); err != nil {
		t.Fatalf("update account: %v", err)
	}

	got, err := repo.GetAccount(ctx, userID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.TotalStars != 5 || got.EarnedStars != 5 {
		t.Fatalf("unexpected account state: %+v", got)
	}

	if err := repo.ZeroAllAccounts(ctx); err != nil {
		t.Fatalf("zero accounts: %v", err)
	}
	got, err = repo.GetAccount(ctx, userID)
	if err != nil {
		t.Fatalf("get account after reset: %v", err)
	}
	if got.TotalStars != 0 || got.EarnedStars != 0 || got.SpentStars != 0 {
		t.Fatalf("reset left counters: %+v", got)
	}
}

func TestRepositoryTeamHistoryIncludesResetMarkers(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	userID := uuid.New()
	team := "team1"
	amount := 3
	entries := []*models.StarHistoryEntry{
		{ID: uuid.New(), UserID: &userID, TeamID: &team, Amount: &amount, Reason: "closed a deal", Type: enums.StarEventEarned},
		{ID: uuid.New(), Reason: "System reset by admin", Type: enums.StarEventReset},
	}
	for _, e := range entries {
		if err := repo.AppendHistory(ctx, e); err != nil {
			t.Fatalf("append history: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	other := "team2"
	if err := repo.AppendHistory(ctx, &models.StarHistoryEntry{
		ID: uuid.New(), TeamID: &other, Amount: &amount, Reason: "other team", Type: enums.StarEventEarned,
	}); err != nil {
		t.Fatalf("append history: %v", err)
	}

	history, err := repo.HistoryByTeam(ctx, team)
	if err != nil {
		t.Fatalf("team history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected team entry plus reset marker, got %d entries", len(history))
	}
	for _, e := range history {
		if e.TeamID != nil && *e.TeamID == other {
			t.Fatalf("other team's entry leaked into history")
		}
	}
}
