package stars

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

const resetReason = "System reset by admin"

// Service defines the recognition ledger operations.
type Service interface {
	EnsureAccount(ctx context.Context, userID uuid.UUID, teamID string) (*models.StarAccount, error)
	Earn(ctx context.Context, actor types.Actor, input EarnInput) (*models.StarAccount, error)
	Spend(ctx context.Context, actor types.Actor, input SpendInput) (*models.StarAccount, error)
	ResetAll(ctx context.Context, actor types.Actor) error
	Account(ctx context.Context, actor types.Actor, userID uuid.UUID) (*models.StarAccount, error)
	TeamAccounts(ctx context.Context, actor types.Actor, teamID string) ([]AccountView, error)
	History(ctx context.Context, actor types.Actor, userID uuid.UUID) ([]models.StarHistoryEntry, error)
	TeamHistory(ctx context.Context, actor types.Actor, teamID string) ([]models.StarHistoryEntry, error)
}

type directory interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	TeamRoster(ctx context.Context, teamID string) ([]models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EarnInput awards stars to a user.
type EarnInput struct {
	UserID uuid.UUID
	Amount int
	Reason string
}

// SpendInput redeems stars from a user's balance. UserID defaults to the
// actor; spending for someone else requires admin.
type SpendInput struct {
	UserID uuid.UUID
	Amount int
	Reason string
}

// AccountView decorates a star account with directory details for team
// listings.
type AccountView struct {
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Role        enums.Role `json:"role"`
	Position    string     `json:"position"`
	TeamID      string     `json:"team_id"`
	TotalStars  int        `json:"total_stars"`
	EarnedStars int        `json:"earned_stars"`
	SpentStars  int        `json:"spent_stars"`
}

type service struct {
	repo      Repository
	directory directory
	tx        txRunner

	// mu serializes every mutating ledger operation so concurrent awards,
	// spends and resets apply one at a time.
	mu sync.Mutex
}

// NewService wires the ledger service.
func NewService(repo Repository, dir directory, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stars repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, directory: dir, tx: tx}, nil
}

func (s *service) EnsureAccount(ctx context.Context, userID uuid.UUID, teamID string) (*models.StarAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureAccountLocked(ctx, s.repo, userID, teamID)
}

// ensureAccountLocked lazily creates a zeroed account. Callers must hold
// s.mu. A duplicate insert from a racing writer is treated as success.
func (s *service) ensureAccountLocked(ctx context.Context, repo Repository, userID uuid.UUID, teamID string) (*models.StarAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	account, err := repo.GetAccount(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load star account")
	}

	account = &models.StarAccount{UserID: userID, TeamID: teamID}
	if err := repo.CreateAccount(ctx, account); err != nil {
		if existing, getErr := repo.GetAccount(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create star account")
	}
	return account, nil
}

func (s *service) Earn(ctx context.Context, actor types.Actor, input EarnInput) (*models.StarAccount, error) {
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required to award stars")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	target, err := s.directory.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.SameTeam(target.TeamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot award stars outside own team")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var account *models.StarAccount
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err = s.ensureAccountLocked(ctx, repo, target.ID, target.TeamID)
		if err != nil {
			return err
		}

		account.EarnedStars += input.Amount
		account.TotalStars += input.Amount
		if err := repo.UpdateAccount(ctx, account); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update star account")
		}

		givenBy := actor.Name
		entry := &models.StarHistoryEntry{
			UserID:  &target.ID,
			TeamID:  &target.TeamID,
			Amount:  &input.Amount,
			Reason:  strings.TrimSpace(input.Reason),
			GivenBy: &givenBy,
			Type:    enums.StarEventEarned,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append star history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Spend(ctx context.Context, actor types.Actor, input SpendInput) (*models.StarAccount, error) {
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	userID := input.UserID
	if userID == uuid.Nil {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot spend another user's stars")
	}

	target, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var account *models.StarAccount
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err = s.ensureAccountLocked(ctx, repo, target.ID, target.TeamID)
		if err != nil {
			return err
		}

		if account.TotalStars < input.Amount {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "not enough stars").
				WithDetails(map[string]int{
					"available": account.TotalStars,
					"requested": input.Amount,
				})
		}

		account.SpentStars += input.Amount
		account.TotalStars -= input.Amount
		if err := repo.UpdateAccount(ctx, account); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update star account")
		}

		entry := &models.StarHistoryEntry{
			UserID: &target.ID,
			TeamID: &target.TeamID,
			Amount: &input.Amount,
			Reason: strings.TrimSpace(input.Reason),
			Type:   enums.StarEventSpent,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append star history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ResetAll zeroes every account and appends a single tenant-wide marker.
// The marker carries no user and no amount; its team is the acting admin's.
func (s *service) ResetAll(ctx context.Context, actor types.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.ZeroAllAccounts(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "zero star accounts")
		}

		teamID := actor.TeamID
		entry := &models.StarHistoryEntry{
			TeamID: &teamID,
			Reason: resetReason,
			Type:   enums.StarEventReset,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append reset marker")
		}
		return nil
	})
}

func (s *service) Account(ctx context.Context, actor types.Actor, userID uuid.UUID) (*models.StarAccount, error) {
	if userID == uuid.Nil {
		userID = actor.ID
	}

	target, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(actor, target); err != nil {
		return nil, err
	}

	return s.EnsureAccount(ctx, target.ID, target.TeamID)
}

func (s *service) TeamAccounts(ctx context.Context, actor types.Actor, teamID string) ([]AccountView, error) {
	if teamID == "" {
		teamID = actor.TeamID
	}
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "team management role required")
	}
	if !actor.IsAdmin() && !actor.SameTeam(teamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's stars")
	}

	roster, err := s.directory.TeamRoster(ctx, teamID)
	if err != nil {
		return nil, err
	}

	views := make([]AccountView, 0, len(roster))
	for i := range roster {
		member := &roster[i]
		account, err := s.EnsureAccount(ctx, member.ID, member.TeamID)
		if err != nil {
			return nil, err
		}
		views = append(views, AccountView{
			UserID:      member.ID,
			Name:        member.Name,
			Role:        member.Role,
			Position:    member.Position,
			TeamID:      member.TeamID,
			TotalStars:  account.TotalStars,
			EarnedStars: account.EarnedStars,
			SpentStars:  account.SpentStars,
		})
	}
	return views, nil
}

func (s *service) History(ctx context.Context, actor types.Actor, userID uuid.UUID) ([]models.StarHistoryEntry, error) {
	if userID == uuid.Nil {
		userID = actor.ID
	}

	target, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(actor, target); err != nil {
		return nil, err
	}

	entries, err := s.repo.HistoryByUser(ctx, target.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load star history")
	}
	return entries, nil
}

func (s *service) TeamHistory(ctx context.Context, actor types.Actor, teamID string) ([]models.StarHistoryEntry, error) {
	if teamID == "" {
		teamID = actor.TeamID
	}
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "team management role required")
	}
	if !actor.IsAdmin() && !actor.SameTeam(teamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's history")
	}

	entries, err := s.repo.HistoryByTeam(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load team history")
	}
	return entries, nil
}

func (s *service) canView(actor types.Actor, target *models.User) error {
	if actor.ID == target.ID || actor.IsAdmin() {
		return nil
	}
	if actor.CanManageTeam() && actor.SameTeam(target.TeamID) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "cannot view this user's stars")
}
