package stars

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
)

// Repository manages persistence for star accounts and the append-only
// history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetAccount(ctx context.Context, userID uuid.UUID) (*models.StarAccount, error)
	CreateAccount(ctx context.Context, account *models.StarAccount) error
	UpdateAccount(ctx context.Context, account *models.StarAccount) error
	ListAccountsByTeam(ctx context.Context, teamID string) ([]models.StarAccount, error)
	ZeroAllAccounts(ctx context.Context) error
	AppendHistory(ctx context.Context, entry *models.StarHistoryEntry) error
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.StarHistoryEntry, error)
	HistoryByTeam(ctx context.Context, teamID string) ([]models.StarHistoryEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stars repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetAccount(ctx context.Context, userID uuid.UUID) (*models.StarAccount, error) {
	var account models.StarAccount
	if err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *models.StarAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) UpdateAccount(ctx context.Context, account *models.StarAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) ListAccountsByTeam(ctx context.Context, teamID string) ([]models.StarAccount, error) {
	var accounts []models.StarAccount
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) ZeroAllAccounts(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.StarAccount{}).
		Where("1 = 1").
		Updates(map[string]any{
			"total_stars":  0,
			"earned_stars": 0,
			"spent_stars":  0,
		}).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.StarHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.StarHistoryEntry, error) {
	var entries []models.StarHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryByTeam returns the team's entries plus every reset marker. Reset
// markers apply to all teams regardless of which admin issued them.
func (r *repository) HistoryByTeam(ctx context.Context, teamID string) ([]models.StarHistoryEntry, error) {
	var entries []models.StarHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("team_id = ? OR type = ?", teamID, enums.StarEventReset).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
