package training

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
)

// Repository manages persistence for training modules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, module *models.TrainingModule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingModule, error)
	Update(ctx context.Context, module *models.TrainingModule) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTeam(ctx context.Context, teamID string) ([]models.TrainingModule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a training repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, module *models.TrainingModule) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingModule, error) {
	var module models.TrainingModule
	if err := r.db.WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *repository) Update(ctx context.Context, module *models.TrainingModule) error {
	return r.db.WithContext(ctx).Save(module).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TrainingModule{}, "id = ?", id).Error
}

func (r *repository) ListByTeam(ctx context.Context, teamID string) ([]models.TrainingModule, error) {
	var modules []models.TrainingModule
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}
