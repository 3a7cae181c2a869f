package tests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
)

// Repository manages persistence for knowledge tests and their results.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, test *models.KnowledgeTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeTest, error)
	Update(ctx context.Context, test *models.KnowledgeTest) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTeam(ctx context.Context, teamID string, activeOnly bool) ([]models.KnowledgeTest, error)

	CreateResult(ctx context.Context, result *models.TestResult) error
	GetResult(ctx context.Context, testID, userID uuid.UUID) (*models.TestResult, error)
	ListResultsByTest(ctx context.Context, testID uuid.UUID) ([]models.TestResult, error)
	ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, test *models.KnowledgeTest) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeTest, error) {
	var test models.KnowledgeTest
	if err := r.db.WithContext(ctx).First(&test, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *repository) Update(ctx context.Context, test *models.KnowledgeTest) error {
	return r.db.WithContext(ctx).Save(test).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TestResult{}, "test_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.KnowledgeTest{}, "id = ?", id).Error
	})
}

func (r *repository) ListByTeam(ctx context.Context, teamID string, activeOnly bool) ([]models.KnowledgeTest, error) {
	query := r.db.WithContext(ctx).Where("team_id = ?", teamID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var tests []models.KnowledgeTest
	if err := query.Order("created_at DESC").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *repository) CreateResult(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *repository) GetResult(ctx context.Context, testID, userID uuid.UUID) (*models.TestResult, error) {
	var result models.TestResult
	if err := r.db.WithContext(ctx).
		First(&result, "test_id = ? AND user_id = ?", testID, userID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) ListResultsByTest(ctx context.Context, testID uuid.UUID) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) ListResultsByUser(ctx context.Context, userID uuid.UUID) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
