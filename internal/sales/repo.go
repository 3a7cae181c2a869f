package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
)

// Repository manages persistence for sale records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.SaleRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	Update(ctx context.Context, record *models.SaleRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SaleRecord, error)
	ListAll(ctx context.Context) ([]models.SaleRecord, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.SaleRecord, error)
	TotalForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	var record models.SaleRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SaleRecord{}, "id = ?", id).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByDateRange returns records whose date falls inside [start, end],
// both bounds inclusive.
func (r *repository) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) TotalForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.SaleRecord{}).
		Select("SUM(sales_count)").
		Where("user_id = ?", userID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
