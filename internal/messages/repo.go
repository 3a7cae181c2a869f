package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
)

// Repository manages persistence for chat messages and system notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListInbox(ctx context.Context, teamID string, userID uuid.UUID) ([]models.Message, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	Thread(ctx context.Context, a, b uuid.UUID) ([]models.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a message repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListInbox returns the team's group messages plus anything addressed to or
// sent by the user, newest first.
func (r *repository) ListInbox(ctx context.Context, teamID string, userID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND (is_group_message = ? OR recipient_id = ? OR sender_id = ?)", teamID, true, userID, userID).
		Or("recipient_id = ?", userID).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *repository) ListSent(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// Thread returns the private conversation between two users, oldest first.
func (r *repository) Thread(ctx context.Context, a, b uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("is_group_message = ?", false).
		Where(
			r.db.Where("sender_id = ? AND recipient_id = ?", a, b).
				Or("sender_id = ? AND recipient_id = ?", b, a),
		).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id).Error
}
