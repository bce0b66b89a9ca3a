package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
)

// Repository persists outbox rows and drives the dispatch queue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Enqueue(ctx context.Context, msg Message) (*models.EmailOutbox, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, sendErr string, next time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, sendErr string) error
	CountByStatus(ctx context.Context, status enums.EmailStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an outbox repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Enqueue(ctx context.Context, msg Message) (*models.EmailOutbox, error) {
	row := msg.toRow(time.Now().UTC())
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error) {
	var rows []models.EmailOutbox
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", enums.EmailStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.EmailStatusSent,
			"sent_at":    at,
			"last_error": nil,
		}).Error
}

func (r *repository) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, sendErr string, next time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":        attempts,
			"last_error":      sendErr,
			"next_attempt_at": next,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, sendErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.EmailStatusFailed,
			"attempts":   attempts,
			"last_error": sendErr,
		}).Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.EmailStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
