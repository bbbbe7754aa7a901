package repository

import (
	"context"

	"go-blindbox-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementFilter struct {
	ProductID *uuid.UUID
	OptionID  *uuid.UUID
	Reason    model.MovementReason
	Limit     int
	Offset    int
}

// MovementRepository is append-only: there is no update or delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	// Find returns matching movements newest first plus the unpaged total.
	Find(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

func (r *movementRepo) Find(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.OptionID != nil {
		q = q.Where("option_id = ?", *filter.OptionID)
	}
	if filter.Reason != "" {
		q = q.Where("reason = ?", filter.Reason)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Find(&movements).Error
	return movements, total, translate(err)
}
