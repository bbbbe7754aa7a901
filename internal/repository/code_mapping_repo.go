package repository

import (
	"context"

	"go-blindbox-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CodeMappingRepository interface {
	Create(ctx context.Context, mapping *model.CodeMapping) error
	FindByHash(ctx context.Context, hash string) (*model.CodeMapping, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.CodeMapping, error)
	// DeleteByProduct removes every mapping that points at the product or one of its options.
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
	DeleteByOption(ctx context.Context, optionID uuid.UUID) error
}

type codeMappingRepo struct {
	db *gorm.DB
}

func NewCodeMappingRepo(db *gorm.DB) CodeMappingRepository {
	return &codeMappingRepo{db}
}

func (r *codeMappingRepo) Create(ctx context.Context, mapping *model.CodeMapping) error {
	return translate(r.db.WithContext(ctx).Create(mapping).Error)
}

func (r *codeMappingRepo) FindByHash(ctx context.Context, hash string) (*model.CodeMapping, error) {
	var mapping model.CodeMapping
	if err := r.db.WithContext(ctx).First(&mapping, "qr_hash = ?", hash).Error; err != nil {
		return nil, translate(err)
	}
	return &mapping, nil
}

func (r *codeMappingRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.CodeMapping, error) {
	var mappings []model.CodeMapping
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&mappings).Error
	return mappings, translate(err)
}

func (r *codeMappingRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.CodeMapping{}).Error)
}

func (r *codeMappingRepo) DeleteByOption(ctx context.Context, optionID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("option_id = ?", optionID).Delete(&model.CodeMapping{}).Error)
}
