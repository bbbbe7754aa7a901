package repository

import (
	"context"

	"go-blindbox-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OptionRepository interface {
	Create(ctx context.Context, option *model.ProductOption) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductOption, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductOption, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductOption, error)
	FindByEanCode(ctx context.Context, code string) (*model.ProductOption, error)
	FindBySKU(ctx context.Context, sku string) (*model.ProductOption, error)
	Update(ctx context.Context, option *model.ProductOption) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	DeleteByProduct(ctx context.Context, productID uuid.UUID, deletedBy string) error
	SetStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error)
	// SumStock returns the live option count and their summed stock.
	SumStock(ctx context.Context, productID uuid.UUID) (int, int, error)
}

type optionRepo struct {
	db *gorm.DB
}

func NewOptionRepo(db *gorm.DB) OptionRepository {
	return &optionRepo{db}
}

func (r *optionRepo) Create(ctx context.Context, option *model.ProductOption) error {
	return translate(r.db.WithContext(ctx).Create(option).Error)
}

func (r *optionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductOption, error) {
	var option model.ProductOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &option, nil
}

func (r *optionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductOption, error) {
	var option model.ProductOption
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&option, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &option, nil
}

func (r *optionRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductOption, error) {
	var options []model.ProductOption
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("display_order ASC, created_at ASC").
		Find(&options).Error
	return options, translate(err)
}

func (r *optionRepo) FindByEanCode(ctx context.Context, code string) (*model.ProductOption, error) {
	var option model.ProductOption
	if err := r.db.WithContext(ctx).First(&option, "ean_code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &option, nil
}

func (r *optionRepo) FindBySKU(ctx context.Context, sku string) (*model.ProductOption, error) {
	var option model.ProductOption
	if err := r.db.WithContext(ctx).First(&option, "sku = ?", sku).Error; err != nil {
		return nil, translate(err)
	}
	return &option, nil
}

func (r *optionRepo) Update(ctx context.Context, option *model.ProductOption) error {
	res := r.db.WithContext(ctx).Model(&model.ProductOption{}).
		Where("id = ?", option.ID).
		Updates(map[string]interface{}{
			"label":          option.Label,
			"sku":            option.SKU,
			"image_url":      option.ImageURL,
			"price_delta":    option.PriceDelta,
			"discount_price": option.DiscountPrice,
			"display_order":  option.DisplayOrder,
			"ean_code":       option.EanCode,
			"updated_by":     option.UpdatedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *optionRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ProductOption{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&model.ProductOption{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *optionRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ProductOption{}).Where("product_id = ?", productID).Update("deleted_by", deletedBy).Error; err != nil {
		return translate(err)
	}
	return translate(db.Where("product_id = ?", productID).Delete(&model.ProductOption{}).Error)
}

func (r *optionRepo) SetStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.ProductOption{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": qty,
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *optionRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	option := model.ProductOption{}
	option.ID = id
	res := r.db.WithContext(ctx).Model(&option).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock_quantity"}}}).
		Where("stock_quantity >= ?", qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrConditionFailed
	}
	return option.StockQuantity, nil
}

func (r *optionRepo) SumStock(ctx context.Context, productID uuid.UUID) (int, int, error) {
	var row struct {
		Count int
		Total int
	}
	err := r.db.WithContext(ctx).Model(&model.ProductOption{}).
		Select("COUNT(*) AS count, COALESCE(SUM(stock_quantity), 0) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err)
	}
	return row.Count, row.Total, nil
}
