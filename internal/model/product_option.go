package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductOption is one variant of a blind box product.
type ProductOption struct {
	BaseModel
	ProductID     uuid.UUID           `gorm:"type:uuid;index;not null" json:"product_id"`
	Label         string              `gorm:"type:varchar(255);not null" json:"label"`
	SKU           string              `gorm:"type:varchar(64);uniqueIndex:idx_options_sku,where:deleted_at IS NULL;not null" json:"sku"`
	ImageURL      string              `gorm:"type:text" json:"image_url,omitempty"`
	StockQuantity int                 `gorm:"not null;default:0;check:chk_options_stock,stock_quantity >= 0" json:"stock_quantity"`
	PriceDelta    decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"price_delta"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discount_price"`
	DisplayOrder  int                 `gorm:"not null;default:0" json:"display_order"`
	EanCode       *string             `gorm:"type:varchar(32);uniqueIndex:idx_options_ean,where:deleted_at IS NULL" json:"ean_code,omitempty"`
}

// UnitPrice is the discount price when set, otherwise base plus the delta.
func (o *ProductOption) UnitPrice(base decimal.Decimal) decimal.Decimal {
	if o.DiscountPrice.Valid {
		return o.DiscountPrice.Decimal
	}
	return base.Add(o.PriceDelta)
}
