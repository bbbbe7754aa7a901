package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductFlag string

const (
	FlagInStock  ProductFlag = "in-stock"
	FlagPreorder ProductFlag = "preorder"
	FlagPresale  ProductFlag = "presale"
)

func (f ProductFlag) Valid() bool {
	switch f {
	case FlagInStock, FlagPreorder, FlagPresale:
		return true
	}
	return false
}

// NeedsETA reports whether products carrying the flag must have an eta_date.
func (f ProductFlag) NeedsETA() bool {
	return f == FlagPreorder || f == FlagPresale
}

// Product is a catalog entry. StockQuantity is authoritative only while
// HasOptions is false; otherwise OptionsStockTotal mirrors the live options.
type Product struct {
	BaseModel
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	ImageURL          string          `gorm:"type:text" json:"image_url"`
	BoxSetInfo        string          `gorm:"type:text" json:"box_set_info"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	BasePrice         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"base_price"`
	StockQuantity     int             `gorm:"not null;default:0;check:chk_products_stock,stock_quantity >= 0" json:"stock_quantity"`
	HasOptions        bool            `gorm:"not null;default:false" json:"has_options"`
	OptionsStockTotal int             `gorm:"not null;default:0" json:"options_stock_total"`
	ProductFlag       ProductFlag     `gorm:"type:varchar(20);not null;default:'in-stock'" json:"product_flag"`
	EtaDate           *time.Time      `gorm:"type:date" json:"eta_date,omitempty"`
	EanCode           *string         `gorm:"type:varchar(32);uniqueIndex:idx_products_ean,where:deleted_at IS NULL" json:"ean_code,omitempty"`

	Options []ProductOption `gorm:"foreignKey:ProductID" json:"options,omitempty"`
}

// AvailableStock is the quantity a shopper can buy across the product.
func (p *Product) AvailableStock() int {
	if p.HasOptions {
		return p.OptionsStockTotal
	}
	return p.StockQuantity
}

// FindOption returns the loaded option with the given id.
func (p *Product) FindOption(id uuid.UUID) *ProductOption {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}
