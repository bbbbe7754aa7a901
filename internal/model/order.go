package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
}

// CanTransition reports whether an order may move from s to next.
// Shipped and cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	BaseModel
	UserID          uuid.UUID           `gorm:"type:uuid;index;not null" json:"user_id"`
	CustomerName    string              `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string              `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone   string              `gorm:"type:varchar(32);not null" json:"customer_phone"`
	CustomerAddress string              `gorm:"type:text;not null" json:"customer_address"`
	Status          OrderStatus         `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	TotalAmount     decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	ShippingAmount  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"shipping_amount"`
	TrackingNumber  *string             `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	OptionID    *uuid.UUID      `gorm:"type:uuid" json:"option_id,omitempty"`
	OptionLabel *string         `gorm:"type:varchar(255)" json:"option_label,omitempty"`
	OptionSKU   *string         `gorm:"type:varchar(64)" json:"option_sku,omitempty"`
	OptionImage *string         `gorm:"type:text" json:"option_image,omitempty"`
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
