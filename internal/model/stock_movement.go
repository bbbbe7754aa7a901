package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementReason string

const (
	ReasonScanIn     MovementReason = "scan-in"
	ReasonScanOut    MovementReason = "scan-out"
	ReasonAdjust     MovementReason = "adjust"
	ReasonCreateByQR MovementReason = "create-by-qr"
	ReasonSale       MovementReason = "sale"
)

func (r MovementReason) Valid() bool {
	switch r {
	case ReasonScanIn, ReasonScanOut, ReasonAdjust, ReasonCreateByQR, ReasonSale:
		return true
	}
	return false
}

// ReasonForDelta classifies a quantity change made without an explicit reason.
func ReasonForDelta(delta int) MovementReason {
	switch {
	case delta > 0:
		return ReasonScanIn
	case delta < 0:
		return ReasonScanOut
	default:
		return ReasonAdjust
	}
}

var ErrMovementImmutable = errors.New("stock movements are append-only")

// StockMovement is one append-only ledger row.
type StockMovement struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID uuid.UUID      `gorm:"type:uuid;index;not null" json:"product_id"`
	OptionID  *uuid.UUID     `gorm:"type:uuid;index" json:"option_id,omitempty"`
	Delta     int            `gorm:"not null" json:"delta"`
	BeforeQty int            `gorm:"not null" json:"before_qty"`
	AfterQty  int            `gorm:"not null" json:"after_qty"`
	Reason    MovementReason `gorm:"type:varchar(20);index;not null" json:"reason"`
	Notes     *string        `gorm:"type:text" json:"notes,omitempty"`
	ActorID   string         `gorm:"type:varchar(64)" json:"admin_user_id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *StockMovement) BeforeUpdate(tx *gorm.DB) error {
	return ErrMovementImmutable
}

func (m *StockMovement) BeforeDelete(tx *gorm.DB) error {
	return ErrMovementImmutable
}
