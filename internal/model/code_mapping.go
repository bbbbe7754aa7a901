package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeMapping binds a QR payload to a product or option. Lookups go through
// QRHash; QRRaw is kept for display only.
type CodeMapping struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	QRRaw     string     `gorm:"type:text;not null" json:"qr_raw"`
	QRHash    string     `gorm:"type:char(64);uniqueIndex;not null" json:"qr_hash"`
	ProductID uuid.UUID  `gorm:"type:uuid;index;not null" json:"product_id"`
	OptionID  *uuid.UUID `gorm:"type:uuid;index" json:"option_id,omitempty"`
	CreatedBy string     `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

func (CodeMapping) TableName() string {
	return "qr_map"
}

func (m *CodeMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
