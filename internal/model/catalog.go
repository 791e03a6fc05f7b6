package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked catalog item. Price precedence when selling:
// explicit override → DiscountPrice → PromoPrice → ListPrice.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null;index"`
	Description *string
	ListPrice   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	PromoPrice  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OnHand      int  `gorm:"not null;default:0"`
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service is an unstocked catalog item (a haircut, a beard trim). Selling one
// never touches stock but may accrue a commission for the operator.
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null;index"`
	Description *string
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// CommissionPct overrides the operator's default when set and > 0.
	CommissionPct *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Active        bool             `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SystemParameter is a name→value configuration row ("TAX_RATE_PCT", ...).
// Loaded once per transaction by the reference-data loader, never read ad hoc
// from call sites.
type SystemParameter struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"uniqueIndex;not null"`
	Value  string    `gorm:"not null"`
	Active bool      `gorm:"not null;default:true"`
}
