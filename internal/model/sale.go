package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt kinds. A formal invoice is filed with the tax authority; a simple
// receipt is only rendered locally.
const (
	ReceiptSimple        = "simple"
	ReceiptFormalInvoice = "formal_invoice"
)

// Sale states.
const (
	SaleIssued = "issued"
	SaleFiled  = "filed"
)

// Line item kinds. Exactly one of ProductID/ServiceID is set per line.
const (
	ItemProduct = "product"
	ItemService = "service"
)

// Sale is one completed transaction. Created atomically by the sale pipeline
// and immutable afterwards, except for the status transition when the tax
// filer responds.
type Sale struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShiftID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	OperatorID      uuid.UUID  `gorm:"type:uuid;not null"`
	CustomerID      *uuid.UUID `gorm:"type:uuid"`
	PaymentMethodID uuid.UUID  `gorm:"type:uuid;not null"`
	ReceiptKind     string     `gorm:"type:varchar(20);not null"`
	// ReceiptNumber is EEE-PPP-NNNNNNNNN, unique per establishment and
	// emission point. Legally meaningful; allocated by the sequence allocator.
	ReceiptNumber string          `gorm:"type:varchar(21);uniqueIndex;not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'issued'"`
	Notes         *string
	IssuedAt      time.Time `gorm:"autoCreateTime"`

	Lines []SaleLineItem `gorm:"foreignKey:SaleID"`
}

// SaleLineItem is one product or service on a sale. The sale owns its lines
// (composition); they are only ever written together with the sale.
type SaleLineItem struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ItemKind string     `gorm:"type:varchar(10);not null"` // product | service
	ProductID *uuid.UUID `gorm:"type:uuid"`
	ServiceID *uuid.UUID `gorm:"type:uuid"`
	// ItemName is a denormalized snapshot — catalog renames must not rewrite
	// history.
	ItemName  string          `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// ReceiptCounter holds the last allocated sequence number per
// (establishment, emission point) pair. The read-increment-write on this row
// runs under a row lock — see the sequence allocator.
type ReceiptCounter struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablishmentCode  string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_counter_key"`
	EmissionPointCode  string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_counter_key"`
	LastSequenceNumber int64     `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
