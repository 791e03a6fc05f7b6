package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift states. A shift is one operator's custody of a cash drawer;
// the lifecycle is open → closed, with no re-open.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Movement directions, in the double-entry sense: ingress increases drawer
// cash, egress decreases it.
const (
	DirectionIngress = "ingress"
	DirectionEgress  = "egress"
)

// Well-known movement kind codes seeded at startup.
const (
	KindOpening   = "opening"
	KindSale      = "sale"
	KindClosing   = "closing"
	KindManualIn  = "manual_in"
	KindManualOut = "manual_out"
)

// Shift represents one operator's register session for one business.
// Mutated only by the open/close transitions; never deleted.
// The partial unique index on (operator, business) where status = 'open'
// enforces the single-open-shift rule even when two opens race: a locked
// read cannot guard a row that does not exist yet, the index can.
type Shift struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_shift_single_open,where:status = 'open'"`
	BusinessID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_shift_single_open,where:status = 'open'"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SystemExpectedTotal is computed at close by replaying the ledger:
	// openingFloat + Σ ingress − Σ egress.
	SystemExpectedTotal decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CountedTotal        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Surplus             decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Deficit             decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCommissions    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Notes               *string
	Status              string `gorm:"type:varchar(10);not null;default:'open';index"`
	OpenedAt            time.Time
	ClosedAt            *time.Time

	Movements []CashMovement `gorm:"foreignKey:ShiftID"`
}

// CashMovement is one immutable entry in a shift's cash ledger.
// Movements are NEVER modified or deleted — corrections are new
// offsetting movements.
type CashMovement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	KindID          uuid.UUID       `gorm:"type:uuid;not null"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"` // always a positive magnitude
	SaleID          *uuid.UUID      `gorm:"type:uuid;index"`
	Memo            *string
	RecordedAt      time.Time `gorm:"autoCreateTime"`

	Kind *MovementKind `gorm:"foreignKey:KindID"`
}

// MovementKind is a reference-catalog row classifying a cash movement.
// Direction decides the sign applied when replaying the ledger.
type MovementKind struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Direction string    `gorm:"type:varchar(10);not null"` // ingress | egress
	Active    bool      `gorm:"not null;default:true"`
}

// PaymentMethod is a reference-catalog row ("Efectivo", "Tarjeta", ...).
type PaymentMethod struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"uniqueIndex;not null"`
	Active bool      `gorm:"not null;default:true"`
}
