package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee roles within a business.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Business is one tenant: a shop with its own catalog, registers and staff.
type Business struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"not null"`
	Address *string
	OwnerID uuid.UUID `gorm:"type:uuid;not null"`
	// EstablishmentCode is the 3-digit SRI establishment code (EEE part of
	// every receipt number). Empty until the business registers with the
	// tax authority.
	EstablishmentCode *string `gorm:"type:varchar(3)"`
	// OpeningTime is "HH:MM:SS"; shifts may only be opened within a
	// configurable window around it.
	OpeningTime *string `gorm:"type:varchar(8)"`
	Active      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Employee binds a user to a business with a role. A user may work at several
// businesses, once per business.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_employee_binding"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_employee_binding;uniqueIndex:idx_emission_point"`
	Role       string    `gorm:"type:varchar(20);not null;default:'operator'"`
	// DefaultCommissionPct applies to service lines whose service has no
	// commission percentage of its own.
	DefaultCommissionPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// EmissionPointCode is the operator's 3-digit mobile emission point
	// (PPP part of receipt numbers), unique within a business. Nil until
	// assigned. Receipt uniqueness across businesses comes from the counter
	// key, which includes the establishment code.
	EmissionPointCode *string `gorm:"type:varchar(3);uniqueIndex:idx_emission_point"`
	Active            bool    `gorm:"not null;default:true"`
	CreatedAt         time.Time
}

// User is an authenticated account. Business-scoped permissions live on the
// Employee binding, not here.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is an optional sale counterpart, filled from the citizen registry
// when only a national ID is provided.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	NationalID *string   `gorm:"type:varchar(13);index"`
	Name       string    `gorm:"not null"`
	Email      *string
	Phone      *string
	CreatedAt  time.Time
}
