package dto

import "github.com/shopspring/decimal"

type CreateBusinessRequest struct {
	Name              string  `json:"name"    validate:"required,min=2"`
	Address           *string `json:"address"`
	EstablishmentCode *string `json:"establishment_code" validate:"omitempty,len=3,numeric"`
	OpeningTime       *string `json:"opening_time"       validate:"omitempty,datetime=15:04:05"`
}

type BusinessResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Address           *string `json:"address,omitempty"`
	EstablishmentCode *string `json:"establishment_code,omitempty"`
	OpeningTime       *string `json:"opening_time,omitempty"`
	Active            bool    `json:"active"`
}

type HireEmployeeRequest struct {
	UserID               string           `json:"user_id" validate:"required,uuid"`
	Role                 string           `json:"role"    validate:"required,oneof=operator admin"`
	DefaultCommissionPct *decimal.Decimal `json:"default_commission_pct"`
	EmissionPointCode    *string          `json:"emission_point_code" validate:"omitempty,len=3,numeric"`
}

type EmployeeResponse struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	BusinessID           string          `json:"business_id"`
	Role                 string          `json:"role"`
	DefaultCommissionPct decimal.Decimal `json:"default_commission_pct"`
	EmissionPointCode    *string         `json:"emission_point_code,omitempty"`
	Active               bool            `json:"active"`
}

type CreateCustomerRequest struct {
	NationalID *string `json:"national_id" validate:"omitempty,min=10,max=13,numeric"`
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
}

type CustomerResponse struct {
	ID         string  `json:"id"`
	NationalID *string `json:"national_id,omitempty"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}
