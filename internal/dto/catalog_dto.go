package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name          string           `json:"name"       validate:"required,min=2"`
	Description   *string          `json:"description"`
	ListPrice     decimal.Decimal  `json:"list_price" validate:"min=0"`
	PromoPrice    *decimal.Decimal `json:"promo_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	OnHand        int              `json:"on_hand"    validate:"min=0"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	ListPrice     *decimal.Decimal `json:"list_price"`
	PromoPrice    *decimal.Decimal `json:"promo_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
}

type ProductResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	ListPrice     decimal.Decimal  `json:"list_price"`
	PromoPrice    *decimal.Decimal `json:"promo_price,omitempty"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	OnHand        int              `json:"on_hand"`
	Active        bool             `json:"active"`
}

type CreateServiceRequest struct {
	Name          string           `json:"name"  validate:"required,min=2"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"min=0"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	CommissionPct *decimal.Decimal `json:"commission_pct"`
}

type ServiceResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	CommissionPct *decimal.Decimal `json:"commission_pct,omitempty"`
	Active        bool             `json:"active"`
}
