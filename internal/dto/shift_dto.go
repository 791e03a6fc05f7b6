package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	BusinessID   string          `json:"business_id"   validate:"required,uuid"`
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
	Notes        *string         `json:"notes"`
}

type CloseShiftRequest struct {
	ShiftID      string          `json:"shift_id"      validate:"required,uuid"`
	CountedTotal decimal.Decimal `json:"counted_total" validate:"min=0"`
	Notes        *string         `json:"notes"`
}

type MovementRequest struct {
	ShiftID         string          `json:"shift_id"          validate:"required,uuid"`
	Kind            string          `json:"kind"              validate:"required,oneof=manual_in manual_out"`
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required,gt=0"`
	Memo            *string         `json:"memo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID              string          `json:"id"`
	ShiftID         string          `json:"shift_id"`
	Kind            string          `json:"kind"`
	Direction       string          `json:"direction"`
	PaymentMethodID string          `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	SaleID          *string         `json:"sale_id,omitempty"`
	Memo            *string         `json:"memo,omitempty"`
	RecordedAt      string          `json:"recorded_at"`
}

type ShiftResponse struct {
	ID                  string           `json:"id"`
	OperatorID          string           `json:"operator_id"`
	BusinessID          string           `json:"business_id"`
	Status              string           `json:"status"`
	OpeningFloat        decimal.Decimal  `json:"opening_float"`
	SystemExpectedTotal decimal.Decimal  `json:"system_expected_total"`
	CountedTotal        *decimal.Decimal `json:"counted_total,omitempty"`
	Surplus             decimal.Decimal  `json:"surplus"`
	Deficit             decimal.Decimal  `json:"deficit"`
	TotalCommissions    decimal.Decimal  `json:"total_commissions"`
	Notes               *string          `json:"notes,omitempty"`
	OpenedAt            string           `json:"opened_at"`
	ClosedAt            *string          `json:"closed_at,omitempty"`
}

type ShiftReportResponse struct {
	Shift          ShiftResponse      `json:"shift"`
	RunningBalance decimal.Decimal    `json:"running_balance"`
	Movements      []MovementResponse `json:"movements"`
}
