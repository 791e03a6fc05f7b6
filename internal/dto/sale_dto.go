package dto

import "github.com/shopspring/decimal"

type SaleLineRequest struct {
	ProductID *string `json:"product_id" validate:"omitempty,uuid"`
	ServiceID *string `json:"service_id" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity"   validate:"required,gt=0"`
	// UnitPriceOverride, when present, wins over every catalog price.
	UnitPriceOverride *decimal.Decimal `json:"unit_price_override"`
}

type ProcessSaleRequest struct {
	ShiftID            string            `json:"shift_id"           validate:"required,uuid"`
	PaymentMethodID    string            `json:"payment_method_id"  validate:"required,uuid"`
	CustomerID         *string           `json:"customer_id"        validate:"omitempty,uuid"`
	WantsFormalInvoice bool              `json:"wants_formal_invoice"`
	Notes              *string           `json:"notes"`
	Lines              []SaleLineRequest `json:"lines"              validate:"required,min=1,dive"`
}

type SaleLineResponse struct {
	ItemKind  string          `json:"item_kind"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	ShiftID       string             `json:"shift_id"`
	ReceiptKind   string             `json:"receipt_kind"`
	ReceiptNumber string             `json:"receipt_number"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	Lines         []SaleLineResponse `json:"lines"`
	IssuedAt      string             `json:"issued_at"`
}

// ProcessSaleResponse is the full pipeline result: the persisted sale, the
// ledger movement it produced, and the rendered receipt when one was produced.
// DocumentWarning is set when rendering failed but the sale stands.
type ProcessSaleResponse struct {
	Sale            SaleResponse     `json:"sale"`
	Movement        MovementResponse `json:"movement"`
	Document        *string          `json:"document,omitempty"` // base64 PDF
	DocumentWarning *string          `json:"document_warning,omitempty"`
}

type SaleFilter struct {
	ShiftID string
	Page    int
	Limit   int
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
