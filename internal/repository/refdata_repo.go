package repository

import (
	"errors"
	"fmt"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxRateParam is the system parameter holding the tax percentage
// applied to every sale.
const TaxRateParam = "TAX_RATE_PCT"

// CashMethodName is the seeded payment method used for the open/close
// boundary ledger entries, which always move physical cash.
const CashMethodName = "Cash"

// RefData is the read-only reference data a transaction needs: the movement
// kind catalog and the active tax rate. Resolved once per transaction instead
// of by name lookups scattered across call sites.
type RefData struct {
	kindsByCode map[string]model.MovementKind
	kindsByID   map[uuid.UUID]model.MovementKind
	TaxRatePct  decimal.Decimal
	CashMethod  model.PaymentMethod
}

// NewRefData assembles reference data from already-loaded rows. Used by
// LoadTx and by tests that fake the loader.
func NewRefData(kinds []model.MovementKind, taxRatePct decimal.Decimal, cash model.PaymentMethod) *RefData {
	rd := &RefData{
		kindsByCode: make(map[string]model.MovementKind, len(kinds)),
		kindsByID:   make(map[uuid.UUID]model.MovementKind, len(kinds)),
		TaxRatePct:  taxRatePct,
		CashMethod:  cash,
	}
	for _, k := range kinds {
		rd.kindsByCode[k.Code] = k
		rd.kindsByID[k.ID] = k
	}
	return rd
}

// Kind returns the movement kind for a seeded code.
func (rd *RefData) Kind(code string) (model.MovementKind, error) {
	k, ok := rd.kindsByCode[code]
	if !ok || !k.Active {
		return model.MovementKind{}, fmt.Errorf("movement kind %q not configured", code)
	}
	return k, nil
}

// KindByID resolves a stored movement's kind, for ledger replay.
func (rd *RefData) KindByID(id uuid.UUID) (model.MovementKind, error) {
	k, ok := rd.kindsByID[id]
	if !ok {
		return model.MovementKind{}, fmt.Errorf("movement kind %s not configured", id)
	}
	return k, nil
}

type RefDataRepository interface {
	LoadTx(tx *gorm.DB) (*RefData, error)
	FindPaymentMethod(tx *gorm.DB, id uuid.UUID) (*model.PaymentMethod, error)
}

type refDataRepo struct{ db *gorm.DB }

func NewRefDataRepository(db *gorm.DB) RefDataRepository { return &refDataRepo{db: db} }

func (r *refDataRepo) LoadTx(tx *gorm.DB) (*RefData, error) {
	var kinds []model.MovementKind
	if err := tx.Find(&kinds).Error; err != nil {
		return nil, err
	}

	taxRate := decimal.Zero
	var param model.SystemParameter
	err := tx.Where("name = ? AND active = true", TaxRateParam).First(&param).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, err
	default:
		rate, perr := decimal.NewFromString(param.Value)
		if perr != nil {
			return nil, fmt.Errorf("parameter %s holds non-numeric value %q", TaxRateParam, param.Value)
		}
		taxRate = rate
	}

	var cash model.PaymentMethod
	if err := tx.Where("name = ? AND active = true", CashMethodName).First(&cash).Error; err != nil {
		return nil, fmt.Errorf("payment method %q not configured", CashMethodName)
	}

	return NewRefData(kinds, taxRate, cash), nil
}

func (r *refDataRepo) FindPaymentMethod(tx *gorm.DB, id uuid.UUID) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	err := tx.Where("id = ? AND active = true", id).First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}
