package service

import (
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileResult is what the close transition needs from a ledger replay:
// the cash the drawer should hold and the commissions accrued on the shift.
type ReconcileResult struct {
	Expected    decimal.Decimal
	Commissions decimal.Decimal
}

// ReconcileEngine replays a shift's ledger inside the close transaction.
// Expected is openingFloat + Σ ingress − Σ egress over the shift's movements.
// Commissions are recomputed from the shift's sales rather than accumulated
// incrementally, so a replay is always consistent with the stored lines.
type ReconcileEngine interface {
	ReplayTx(tx *gorm.DB, shift *model.Shift) (*ReconcileResult, error)
}

type reconcileEngine struct {
	shiftRepo    repository.ShiftRepository
	saleRepo     repository.SaleRepository
	businessRepo repository.BusinessRepository
	catalogRepo  repository.CatalogRepository
	refDataRepo  repository.RefDataRepository
}

func NewReconcileEngine(
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	businessRepo repository.BusinessRepository,
	catalogRepo repository.CatalogRepository,
	refDataRepo repository.RefDataRepository,
) ReconcileEngine {
	return &reconcileEngine{
		shiftRepo:    shiftRepo,
		saleRepo:     saleRepo,
		businessRepo: businessRepo,
		catalogRepo:  catalogRepo,
		refDataRepo:  refDataRepo,
	}
}

func (e *reconcileEngine) ReplayTx(tx *gorm.DB, shift *model.Shift) (*ReconcileResult, error) {
	rd, err := e.refDataRepo.LoadTx(tx)
	if err != nil {
		return nil, err
	}
	movs, err := e.shiftRepo.ListMovementsTx(tx, shift.ID)
	if err != nil {
		return nil, err
	}
	expected, err := replayLedger(shift, movs, rd)
	if err != nil {
		return nil, err
	}

	commissions, err := e.commissionsTx(tx, shift)
	if err != nil {
		return nil, err
	}

	return &ReconcileResult{Expected: expected, Commissions: commissions}, nil
}

// commissionsTx sums commissions over every service line sold on the shift.
// The rate per line is the service's own percentage when it has one above
// zero, otherwise the operator's default; product lines never accrue.
func (e *reconcileEngine) commissionsTx(tx *gorm.DB, shift *model.Shift) (decimal.Decimal, error) {
	employee, err := e.businessRepo.FindEmployeeByIDTx(tx, shift.OperatorID)
	if err != nil {
		return decimal.Zero, err
	}

	sales, err := e.saleRepo.ListByShiftTx(tx, shift.ID)
	if err != nil {
		return decimal.Zero, err
	}

	hundred := decimal.NewFromInt(100)
	services := make(map[uuid.UUID]*model.Service)
	total := decimal.Zero
	for _, sale := range sales {
		for _, line := range sale.Lines {
			if line.ItemKind != model.ItemService || line.ServiceID == nil {
				continue
			}
			svc, ok := services[*line.ServiceID]
			if !ok {
				svc, err = e.catalogRepo.FindServiceTx(tx, *line.ServiceID, sale.BusinessID)
				if err != nil {
					return decimal.Zero, err
				}
				services[*line.ServiceID] = svc
			}

			rate := employee.DefaultCommissionPct
			if svc.CommissionPct != nil && svc.CommissionPct.IsPositive() {
				rate = *svc.CommissionPct
			}
			if !rate.IsPositive() {
				continue
			}
			total = total.Add(line.Subtotal.Mul(rate).Div(hundred).Round(2))
		}
	}
	return total, nil
}
