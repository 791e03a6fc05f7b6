package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the append-only cash movement ledger. Entries are written
// exclusively here; corrections are new offsetting entries, never edits.
type LedgerService interface {
	// Append records a manual ingress/egress on an open shift.
	Append(ctx context.Context, userID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error)
	// AppendTx writes one movement inside the caller's transaction. The shift
	// must already be locked by the caller and must be open.
	AppendTx(tx *gorm.DB, shift *model.Shift, kind model.MovementKind, paymentMethodID uuid.UUID,
		amount decimal.Decimal, saleID *uuid.UUID, memo *string) (*model.CashMovement, error)
	// RunningBalance replays the shift's ledger and returns the drawer cash
	// the system expects right now: openingFloat + Σ ingress − Σ egress.
	RunningBalance(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)
}

type ledgerService struct {
	shiftRepo    repository.ShiftRepository
	businessRepo repository.BusinessRepository
	refDataRepo  repository.RefDataRepository
}

func NewLedgerService(shiftRepo repository.ShiftRepository, businessRepo repository.BusinessRepository,
	refDataRepo repository.RefDataRepository) LedgerService {
	return &ledgerService{shiftRepo: shiftRepo, businessRepo: businessRepo, refDataRepo: refDataRepo}
}

func (s *ledgerService) Append(ctx context.Context, userID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid shift_id")
	}
	paymentMethodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid payment_method_id")
	}

	var resp *dto.MovementResponse
	txErr := runTx(ctx, s.shiftRepo.DB(), func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.LockShiftTx(tx, shiftID)
		if err != nil {
			return apierror.E(apierror.KindShiftNotOpen, "shift not found or not open")
		}

		// Same identity rules as the sale pipeline: the caller must hold the
		// drawer, not merely a valid token.
		employee, err := s.businessRepo.FindEmployeeTx(tx, userID, shift.BusinessID)
		if err != nil || !employee.Active {
			return apierror.E(apierror.KindNotAuthorized, "user is not an active employee of this business")
		}
		if employee.ID != shift.OperatorID {
			return apierror.E(apierror.KindOperatorMismatch, "movements must be recorded by the shift's operator")
		}

		rd, err := s.refDataRepo.LoadTx(tx)
		if err != nil {
			return err
		}
		if _, err := s.refDataRepo.FindPaymentMethod(tx, paymentMethodID); err != nil {
			return apierror.E(apierror.KindValidation, "payment method not found or inactive")
		}
		kind, err := rd.Kind(req.Kind)
		if err != nil {
			return apierror.E(apierror.KindValidation, err.Error())
		}

		mov, err := s.AppendTx(tx, shift, kind, paymentMethodID, req.Amount, nil, req.Memo)
		if err != nil {
			return err
		}
		resp = movementToResponse(mov, kind)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

func (s *ledgerService) AppendTx(tx *gorm.DB, shift *model.Shift, kind model.MovementKind, paymentMethodID uuid.UUID,
	amount decimal.Decimal, saleID *uuid.UUID, memo *string) (*model.CashMovement, error) {

	if shift.Status != model.ShiftOpen {
		return nil, apierror.E(apierror.KindShiftNotOpen,
			fmt.Sprintf("shift %s is not open", shift.ID))
	}
	if !amount.IsPositive() {
		return nil, apierror.E(apierror.KindValidation, "movement amount must be positive")
	}
	if kind.Direction != model.DirectionIngress && kind.Direction != model.DirectionEgress {
		return nil, apierror.E(apierror.KindValidation,
			fmt.Sprintf("movement kind %q has no valid direction", kind.Code))
	}

	mov := &model.CashMovement{
		ShiftID:         shift.ID,
		KindID:          kind.ID,
		PaymentMethodID: paymentMethodID,
		Amount:          amount,
		SaleID:          saleID,
		Memo:            memo,
		RecordedAt:      time.Now(),
	}
	if err := s.shiftRepo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}
	mov.Kind = &kind
	return mov, nil
}

func (s *ledgerService) RunningBalance(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	shift, err := s.shiftRepo.FindShiftByID(ctx, shiftID)
	if err != nil {
		return decimal.Zero, apierror.E(apierror.KindShiftNotFound, "shift not found")
	}

	var balance decimal.Decimal
	txErr := runTx(ctx, s.shiftRepo.DB(), func(tx *gorm.DB) error {
		rd, err := s.refDataRepo.LoadTx(tx)
		if err != nil {
			return err
		}
		movs, err := s.shiftRepo.ListMovementsTx(tx, shiftID)
		if err != nil {
			return err
		}
		balance, err = replayLedger(shift, movs, rd)
		return err
	})
	return balance, txErr
}

// replayLedger computes openingFloat + Σ ingress − Σ egress over a shift's
// movements, in recorded order. The opening boundary entry mirrors the float
// for audit purposes and is skipped so the float is not counted twice.
func replayLedger(shift *model.Shift, movs []model.CashMovement, rd *repository.RefData) (decimal.Decimal, error) {
	expected := shift.OpeningFloat
	for _, m := range movs {
		kind, err := rd.KindByID(m.KindID)
		if err != nil {
			return decimal.Zero, err
		}
		if kind.Code == model.KindOpening {
			continue
		}
		switch kind.Direction {
		case model.DirectionIngress:
			expected = expected.Add(m.Amount)
		case model.DirectionEgress:
			expected = expected.Sub(m.Amount)
		default:
			return decimal.Zero, fmt.Errorf("movement %s has unknown direction %q", m.ID, kind.Direction)
		}
	}
	return expected, nil
}

func movementToResponse(m *model.CashMovement, kind model.MovementKind) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:              m.ID.String(),
		ShiftID:         m.ShiftID.String(),
		Kind:            kind.Code,
		Direction:       kind.Direction,
		PaymentMethodID: m.PaymentMethodID.String(),
		Amount:          m.Amount,
		Memo:            m.Memo,
		RecordedAt:      m.RecordedAt.Format(time.RFC3339),
	}
	if m.SaleID != nil {
		id := m.SaleID.String()
		resp.SaleID = &id
	}
	return resp
}
