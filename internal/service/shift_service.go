package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShiftService drives the shift lifecycle: open → active → closed, with no
// re-open. Closing reconciles the drawer against the replayed ledger.
type ShiftService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	Close(ctx context.Context, userID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReportResponse, error)
	List(ctx context.Context, businessID uuid.UUID, page, limit int) ([]dto.ShiftResponse, int64, error)
}

type shiftService struct {
	shiftRepo    repository.ShiftRepository
	businessRepo repository.BusinessRepository
	refDataRepo  repository.RefDataRepository
	ledger       LedgerService
	reconciler   ReconcileEngine
	// windowMinutes bounds how far from the business's scheduled opening time
	// a shift may still be opened, in either direction.
	windowMinutes int
}

func NewShiftService(
	shiftRepo repository.ShiftRepository,
	businessRepo repository.BusinessRepository,
	refDataRepo repository.RefDataRepository,
	ledger LedgerService,
	reconciler ReconcileEngine,
	windowMinutes int,
) ShiftService {
	return &shiftService{
		shiftRepo:     shiftRepo,
		businessRepo:  businessRepo,
		refDataRepo:   refDataRepo,
		ledger:        ledger,
		reconciler:    reconciler,
		windowMinutes: windowMinutes,
	}
}

func (s *shiftService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid business_id")
	}
	if req.OpeningFloat.IsNegative() {
		return nil, apierror.E(apierror.KindValidation, "opening float must not be negative")
	}

	var shift *model.Shift
	txErr := runTx(ctx, s.shiftRepo.DB(), func(tx *gorm.DB) error {
		business, err := s.businessRepo.FindBusinessTx(tx, businessID)
		if err != nil {
			return apierror.E(apierror.KindNotFound, "business not found")
		}
		if !business.Active {
			return apierror.E(apierror.KindBusinessInactive, "business is inactive")
		}

		employee, err := s.businessRepo.FindEmployeeTx(tx, userID, businessID)
		if err != nil || !employee.Active {
			return apierror.E(apierror.KindNotAuthorized, "user is not an active employee of this business")
		}

		if business.OpeningTime != nil {
			ok, werr := withinOpeningWindow(*business.OpeningTime, time.Now(), s.windowMinutes)
			if werr != nil {
				return werr
			}
			if !ok {
				return apierror.E(apierror.KindOutsideOperatingWindow,
					fmt.Sprintf("shifts may only open within %d minutes of %s", s.windowMinutes, *business.OpeningTime))
			}
		}

		if _, err := s.shiftRepo.FindOpenByOperatorTx(tx, employee.ID, businessID); err == nil {
			return apierror.E(apierror.KindShiftAlreadyOpen, "operator already has an open shift for this business")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		shift = &model.Shift{
			OperatorID:   employee.ID,
			BusinessID:   businessID,
			OpeningFloat: req.OpeningFloat,
			Notes:        req.Notes,
			Status:       model.ShiftOpen,
			OpenedAt:     time.Now(),
		}
		if err := s.shiftRepo.CreateShiftTx(tx, shift); err != nil {
			// A concurrent open can slip past the read above — a locked read
			// cannot block on a row that does not exist yet. The partial
			// unique index on open shifts stops the second insert.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.E(apierror.KindShiftAlreadyOpen, "operator already has an open shift for this business")
			}
			return err
		}

		// The opening boundary entry mirrors the float for audit purposes.
		// A zero float writes nothing: entries are always positive amounts.
		if req.OpeningFloat.IsPositive() {
			rd, err := s.refDataRepo.LoadTx(tx)
			if err != nil {
				return err
			}
			kind, err := rd.Kind(model.KindOpening)
			if err != nil {
				return err
			}
			memo := "opening float"
			if _, err := s.ledger.AppendTx(tx, shift, kind, rd.CashMethod.ID, req.OpeningFloat, nil, &memo); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("shift_id", shift.ID.String()).
		Str("business_id", businessID.String()).
		Str("opening_float", req.OpeningFloat.String()).
		Msg("shift opened")

	resp := shiftToResponse(shift)
	return &resp, nil
}

func (s *shiftService) Close(ctx context.Context, userID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid shift_id")
	}
	if req.CountedTotal.IsNegative() {
		return nil, apierror.E(apierror.KindValidation, "counted total must not be negative")
	}

	var shift *model.Shift
	txErr := runTx(ctx, s.shiftRepo.DB(), func(tx *gorm.DB) error {
		shift, err = s.shiftRepo.LockShiftTx(tx, shiftID)
		if err != nil {
			return apierror.E(apierror.KindShiftNotFound, "shift not found")
		}
		if shift.Status == model.ShiftClosed {
			return apierror.E(apierror.KindShiftAlreadyClosed, "shift is already closed")
		}

		employee, err := s.businessRepo.FindEmployeeTx(tx, userID, shift.BusinessID)
		if err != nil {
			return apierror.E(apierror.KindNotAuthorized, "user is not an employee of this business")
		}
		if employee.ID != shift.OperatorID {
			return apierror.E(apierror.KindOperatorMismatch, "only the operator who opened the shift may close it")
		}

		result, err := s.reconciler.ReplayTx(tx, shift)
		if err != nil {
			return err
		}

		// The closing boundary entry records the cash leaving the drawer.
		if result.Expected.IsPositive() {
			rd, err := s.refDataRepo.LoadTx(tx)
			if err != nil {
				return err
			}
			kind, err := rd.Kind(model.KindClosing)
			if err != nil {
				return err
			}
			memo := "closing settlement"
			if _, err := s.ledger.AppendTx(tx, shift, kind, rd.CashMethod.ID, result.Expected, nil, &memo); err != nil {
				return err
			}
		}

		diff := req.CountedTotal.Sub(result.Expected)
		now := time.Now()
		counted := req.CountedTotal

		shift.SystemExpectedTotal = result.Expected
		shift.CountedTotal = &counted
		shift.Surplus = decimal.Max(diff, decimal.Zero)
		shift.Deficit = decimal.Max(diff.Neg(), decimal.Zero)
		shift.TotalCommissions = result.Commissions
		if req.Notes != nil {
			shift.Notes = req.Notes
		}
		shift.Status = model.ShiftClosed
		shift.ClosedAt = &now

		return s.shiftRepo.UpdateShiftTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("shift_id", shift.ID.String()).
		Str("expected", shift.SystemExpectedTotal.String()).
		Str("counted", req.CountedTotal.String()).
		Str("surplus", shift.Surplus.String()).
		Str("deficit", shift.Deficit.String()).
		Msg("shift closed")

	resp := shiftToResponse(shift)
	return &resp, nil
}

func (s *shiftService) Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReportResponse, error) {
	shift, err := s.shiftRepo.FindShiftByID(ctx, shiftID)
	if err != nil {
		return nil, apierror.E(apierror.KindShiftNotFound, "shift not found")
	}

	var report *dto.ShiftReportResponse
	txErr := runTx(ctx, s.shiftRepo.DB(), func(tx *gorm.DB) error {
		rd, err := s.refDataRepo.LoadTx(tx)
		if err != nil {
			return err
		}
		movs, err := s.shiftRepo.ListMovementsTx(tx, shiftID)
		if err != nil {
			return err
		}
		balance, err := replayLedger(shift, movs, rd)
		if err != nil {
			return err
		}

		movements := make([]dto.MovementResponse, 0, len(movs))
		for i := range movs {
			kind, err := rd.KindByID(movs[i].KindID)
			if err != nil {
				return err
			}
			movements = append(movements, *movementToResponse(&movs[i], kind))
		}

		report = &dto.ShiftReportResponse{
			Shift:          shiftToResponse(shift),
			RunningBalance: balance,
			Movements:      movements,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return report, nil
}

func (s *shiftService) List(ctx context.Context, businessID uuid.UUID, page, limit int) ([]dto.ShiftResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	shifts, total, err := s.shiftRepo.ListShifts(ctx, businessID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, shiftToResponse(&shifts[i]))
	}
	return out, total, nil
}

// withinOpeningWindow reports whether now falls inside scheduled ± window,
// where scheduled is today at the business's "HH:MM:SS" opening time.
func withinOpeningWindow(openingTime string, now time.Time, windowMinutes int) (bool, error) {
	t, err := time.Parse("15:04:05", openingTime)
	if err != nil {
		return false, fmt.Errorf("malformed opening time %q: %w", openingTime, err)
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	window := time.Duration(windowMinutes) * time.Minute
	return !now.Before(scheduled.Add(-window)) && !now.After(scheduled.Add(window)), nil
}

func shiftToResponse(s *model.Shift) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:                  s.ID.String(),
		OperatorID:          s.OperatorID.String(),
		BusinessID:          s.BusinessID.String(),
		Status:              s.Status,
		OpeningFloat:        s.OpeningFloat,
		SystemExpectedTotal: s.SystemExpectedTotal,
		CountedTotal:        s.CountedTotal,
		Surplus:             s.Surplus,
		Deficit:             s.Deficit,
		TotalCommissions:    s.TotalCommissions,
		Notes:               s.Notes,
		OpenedAt:            s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		closed := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
