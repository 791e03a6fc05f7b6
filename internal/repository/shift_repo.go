package repository

import (
	"context"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShiftRepository is the data access contract for shifts and their cash
// movements. Methods with a Tx suffix run inside a caller-owned transaction;
// callers must pass the tx instance.
type ShiftRepository interface {
	CreateShiftTx(tx *gorm.DB, s *model.Shift) error
	// FindOpenByOperatorTx locks the open-shift row (if any) for the
	// operator/business pair so two concurrent opens serialize.
	FindOpenByOperatorTx(tx *gorm.DB, operatorID, businessID uuid.UUID) (*model.Shift, error)
	FindShiftByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	// LockShiftTx reloads a shift under FOR UPDATE; the open/closed flag is
	// the mutual-exclusion guard for ledger writes, so every writer takes
	// this lock first.
	LockShiftTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error)
	UpdateShiftTx(tx *gorm.DB, s *model.Shift) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	ListMovementsTx(tx *gorm.DB, shiftID uuid.UUID) ([]model.CashMovement, error)
	ListMovements(ctx context.Context, shiftID uuid.UUID) ([]model.CashMovement, error)
	ListShifts(ctx context.Context, businessID uuid.UUID, page, limit int) ([]model.Shift, int64, error)
	DB() *gorm.DB
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) DB() *gorm.DB { return r.db }

func (r *shiftRepo) CreateShiftTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Create(s).Error
}

func (r *shiftRepo) FindOpenByOperatorTx(tx *gorm.DB, operatorID, businessID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("operator_id = ? AND business_id = ? AND status = ?", operatorID, businessID, model.ShiftOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) FindShiftByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) LockShiftTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) UpdateShiftTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Save(s).Error
}

func (r *shiftRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *shiftRepo) ListMovementsTx(tx *gorm.DB, shiftID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := tx.Preload("Kind").
		Where("shift_id = ?", shiftID).
		Order("recorded_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *shiftRepo) ListMovements(ctx context.Context, shiftID uuid.UUID) ([]model.CashMovement, error) {
	return r.ListMovementsTx(r.db.WithContext(ctx), shiftID)
}

func (r *shiftRepo) ListShifts(ctx context.Context, businessID uuid.UUID, page, limit int) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Shift{}).Where("business_id = ?", businessID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}
