package repository

import (
	"context"

	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	// CreateTx persists the sale together with its owned line items.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// ListByShiftTx loads every sale on a shift with its lines; used by the
	// reconciliation engine at close time.
	ListByShiftTx(tx *gorm.DB, shiftID uuid.UUID) ([]model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Lines").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) ListByShiftTx(tx *gorm.DB, shiftID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := tx.Preload("Lines").
		Where("shift_id = ?", shiftID).
		Order("issued_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.ShiftID != "" {
		q = q.Where("shift_id = ?", filter.ShiftID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Lines").
		Order("issued_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
