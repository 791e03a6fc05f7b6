package repository

import (
	"context"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository covers products and services. The sale pipeline only ever
// reads catalog rows and decrements product stock; CRUD is for onboarding.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	FindProductByID(ctx context.Context, id, businessID uuid.UUID) (*model.Product, error)
	// FindProductTx loads the product under FOR UPDATE — the stock row is a
	// hot shared resource and must be read locked before decrementing.
	FindProductTx(tx *gorm.DB, id, businessID uuid.UUID) (*model.Product, error)
	// DecrementStockTx subtracts qty guarded by on_hand >= qty; returns
	// gorm.ErrRecordNotFound semantics via rows-affected = 0.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, businessID uuid.UUID) ([]model.Product, error)

	CreateService(ctx context.Context, s *model.Service) error
	FindServiceByID(ctx context.Context, id, businessID uuid.UUID) (*model.Service, error)
	FindServiceTx(tx *gorm.DB, id, businessID uuid.UUID) (*model.Service, error)
	UpdateService(ctx context.Context, s *model.Service) error
	DeactivateService(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, businessID uuid.UUID) ([]model.Service, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogRepo) FindProductByID(ctx context.Context, id, businessID uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) FindProductTx(tx *gorm.DB, id, businessID uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND on_hand >= ?", id, qty).
		Update("on_hand", gorm.Expr("on_hand - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *catalogRepo) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

func (r *catalogRepo) ListProducts(ctx context.Context, businessID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND active = true", businessID).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogRepo) CreateService(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *catalogRepo) FindServiceByID(ctx context.Context, id, businessID uuid.UUID) (*model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepo) FindServiceTx(tx *gorm.DB, id, businessID uuid.UUID) (*model.Service, error) {
	var s model.Service
	err := tx.Where("id = ? AND business_id = ?", id, businessID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepo) UpdateService(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *catalogRepo) DeactivateService(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", id).Update("active", false).Error
}

func (r *catalogRepo) ListServices(ctx context.Context, businessID uuid.UUID) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND active = true", businessID).
		Order("name ASC").
		Find(&services).Error
	return services, err
}
