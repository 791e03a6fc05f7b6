package repository

import (
	"context"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	CreateBusiness(ctx context.Context, b *model.Business) error
	FindBusinessByID(ctx context.Context, id uuid.UUID) (*model.Business, error)
	FindBusinessTx(tx *gorm.DB, id uuid.UUID) (*model.Business, error)
	UpdateBusiness(ctx context.Context, b *model.Business) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Business, error)

	CreateEmployee(ctx context.Context, e *model.Employee) error
	// FindEmployee resolves a user's role binding for one business — the
	// identity surface the register engine trusts.
	FindEmployee(ctx context.Context, userID, businessID uuid.UUID) (*model.Employee, error)
	FindEmployeeTx(tx *gorm.DB, userID, businessID uuid.UUID) (*model.Employee, error)
	FindEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	FindEmployeeByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Employee, error)
	ListEmployees(ctx context.Context, businessID uuid.UUID) ([]model.Employee, error)

	CreateCustomer(ctx context.Context, c *model.Customer) error
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
}

type businessRepo struct{ db *gorm.DB }

func NewBusinessRepository(db *gorm.DB) BusinessRepository { return &businessRepo{db: db} }

func (r *businessRepo) CreateBusiness(ctx context.Context, b *model.Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *businessRepo) FindBusinessByID(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	return r.FindBusinessTx(r.db.WithContext(ctx), id)
}

func (r *businessRepo) FindBusinessTx(tx *gorm.DB, id uuid.UUID) (*model.Business, error) {
	var b model.Business
	if err := tx.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *businessRepo) UpdateBusiness(ctx context.Context, b *model.Business) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *businessRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) CreateEmployee(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *businessRepo) FindEmployee(ctx context.Context, userID, businessID uuid.UUID) (*model.Employee, error) {
	return r.FindEmployeeTx(r.db.WithContext(ctx), userID, businessID)
}

func (r *businessRepo) FindEmployeeTx(tx *gorm.DB, userID, businessID uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := tx.Where("user_id = ? AND business_id = ?", userID, businessID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *businessRepo) FindEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	return r.FindEmployeeByIDTx(r.db.WithContext(ctx), id)
}

func (r *businessRepo) FindEmployeeByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	if err := tx.First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *businessRepo) ListEmployees(ctx context.Context, businessID uuid.UUID) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Find(&employees).Error
	return employees, err
}

func (r *businessRepo) CreateCustomer(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *businessRepo) FindCustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
