package service

import (
	"context"
	"errors"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CitizenLookup resolves a national ID against the civil registry. Used to
// prefill customer names when only an ID number was captured at the register.
type CitizenLookup interface {
	LookupByNationalID(ctx context.Context, nationalID string) (name string, err error)
}

// BusinessService covers tenant onboarding: businesses, employee bindings and
// customers. All mutations require the caller to own or administer the tenant.
type BusinessService interface {
	CreateBusiness(ctx context.Context, ownerID uuid.UUID, req dto.CreateBusinessRequest) (*dto.BusinessResponse, error)
	GetBusiness(ctx context.Context, id uuid.UUID) (*dto.BusinessResponse, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]dto.BusinessResponse, error)

	HireEmployee(ctx context.Context, callerID, businessID uuid.UUID, req dto.HireEmployeeRequest) (*dto.EmployeeResponse, error)
	ListEmployees(ctx context.Context, callerID, businessID uuid.UUID) ([]dto.EmployeeResponse, error)

	CreateCustomer(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
	userRepo     repository.UserRepository
	citizens     CitizenLookup
}

func NewBusinessService(businessRepo repository.BusinessRepository, userRepo repository.UserRepository, citizens CitizenLookup) BusinessService {
	return &businessService{businessRepo: businessRepo, userRepo: userRepo, citizens: citizens}
}

func (s *businessService) CreateBusiness(ctx context.Context, ownerID uuid.UUID, req dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	business := &model.Business{
		Name:              req.Name,
		Address:           req.Address,
		OwnerID:           ownerID,
		EstablishmentCode: req.EstablishmentCode,
		OpeningTime:       req.OpeningTime,
		Active:            true,
	}
	if err := s.businessRepo.CreateBusiness(ctx, business); err != nil {
		return nil, err
	}

	// The owner works at their own shop as an admin from day one.
	owner := &model.Employee{
		UserID:     ownerID,
		BusinessID: business.ID,
		Role:       model.RoleAdmin,
		Active:     true,
	}
	if err := s.businessRepo.CreateEmployee(ctx, owner); err != nil {
		return nil, err
	}

	resp := businessToResponse(business)
	return &resp, nil
}

func (s *businessService) GetBusiness(ctx context.Context, id uuid.UUID) (*dto.BusinessResponse, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, id)
	if err != nil {
		return nil, apierror.E(apierror.KindNotFound, "business not found")
	}
	resp := businessToResponse(business)
	return &resp, nil
}

func (s *businessService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]dto.BusinessResponse, error) {
	businesses, err := s.businessRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BusinessResponse, 0, len(businesses))
	for i := range businesses {
		out = append(out, businessToResponse(&businesses[i]))
	}
	return out, nil
}

func (s *businessService) HireEmployee(ctx context.Context, callerID, businessID uuid.UUID, req dto.HireEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid user_id")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, apierror.E(apierror.KindNotFound, "user not found")
	}
	if _, err := s.businessRepo.FindEmployee(ctx, userID, businessID); err == nil {
		return nil, apierror.E(apierror.KindConflict, "user already works at this business")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	employee := &model.Employee{
		UserID:            userID,
		BusinessID:        businessID,
		Role:              req.Role,
		EmissionPointCode: req.EmissionPointCode,
		Active:            true,
	}
	if req.DefaultCommissionPct != nil {
		employee.DefaultCommissionPct = *req.DefaultCommissionPct
	} else {
		employee.DefaultCommissionPct = decimal.Zero
	}
	if err := s.businessRepo.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}

	resp := employeeToResponse(employee)
	return &resp, nil
}

func (s *businessService) ListEmployees(ctx context.Context, callerID, businessID uuid.UUID) ([]dto.EmployeeResponse, error) {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return nil, err
	}
	employees, err := s.businessRepo.ListEmployees(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, employeeToResponse(&employees[i]))
	}
	return out, nil
}

func (s *businessService) CreateCustomer(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := s.requireEmployee(ctx, callerID, businessID); err != nil {
		return nil, err
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	// With only a national ID in hand, ask the civil registry for the name.
	// The registry being down is not a reason to block a sale.
	if name == "" && req.NationalID != nil && s.citizens != nil {
		resolved, err := s.citizens.LookupByNationalID(ctx, *req.NationalID)
		if err != nil {
			log.Warn().Err(err).Str("national_id", *req.NationalID).Msg("citizen lookup failed")
		} else {
			name = resolved
		}
	}
	if name == "" {
		return nil, apierror.E(apierror.KindValidation, "customer name is required when the registry cannot resolve it")
	}

	customer := &model.Customer{
		BusinessID: businessID,
		NationalID: req.NationalID,
		Name:       name,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if err := s.businessRepo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return &dto.CustomerResponse{
		ID:         customer.ID.String(),
		NationalID: customer.NationalID,
		Name:       customer.Name,
		Email:      customer.Email,
		Phone:      customer.Phone,
	}, nil
}

func (s *businessService) requireAdmin(ctx context.Context, callerID, businessID uuid.UUID) error {
	employee, err := s.businessRepo.FindEmployee(ctx, callerID, businessID)
	if err != nil || !employee.Active || employee.Role != model.RoleAdmin {
		return apierror.E(apierror.KindNotAuthorized, "admin role required for this business")
	}
	return nil
}

func (s *businessService) requireEmployee(ctx context.Context, callerID, businessID uuid.UUID) error {
	employee, err := s.businessRepo.FindEmployee(ctx, callerID, businessID)
	if err != nil || !employee.Active {
		return apierror.E(apierror.KindNotAuthorized, "user is not an active employee of this business")
	}
	return nil
}

func businessToResponse(b *model.Business) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:                b.ID.String(),
		Name:              b.Name,
		Address:           b.Address,
		EstablishmentCode: b.EstablishmentCode,
		OpeningTime:       b.OpeningTime,
		Active:            b.Active,
	}
}

func employeeToResponse(e *model.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:                   e.ID.String(),
		UserID:               e.UserID.String(),
		BusinessID:           e.BusinessID.String(),
		Role:                 e.Role,
		DefaultCommissionPct: e.DefaultCommissionPct,
		EmissionPointCode:    e.EmissionPointCode,
		Active:               e.Active,
	}
}
