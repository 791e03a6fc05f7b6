package service

import (
	"context"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages a business's products and services. Catalog rows are
// never hard-deleted: sales snapshot names and prices, and history must stand.
type CatalogService interface {
	CreateProduct(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, callerID, businessID, productID uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, callerID, businessID, productID uuid.UUID) error
	ListProducts(ctx context.Context, businessID uuid.UUID) ([]dto.ProductResponse, error)

	CreateService(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	DeactivateService(ctx context.Context, callerID, businessID, serviceID uuid.UUID) error
	ListServices(ctx context.Context, businessID uuid.UUID) ([]dto.ServiceResponse, error)
}

type catalogService struct {
	catalogRepo  repository.CatalogRepository
	businessRepo repository.BusinessRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository, businessRepo repository.BusinessRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, businessRepo: businessRepo}
}

func (s *catalogService) CreateProduct(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return nil, err
	}
	product := &model.Product{
		BusinessID:    businessID,
		Name:          req.Name,
		Description:   req.Description,
		ListPrice:     req.ListPrice,
		PromoPrice:    req.PromoPrice,
		DiscountPrice: req.DiscountPrice,
		OnHand:        req.OnHand,
		Active:        true,
	}
	if err := s.catalogRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, callerID, businessID, productID uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return nil, err
	}
	product, err := s.catalogRepo.FindProductByID(ctx, productID, businessID)
	if err != nil {
		return nil, apierror.E(apierror.KindNotFound, "product not found")
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.ListPrice != nil {
		product.ListPrice = *req.ListPrice
	}
	if req.PromoPrice != nil {
		product.PromoPrice = req.PromoPrice
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if err := s.catalogRepo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, callerID, businessID, productID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return err
	}
	if _, err := s.catalogRepo.FindProductByID(ctx, productID, businessID); err != nil {
		return apierror.E(apierror.KindNotFound, "product not found")
	}
	return s.catalogRepo.DeactivateProduct(ctx, productID)
}

func (s *catalogService) ListProducts(ctx context.Context, businessID uuid.UUID) ([]dto.ProductResponse, error) {
	products, err := s.catalogRepo.ListProducts(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, productToResponse(&products[i]))
	}
	return out, nil
}

func (s *catalogService) CreateService(ctx context.Context, callerID, businessID uuid.UUID, req dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return nil, err
	}
	svc := &model.Service{
		BusinessID:    businessID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CommissionPct: req.CommissionPct,
		Active:        true,
	}
	if err := s.catalogRepo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	resp := serviceToResponse(svc)
	return &resp, nil
}

func (s *catalogService) DeactivateService(ctx context.Context, callerID, businessID, serviceID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID, businessID); err != nil {
		return err
	}
	if _, err := s.catalogRepo.FindServiceByID(ctx, serviceID, businessID); err != nil {
		return apierror.E(apierror.KindNotFound, "service not found")
	}
	return s.catalogRepo.DeactivateService(ctx, serviceID)
}

func (s *catalogService) ListServices(ctx context.Context, businessID uuid.UUID) ([]dto.ServiceResponse, error) {
	services, err := s.catalogRepo.ListServices(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		out = append(out, serviceToResponse(&services[i]))
	}
	return out, nil
}

func (s *catalogService) requireAdmin(ctx context.Context, callerID, businessID uuid.UUID) error {
	employee, err := s.businessRepo.FindEmployee(ctx, callerID, businessID)
	if err != nil || !employee.Active || employee.Role != model.RoleAdmin {
		return apierror.E(apierror.KindNotAuthorized, "admin role required for this business")
	}
	return nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		ListPrice:     p.ListPrice,
		PromoPrice:    p.PromoPrice,
		DiscountPrice: p.DiscountPrice,
		OnHand:        p.OnHand,
		Active:        p.Active,
	}
}

func serviceToResponse(s *model.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:            s.ID.String(),
		Name:          s.Name,
		Description:   s.Description,
		Price:         s.Price,
		DiscountPrice: s.DiscountPrice,
		CommissionPct: s.CommissionPct,
		Active:        s.Active,
	}
}
