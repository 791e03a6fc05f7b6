package handler

import (
	"net/http"

	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/middleware"
	"github.com/Jefferson1994/AppControlBarberias/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ catalog service.CatalogService }

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalog.CreateProduct(c.Request.Context(), middleware.UserID(c), businessID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.UserID(c), businessID, productID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	if err := h.catalog.DeactivateProduct(c.Request.Context(), middleware.UserID(c), businessID, productID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.catalog.ListProducts(c.Request.Context(), businessID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalog.CreateService(c.Request.Context(), middleware.UserID(c), businessID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) DeactivateService(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := pathID(c, "serviceId")
	if !ok {
		return
	}
	if err := h.catalog.DeactivateService(c.Request.Context(), middleware.UserID(c), businessID, serviceID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.catalog.ListServices(c.Request.Context(), businessID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
