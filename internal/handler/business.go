package handler

import (
	"net/http"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/middleware"
	"github.com/Jefferson1994/AppControlBarberias/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BusinessHandler struct{ businesses service.BusinessService }

func NewBusinessHandler(businesses service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

func (h *BusinessHandler) Create(c *gin.Context) {
	var req dto.CreateBusinessRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.businesses.CreateBusiness(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.businesses.GetBusiness(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BusinessHandler) ListOwned(c *gin.Context) {
	resp, err := h.businesses.ListOwned(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *BusinessHandler) HireEmployee(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.HireEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.businesses.HireEmployee(c.Request.Context(), middleware.UserID(c), businessID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BusinessHandler) ListEmployees(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.businesses.ListEmployees(c.Request.Context(), middleware.UserID(c), businessID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *BusinessHandler) CreateCustomer(c *gin.Context) {
	businessID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.businesses.CreateCustomer(c.Request.Context(), middleware.UserID(c), businessID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
