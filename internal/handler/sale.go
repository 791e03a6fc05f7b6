package handler

import (
	"net/http"
	"strconv"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/middleware"
	"github.com/Jefferson1994/AppControlBarberias/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct{ sales service.SaleService }

func NewSaleHandler(sales service.SaleService) *SaleHandler { return &SaleHandler{sales: sales} }

// Process runs the atomic sale pipeline for the authenticated operator.
func (h *SaleHandler) Process(c *gin.Context) {
	var req dto.ProcessSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.ProcessSale(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns one sale with its line items.
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale id"))
		return
	}
	resp, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns sales filtered by shift, newest first.
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.sales.ListSales(c.Request.Context(), dto.SaleFilter{
		ShiftID: c.Query("shift_id"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
