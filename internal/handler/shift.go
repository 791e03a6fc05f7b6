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

type ShiftHandler struct {
	shifts service.ShiftService
	ledger service.LedgerService
}

func NewShiftHandler(shifts service.ShiftService, ledger service.LedgerService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, ledger: ledger}
}

// Open starts a new shift for the authenticated operator.
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.shifts.Open(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close reconciles and closes a shift against the counted drawer total.
func (h *ShiftHandler) Close(c *gin.Context) {
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.shifts.Close(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report returns a shift with its full movement ledger and running balance.
func (h *ShiftHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift id"))
		return
	}
	resp, err := h.shifts.Report(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement appends a manual ingress or egress to an open shift.
func (h *ShiftHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ledger.Append(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns a business's shifts, newest first.
func (h *ShiftHandler) List(c *gin.Context) {
	businessID, err := uuid.Parse(c.Query("business_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("business_id query parameter is required"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	shifts, total, err := h.shifts.List(c.Request.Context(), businessID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shifts, "total": total, "page": page, "limit": limit})
}
