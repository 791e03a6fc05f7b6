package handler

import (
	"net/http"
	"reflect"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeError maps a domain error kind to an HTTP status and writes the
// envelope. Unclassified errors become opaque 500s.
func writeError(c *gin.Context, err error) {
	status := statusForKind(apierror.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		c.JSON(status, apierror.New("internal server error"))
		return
	}
	c.JSON(status, apierror.FromDomain(err))
}

func statusForKind(kind apierror.Kind) int {
	switch kind {
	case apierror.KindValidation, apierror.KindInvalidLineItem, apierror.KindMissingEmissionCodes:
		return http.StatusBadRequest
	case apierror.KindNotFound, apierror.KindShiftNotFound:
		return http.StatusNotFound
	case apierror.KindNotAuthorized, apierror.KindOperatorMismatch:
		return http.StatusForbidden
	case apierror.KindShiftAlreadyOpen, apierror.KindShiftAlreadyClosed, apierror.KindShiftNotOpen,
		apierror.KindInsufficientStock, apierror.KindConflict:
		return http.StatusConflict
	case apierror.KindBusinessInactive, apierror.KindOutsideOperatingWindow:
		return http.StatusUnprocessableEntity
	case apierror.KindFilingFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
