package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError maps business errors onto HTTP statuses. Anything
// unrecognized is a 500; the transaction it came from already rolled back.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrTokenStale):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrTableInactive),
		errors.Is(err, services.ErrTableOccupiedByOther),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrItemUnavailable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrOrderSettled),
		errors.Is(err, services.ErrNoUnpaidOrders),
		errors.Is(err, services.ErrNothingToCharge),
		errors.Is(err, services.ErrPaymentNotSucceeded):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// contextTableID reads the table id set by the table-token middleware.
func contextTableID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("table_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// contextUserID reads the staff user id set by the auth middleware.
func contextUserID(c *gin.Context) *uint {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	if id, ok := v.(uint); ok {
		return &id
	}
	return nil
}
