// README: Base handler utilities (error mapping to HTTP status codes).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loadapp/internal/modules/costing"
	"loadapp/internal/modules/offer"
	"loadapp/internal/modules/route"
	"loadapp/internal/modules/settings"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeServiceError maps domain sentinel errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, route.ErrNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, route.ErrBadRequest),
		errors.Is(err, costing.ErrValidation),
		errors.Is(err, settings.ErrValidation),
		errors.Is(err, settings.ErrReasonRequired),
		errors.Is(err, offer.ErrNegativeMargin),
		errors.Is(err, offer.ErrReasonRequired),
		errors.Is(err, offer.ErrCostBasisRequired):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, offer.ErrInvalidTransition),
		errors.Is(err, offer.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, route.ErrLocationService):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
