package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/gin-gonic/gin"
)

var log = config.NewLogger()

// errorStatus maps domain errors to HTTP statuses and API codes
var errorStatus = []struct {
	target error
	status int
	code   string
}{
	{models.ErrRecordNotFound, http.StatusNotFound, models.ErrNotFound},
	{models.ErrInvalidConfiguration, http.StatusBadRequest, models.ErrCodeInvalidConfiguration},
	{models.ErrEmptyCart, http.StatusBadRequest, models.ErrCodeEmptyCart},
	{models.ErrInvalidTransition, http.StatusConflict, models.ErrCodeInvalidTransition},
	{models.ErrAccountSuspended, http.StatusForbidden, models.ErrCodeAccountSuspended},
	{models.ErrNotPermitted, http.StatusForbidden, models.ErrForbidden},
	{models.ErrValidation, http.StatusBadRequest, models.ErrValidationFailed},
	{models.ErrDuplicate, http.StatusConflict, models.ErrConflict},
	{models.ErrReportUnavailable, http.StatusServiceUnavailable, models.ErrUnavailable},
	{models.ErrAssistantUnavailable, http.StatusServiceUnavailable, models.ErrUnavailable},
}

// respondError writes the APIError matching err. Unknown errors become a 500
// without leaking their text.
func respondError(ctx *gin.Context, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.target) {
			ctx.JSON(m.status, models.NewAPIError(m.code, err.Error()))
			return
		}
	}
	log.WithError(err).WithField("path", ctx.FullPath()).Error("Request failed")
	ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body", map[string]interface{}{
		"error": err.Error(),
	}))
}

// requireActor returns the caller set by OAuth2Auth or answers 401
func requireActor(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
	}
	return actor, ok
}
