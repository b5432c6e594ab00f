package handler

import (
	"errors"
	"net/http"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// httpError turns service errors into client facing responses.
// Anything outside the taxonomy becomes a generic 500.
func httpError(c echo.Context, err error) error {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		stock      *service.InsufficientStockError
		forbidden  *service.ForbiddenError
		conflict   *service.ConflictError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	case errors.As(err, &stock):
		return echo.NewHTTPError(http.StatusConflict, stock.Error())
	case errors.As(err, &forbidden):
		return echo.NewHTTPError(http.StatusForbidden, forbidden.Error())
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.As(err, &httpErr):
		return httpErr
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	if errors.Is(err, service.ErrTransactionFailed) {
		return echo.NewHTTPError(http.StatusInternalServerError, "checkout failed, no changes were made; please retry")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func bindError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return echo.NewHTTPError(http.StatusBadRequest, httpErr.Message)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}
