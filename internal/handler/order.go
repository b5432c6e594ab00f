package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	checkoutService service.CheckoutService
	historyService  service.OrderHistoryService
}

func NewOrderHandler(checkoutService service.CheckoutService, historyService service.OrderHistoryService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		historyService:  historyService,
	}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	order, err := h.checkoutService.Checkout(ctx, identity, &req, c.Request().Header.Get(idempotencyHeader))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var page dto.PageRequest
	if err := c.Bind(&page); err != nil {
		return bindError(err)
	}

	resp, err := h.historyService.History(ctx, identity, page)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
