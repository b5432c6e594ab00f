package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type StoreHandler struct {
	storeService service.StoreService
}

func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
	}
}

func (h *StoreHandler) CreateStore(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req dto.CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	resp, err := h.storeService.CreateStore(ctx, identity, &req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *StoreHandler) ListMyStores(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var page dto.PageRequest
	if err := c.Bind(&page); err != nil {
		return bindError(err)
	}

	resp, err := h.storeService.ListMyStores(ctx, identity, page)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
