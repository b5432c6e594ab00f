package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

type productListQuery struct {
	dto.PageRequest
	StoreID string `query:"storeId"`
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var q productListQuery
	if err := c.Bind(&q); err != nil {
		return bindError(err)
	}

	resp, err := h.productService.List(ctx, q.PageRequest, q.StoreID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	var page dto.PageRequest
	if err := c.Bind(&page); err != nil {
		return bindError(err)
	}

	resp, err := h.productService.ListAll(ctx, page)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.productService.Get(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	resp, err := h.productService.Create(ctx, identity, &req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	resp, err := h.productService.Update(ctx, identity, c.Param("id"), &req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	if err := h.productService.Delete(ctx, identity, c.Param("id")); err != nil {
		return httpError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
