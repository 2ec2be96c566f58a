package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/service"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	p := util.ParseListParams(c.QueryParams(), repo.CategorySort)
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := pathID(c, l, "get_category_failed")
	if err != nil {
		return err
	}
	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_category_failed", err)
	}
	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, l, "create_category_failed", err)
	}
	l.Info("create_category_success", "id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := pathID(c, l, "update_category_failed")
	if err != nil {
		return err
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_category_failed", err)
	}
	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_category_failed", err)
	}
	l.Info("update_category_success", "id", id)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathID(c, l, "delete_category_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_category_failed", err)
	}
	l.Info("delete_category_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

type ProductHTTP struct {
	Svc *service.ProductService
}

var productFilters = []string{"category", "type"}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	p := util.ParseListParams(c.QueryParams(), repo.ProductSort, productFilters...)
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := pathID(c, l, "get_product_failed")
	if err != nil {
		return err
	}
	prod, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_failed", err)
	}
	prod, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, l, "create_product_failed", err)
	}
	l.Info("create_product_success", "id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := pathID(c, l, "update_product_failed")
	if err != nil {
		return err
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_product_failed", err)
	}
	prod, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_product_failed", err)
	}
	l.Info("update_product_success", "id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c, l, "delete_product_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_product_failed", err)
	}
	l.Info("delete_product_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.export")

	rows, err := h.Svc.Export(ctx, util.ParseListParams(c.QueryParams(), repo.ProductSort, productFilters...))
	if err != nil {
		return fail(c, l, "export_products_failed", err)
	}
	return sendExport(c, l, "export_products_failed", "products", rows)
}
