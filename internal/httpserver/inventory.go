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

type InventoryHTTP struct {
	Svc *service.InventoryService
}

var inventoryFilters = []string{"product_id", "status"}

func (h *InventoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.list")

	p := util.ParseListParams(c.QueryParams(), repo.InventorySort, inventoryFilters...)
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_inventory_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *InventoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.get")

	id, err := pathID(c, l, "get_inventory_failed")
	if err != nil {
		return err
	}
	inv, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_inventory_failed", err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *InventoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create")

	var req transport.InventoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_inventory_failed", err)
	}
	inv, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, l, "create_inventory_failed", err)
	}
	l.Info("create_inventory_success", "id", inv.ID)
	return c.JSON(http.StatusCreated, inv)
}

func (h *InventoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.update")

	id, err := pathID(c, l, "update_inventory_failed")
	if err != nil {
		return err
	}
	var req transport.InventoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_inventory_failed", err)
	}
	inv, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_inventory_failed", err)
	}
	l.Info("update_inventory_success", "id", id)
	return c.JSON(http.StatusOK, inv)
}

func (h *InventoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.delete")

	id, err := pathID(c, l, "delete_inventory_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_inventory_failed", err)
	}
	l.Info("delete_inventory_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *InventoryHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.export")

	rows, err := h.Svc.Export(ctx, util.ParseListParams(c.QueryParams(), repo.InventorySort, inventoryFilters...))
	if err != nil {
		return fail(c, l, "export_inventory_failed", err)
	}
	return sendExport(c, l, "export_inventory_failed", "inventory", rows)
}
