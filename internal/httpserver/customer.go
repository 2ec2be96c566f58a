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

type CustomerHTTP struct {
	Svc *service.CustomerService
}

func (h *CustomerHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.list")

	p := util.ParseListParams(c.QueryParams(), repo.CustomerSort)
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_customers_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *CustomerHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.get")

	id, err := pathID(c, l, "get_customer_failed")
	if err != nil {
		return err
	}
	cust, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_customer_failed", err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.create")

	var req transport.CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_customer_failed", err)
	}
	cust, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, l, "create_customer_failed", err)
	}
	l.Info("create_customer_success", "id", cust.ID)
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.update")

	id, err := pathID(c, l, "update_customer_failed")
	if err != nil {
		return err
	}
	var req transport.CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_customer_failed", err)
	}
	cust, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_customer_failed", err)
	}
	l.Info("update_customer_success", "id", id)
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.delete")

	id, err := pathID(c, l, "delete_customer_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_customer_failed", err)
	}
	l.Info("delete_customer_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

// Leads lists the enquiries and quotes linked to one customer.
func (h *CustomerHTTP) Leads(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.leads")

	id, err := pathID(c, l, "customer_leads_failed")
	if err != nil {
		return err
	}
	leads, err := h.Svc.Leads(ctx, id)
	if err != nil {
		return fail(c, l, "customer_leads_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": leads})
}

func (h *CustomerHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.export")

	rows, err := h.Svc.Export(ctx, util.ParseListParams(c.QueryParams(), repo.CustomerSort))
	if err != nil {
		return fail(c, l, "export_customers_failed", err)
	}
	return sendExport(c, l, "export_customers_failed", "customers", rows)
}
