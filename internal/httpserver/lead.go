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

type LeadHTTP struct {
	Svc *service.LeadService
}

var leadFilters = []string{"status", "kind"}

// SubmitEnquiry is the public contact form.
func (h *LeadHTTP) SubmitEnquiry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.submit_enquiry")

	var req transport.EnquiryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "submit_enquiry_failed", err)
	}
	lead, err := h.Svc.SubmitEnquiry(ctx, req)
	if err != nil {
		return fail(c, l, "submit_enquiry_failed", err)
	}
	l.Info("submit_enquiry_success", "id", lead.ID, "reference", lead.Reference)
	return c.JSON(http.StatusCreated, lead)
}

// SubmitQuote is the public quote cart checkout.
func (h *LeadHTTP) SubmitQuote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.submit_quote")

	var req transport.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "submit_quote_failed", err)
	}
	lead, err := h.Svc.SubmitQuote(ctx, req)
	if err != nil {
		return fail(c, l, "submit_quote_failed", err)
	}
	l.Info("submit_quote_success", "id", lead.ID, "reference", lead.Reference, "items", len(lead.Quote.Items))
	return c.JSON(http.StatusCreated, lead)
}

func (h *LeadHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.list")

	p := util.ParseListParams(c.QueryParams(), repo.LeadSort, leadFilters...)
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_leads_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *LeadHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.get")

	id, err := pathID(c, l, "get_lead_failed")
	if err != nil {
		return err
	}
	lead, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_lead_failed", err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Update serves both PUT and PATCH; absent fields keep their value.
func (h *LeadHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.update")

	id, err := pathID(c, l, "update_lead_failed")
	if err != nil {
		return err
	}
	var req transport.PatchLeadRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_lead_failed", err)
	}
	lead, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_lead_failed", err)
	}
	l.Info("update_lead_success", "id", id, "status", lead.Status)
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.delete")

	id, err := pathID(c, l, "delete_lead_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_lead_failed", err)
	}
	l.Info("delete_lead_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *LeadHTTP) Availability(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.availability")

	id, err := pathID(c, l, "lead_availability_failed")
	if err != nil {
		return err
	}
	items, err := h.Svc.Availability(ctx, id)
	if err != nil {
		return fail(c, l, "lead_availability_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *LeadHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "lead.export")

	rows, err := h.Svc.Export(ctx, util.ParseListParams(c.QueryParams(), repo.LeadSort, leadFilters...))
	if err != nil {
		return fail(c, l, "export_leads_failed", err)
	}
	return sendExport(c, l, "export_leads_failed", "enquiries", rows)
}
