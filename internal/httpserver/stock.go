package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/service"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/logging"
)

// StockHTTP is the public catalog. No route here needs a session.
type StockHTTP struct {
	Svc *service.StockService
}

var stockFilters = []string{"category", "type", "status"}

func (h *StockHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stock.list")

	page, err := h.Svc.List(ctx, util.ParseListParams(c.QueryParams(), service.StockSort, stockFilters...))
	if err != nil {
		return fail(c, l, "list_stock_failed", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *StockHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stock.search")

	page, err := h.Svc.SearchText(ctx, util.ParseListParams(c.QueryParams(), service.StockSort, stockFilters...))
	if err != nil {
		return fail(c, l, "search_stock_failed", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *StockHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stock.get")

	id, err := pathID(c, l, "get_stock_failed")
	if err != nil {
		return err
	}
	item, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_stock_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}
