package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/service"
	"github.com/Skotchmaster/paperman/internal/util"
	"github.com/Skotchmaster/paperman/pkg/logging"
)

type DashboardHTTP struct {
	Svc *service.DashboardService
	Now func() time.Time
}

// Since returns the first day of the month months-1 before now, or the zero
// time when months is not positive.
func Since(now time.Time, months int) time.Time {
	if months <= 0 {
		return time.Time{}
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(months - 1), 0)
}

func (h *DashboardHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.get")

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	loc := h.Svc.Loc
	since := Since(now().In(loc), util.ParseIntDefault(c.QueryParam("months"), 0))

	d, err := h.Svc.Build(ctx, since)
	if err != nil {
		return fail(c, l, "dashboard_failed", err)
	}
	return c.JSON(http.StatusOK, d)
}
