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

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	p := util.ParseListParams(c.QueryParams(), repo.UserSort, "role")
	items, total, err := h.Svc.List(ctx, p)
	if err != nil {
		return fail(c, l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p, total))
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := pathID(c, l, "get_user_failed")
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.UserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_user_failed", err)
	}
	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, l, "create_user_failed", err)
	}
	l.Info("create_user_success", "id", u.ID, "role", u.Role)
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := pathID(c, l, "update_user_failed")
	if err != nil {
		return err
	}
	var req transport.UserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user_failed", err)
	}
	u, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_user_failed", err)
	}
	l.Info("update_user_success", "id", id)
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := pathID(c, l, "delete_user_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_user_failed", err)
	}
	l.Info("delete_user_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}
