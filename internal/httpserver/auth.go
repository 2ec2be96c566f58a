package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/service"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/pkg/logging"
	authmw "github.com/Skotchmaster/paperman/pkg/middleware/auth"
	"github.com/Skotchmaster/paperman/pkg/tokens"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) setCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.Access.Token, "/", res.Access.ExpiresAt, h.SecureCookie))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.Refresh.Token, "/", res.Refresh.ExpiresAt, h.SecureCookie))
}

func (h *AuthHTTP) clearCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.SecureCookie))
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.SecureCookie))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_failed", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login_failed", err)
	}
	h.setCookies(c, res)
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"user":     res.User,
		"is_admin": res.IsAdmin,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var raw string
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		raw = ck.Value
	}
	res, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		h.clearCookies(c)
		return fail(c, l, "refresh_failed", err)
	}
	h.setCookies(c, res)
	l.Info("refresh_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"user":     res.User,
		"is_admin": res.IsAdmin,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			h.clearCookies(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot revoke refresh token")
		}
	}
	h.clearCookies(c)

	l.Info("successful_logout")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	u, err := h.Svc.Me(ctx, authmw.UserID(c))
	if err != nil {
		return fail(c, l, "me_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     u,
		"is_admin": u.IsAdmin(),
	})
}
