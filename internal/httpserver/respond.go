package httpserver

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/export"
	"github.com/Skotchmaster/paperman/internal/service"
)

type fieldErrors interface {
	FieldErrors() map[string]string
}

// message strips the trailing sentinel from a service error.
func message(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

// fail logs err once under event and turns it into the HTTP response.
// Validation errors carry a field map so forms can show inline messages.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	var fe fieldErrors
	switch {
	case errors.As(err, &fe) && errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "duplicate", "error", err)
		return c.JSON(http.StatusConflict, echo.Map{"message": "already exists", "fields": fe.FieldErrors()})
	case errors.As(err, &fe):
		l.Warn(event, "status", 400, "reason", "validation failed", "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "fields": fe.FieldErrors()})
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, message(err, service.ErrNotFound))
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, message(err, service.ErrConflict))
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, message(err, service.ErrUnauthorized))
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func pathID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", 400, "reason", "id not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	return id, nil
}

// sendExport renders rows in the format named by ?format= as a download.
func sendExport(c echo.Context, l *slog.Logger, event, name string, rows any) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		l.Warn(event, "status", 400, "reason", "unsupported format", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or xlsx")
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, name, rows); err != nil {
		l.Error(event, "status", 500, "reason", "cannot render export", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render export")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(name, format)+`"`)
	return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
}
