// Package router assembles the echo instances of both applications:
// middleware, operational endpoints and the per-app route tables.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/form"
	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/middleware"
)

// newEcho returns an echo instance with the middleware shared by both apps
// and the /healthz and /metrics endpoints.  Order matters: the metrics
// middleware renders handler errors, so the request logger above it sees
// the final status.
func newEcho(app string, db *gorm.DB, metrics *middleware.Metrics, onError echo.HTTPErrorHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = form.NewValidator()
	e.HTTPErrorHandler = onError

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(app))
	e.Use(metrics.Middleware())

	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", metrics.Handler())
	return e
}
