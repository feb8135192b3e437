package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestID tags every request and response with an X-Request-Id (a random
// UUID unless the client sent one).
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString})
}

// RequestLogger logs one line per request through logrus.  Server errors are
// logged at error level with the handler's error attached; the client only
// ever sees the generic response.
func RequestLogger(app string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil && !c.Response().Committed {
				c.Error(err) // commit the response so the status is final
			}

			res := c.Response()
			entry := logrus.WithFields(logrus.Fields{
				"app":        app,
				"request_id": res.Header().Get(echo.HeaderXRequestID),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"route":      c.Path(),
				"status":     res.Status,
				"bytes":      res.Size,
				"latency":    time.Since(start).String(),
				"remote_ip":  c.RealIP(),
			})
			switch {
			case res.Status >= 500:
				entry.WithError(err).Error("request failed")
			case res.Status >= 400:
				entry.Info("request rejected")
			default:
				entry.Debug("request")
			}
			return nil
		}
	}
}
