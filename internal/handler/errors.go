package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed Trivia API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   int    `json:"error"`
}

var triviaMessages = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusNotFound:            "Resource not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusUnprocessableEntity: "Resource cannot be processed",
	http.StatusTooManyRequests:     "Too many requests",
	http.StatusInternalServerError: "Internal server error",
}

// statusOf maps err to an HTTP status.  Anything that is not an
// *echo.HTTPError is an internal error.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// TriviaErrorHandler renders errors as {success:false, message, error}.
// Codes without a fixed message collapse to 400 (client) or 500 (server).
func TriviaErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusOf(err)
	msg, ok := triviaMessages[code]
	if !ok {
		if code >= 500 {
			code = http.StatusInternalServerError
		} else {
			code = http.StatusBadRequest
		}
		msg = triviaMessages[code]
	}
	if code >= 500 {
		logrus.WithError(err).WithField("path", c.Request().URL.Path).Error("trivia: internal error")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{Success: false, Message: msg, Error: code})
}

// FyyurErrorHandler renders the site's error pages.  404 and 405 use the
// not-found page, server errors the 500 page; other client errors get the
// plain status text.
func FyyurErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusOf(err)
	var page string
	switch {
	case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
		page = "errors/404"
	case code >= 500:
		code = http.StatusInternalServerError
		page = "errors/500"
		logrus.WithError(err).WithField("path", c.Request().URL.Path).Error("fyyur: internal error")
	default:
		_ = c.String(code, http.StatusText(code))
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := c.Render(code, page, pageData("", nil)); rerr != nil {
		logrus.WithError(rerr).Error("fyyur: render error page")
		_ = c.String(code, http.StatusText(code))
	}
}
