package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// FlashCookie carries messages from one response to the next request.
const FlashCookie = "fyyur_flash"

const (
	flashInKey   = "flash.in"
	flashOutKey  = "flash.out"
	flashUsedKey = "flash.used"
	flashHadKey  = "flash.had"
	flashTTL     = 10 * time.Minute
)

type flashClaims struct {
	Messages []string `json:"msgs"`
	jwt.RegisteredClaims
}

// Flash returns a middleware that keeps flashed messages in a cookie signed
// as an HS256 JWT.  Messages queued with AddFlash are written just before
// the response headers go out; a tampered or expired cookie is ignored.
func Flash(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(FlashCookie); err == nil && ck.Value != "" {
				c.Set(flashHadKey, true)
				var claims flashClaims
				_, err := jwt.ParseWithClaims(ck.Value, &claims, func(t *jwt.Token) (interface{}, error) {
					return key, nil
				}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
				if err != nil {
					logrus.WithError(err).Debug("flash: dropping invalid cookie")
					c.Set(flashUsedKey, true) // clear it
				} else {
					c.Set(flashInKey, claims.Messages)
				}
			}

			c.Response().Before(func() { writeFlash(c, key) })
			return next(c)
		}
	}
}

func writeFlash(c echo.Context, key []byte) {
	pending, _ := c.Get(flashOutKey).([]string)
	used, _ := c.Get(flashUsedKey).(bool)
	if !used {
		// not rendered yet; carry them across another redirect
		in, _ := c.Get(flashInKey).([]string)
		pending = append(in, pending...)
	}
	if len(pending) == 0 {
		if had, _ := c.Get(flashHadKey).(bool); had && used {
			c.SetCookie(&http.Cookie{Name: FlashCookie, Path: "/", MaxAge: -1, HttpOnly: true})
		}
		return
	}
	now := time.Now()
	claims := flashClaims{
		Messages: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		logrus.WithError(err).Error("flash: sign cookie")
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(flashTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AddFlash queues msg for the next rendered page.
func AddFlash(c echo.Context, msg string) {
	out, _ := c.Get(flashOutKey).([]string)
	c.Set(flashOutKey, append(out, msg))
}

// Flashes returns the messages to show on the page being rendered: those
// carried in by the cookie followed by those queued during this request.
// They are consumed and will not be shown again.
func Flashes(c echo.Context) []string {
	in, _ := c.Get(flashInKey).([]string)
	out, _ := c.Get(flashOutKey).([]string)
	c.Set(flashInKey, nil)
	c.Set(flashOutKey, nil)
	c.Set(flashUsedKey, true)
	msgs := make([]string, 0, len(in)+len(out))
	return append(append(msgs, in...), out...)
}
