package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/config"
	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/middleware"
)

// Trivia wires the quiz API.  Redis is optional; without it responses are
// neither cached nor rate limited.
type Trivia struct {
	DB        *gorm.DB
	Handler   *handler.TriviaHandler
	Metrics   *middleware.Metrics
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// NewTrivia returns the quiz API's echo instance.
func NewTrivia(t Trivia) *echo.Echo {
	if t.Metrics == nil {
		t.Metrics = middleware.NewMetrics("trivia")
	}
	e := newEcho("trivia", t.DB, t.Metrics, handler.TriviaErrorHandler)
	RegisterTrivia(e, t.Handler,
		middleware.NewTokenBucket(t.RateLimit, t.Redis),
		middleware.NewRedisCache(t.Cache, t.Redis),
	)
	return e
}

// RegisterTrivia maps the API endpoints, each wrapped in mw.  Unmatched
// paths bypass mw.
func RegisterTrivia(e *echo.Echo, h *handler.TriviaHandler, mw ...echo.MiddlewareFunc) {
	g := routes{e: e, mw: mw}
	g.GET("/categories", h.ListCategories)
	g.POST("/categories", h.CreateCategory)
	g.GET("/categories/:id/questions", h.CategoryQuestions)

	g.GET("/questions", h.ListQuestions)
	g.POST("/questions", h.CreateQuestion)
	g.POST("/questions/search", h.SearchQuestions)
	g.PATCH("/questions/:id", h.RateQuestion)
	g.DELETE("/questions/:id", h.DeleteQuestion)

	g.POST("/quizzes", h.NextQuizQuestion)

	g.POST("/players", h.GetOrCreatePlayer)
	g.PATCH("/players", h.RecordScore)
}

type routes struct {
	e  *echo.Echo
	mw []echo.MiddlewareFunc
}

func (r routes) GET(path string, h echo.HandlerFunc)    { r.e.GET(path, h, r.mw...) }
func (r routes) POST(path string, h echo.HandlerFunc)   { r.e.POST(path, h, r.mw...) }
func (r routes) PATCH(path string, h echo.HandlerFunc)  { r.e.PATCH(path, h, r.mw...) }
func (r routes) DELETE(path string, h echo.HandlerFunc) { r.e.DELETE(path, h, r.mw...) }
