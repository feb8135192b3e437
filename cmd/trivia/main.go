package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/app"
	"github.com/iliyamo/fyyur-trivia/internal/config"
	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/migration"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
	"github.com/iliyamo/fyyur-trivia/internal/router"
)

func main() {
	app.Execute(app.NewCommand(app.Definition{
		Name:       "trivia",
		Short:      "Trivia quiz JSON API",
		Migrations: migration.Trivia(),
		Build:      build,
	}))
}

func build(_ context.Context, cfg config.Config, db *gorm.DB) (*echo.Echo, func(), error) {
	events, closeEvents := app.Publisher(cfg)
	h := handler.NewTriviaHandler(
		repository.NewCategoryRepo(db),
		repository.NewQuestionRepo(db),
		repository.NewPlayerRepo(db),
		events,
	)
	rdb := config.NewRedisClient()
	e := router.NewTrivia(router.Trivia{
		DB:        db,
		Handler:   h,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})
	cleanup := func() {
		closeEvents()
		if rdb != nil {
			_ = rdb.Close()
		}
	}
	return e, cleanup, nil
}
