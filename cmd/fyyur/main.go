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
	"github.com/iliyamo/fyyur-trivia/internal/view"
)

func main() {
	app.Execute(app.NewCommand(app.Definition{
		Name:       "fyyur",
		Short:      "Fyyur venue and artist booking site",
		Migrations: migration.Fyyur(),
		Build:      build,
	}))
}

func build(_ context.Context, cfg config.Config, db *gorm.DB) (*echo.Echo, func(), error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, nil, err
	}
	events, closeEvents := app.Publisher(cfg)
	h := handler.NewFyyurHandler(
		repository.NewVenueRepo(db),
		repository.NewArtistRepo(db),
		repository.NewShowRepo(db),
		events,
	)
	e := router.NewFyyur(router.Fyyur{
		DB:        db,
		Handler:   h,
		Renderer:  renderer,
		SecretKey: cfg.SecretKey,
	})
	return e, closeEvents, nil
}
