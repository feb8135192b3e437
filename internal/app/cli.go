package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/config"
	"github.com/iliyamo/fyyur-trivia/internal/database"
	"github.com/iliyamo/fyyur-trivia/internal/logging"
	"github.com/iliyamo/fyyur-trivia/internal/migration"
	"github.com/iliyamo/fyyur-trivia/internal/service"
)

// Definition describes one web application to NewCommand.
type Definition struct {
	Name       string
	Short      string
	Migrations migration.Set

	// Build returns the application's echo instance.  The returned cleanup
	// runs after the server stops.
	Build func(ctx context.Context, cfg config.Config, db *gorm.DB) (*echo.Echo, func(), error)
}

// NewCommand returns the root command of an application binary with the
// serve and migrate subcommands.
func NewCommand(def Definition) *cobra.Command {
	var (
		cfg    config.Config
		logs   io.Closer
		db     *gorm.DB
		openDB = func() error {
			var err error
			db, err = database.Open(cfg)
			return err
		}
	)
	root := &cobra.Command{
		Use:           def.Name,
		Short:         def.Short,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg = config.Load()
			var err error
			logs, err = logging.Setup(cfg)
			if err != nil {
				return err
			}
			return openDB()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			err := database.Close(db)
			if logs != nil {
				err = errors.Join(err, logs.Close())
			}
			return err
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, cleanup, err := def.Build(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}
			return Serve(cmd.Context(), e, ":"+cfg.Port)
		},
	}

	root.AddCommand(serve, migrateCommand(def.Migrations, func() *gorm.DB { return db }))
	return root
}

func migrateCommand(set migration.Set, db func() *gorm.DB) *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Apply or roll back schema migrations"}

	var upTo string
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations, up to --to when given",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return set.Up(db(), upTo)
		},
	}
	up.Flags().StringVar(&upTo, "to", "", "last migration ID to apply")

	var (
		downTo string
		all    bool
	)
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration, down to --to, or --all",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if all {
				return set.Reset(db())
			}
			return set.Down(db(), downTo)
		},
	}
	down.Flags().StringVar(&downTo, "to", "", "migration ID to roll back to (kept applied)")
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")
	down.MarkFlagsMutuallyExclusive("to", "all")

	status := &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := set.Status(db())
			if err != nil {
				return err
			}
			for _, s := range steps {
				mark := "pending"
				if s.Applied {
					mark = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", mark, s.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

// Publisher returns the event publisher selected by cfg and its cleanup.
func Publisher(cfg config.Config) (service.Publisher, func()) {
	if !cfg.EventsEnabled {
		return service.NopPublisher{}, func() {}
	}
	p := service.NewAMQPPublisher(cfg.AMQPURL)
	return p, func() {
		if err := p.Close(); err != nil {
			logrus.WithError(err).Warn("rabbitmq: close")
		}
	}
}

// Execute runs cmd and exits non-zero on error.
func Execute(cmd *cobra.Command) {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error(cmd.Name() + " failed")
		os.Exit(1)
	}
}
