// Command eventlog drains the domain event queues and appends one line per
// event to a log file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/fyyur-trivia/internal/config"
	"github.com/iliyamo/fyyur-trivia/internal/logging"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
)

func main() {
	var path string
	cmd := &cobra.Command{
		Use:           "eventlog",
		Short:         "Append show.listed and game.played events to a log file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadLogging()
			logs, err := logging.Setup(cfg)
			if err != nil {
				return err
			}
			defer logs.Close()

			log, f, err := queue.OpenEventLog(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logrus.WithFields(logrus.Fields{"file": path, "queues": queue.Queues}).Info("eventlog: consuming")
			return queue.Consume(ctx, cfg.AMQPURL, log)
		},
	}
	cmd.Flags().StringVar(&path, "file", "logs/events.log", "file that receives the events")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("eventlog failed")
		os.Exit(1)
	}
}
