package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"qualitysite/internal/bootstrap"
	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
	"qualitysite/internal/scheduler"
	ingestuc "qualitysite/internal/usecase/ingest"
)

// scheduleCmd runs the recurring trigger: every feed importer on its fixed
// interval until SIGINT/SIGTERM.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recurring feed importers",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svcs appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		interval := app.Config.Ingest.Interval()
		sched := scheduler.New(app.Config.Ingest.MaxConcurrent)
		for _, feed := range ingestuc.FeedNames {
			feed := feed
			err := sched.Register(scheduler.Job{
				Name:  "import-" + feed,
				Every: interval,
				Run: func(jobCtx context.Context) error {
					_, err := svcs.Ingest.RunFeed(jobCtx, feed)
					return err
				},
			})
			if err != nil {
				return errs.Wrapf(err, "register %s job", feed)
			}
		}

		logging.Info(ctx, "import scheduler starting",
			slog.Duration("interval", interval),
			slog.Int("max_concurrent", app.Config.Ingest.MaxConcurrent))

		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return errs.Wrap(err, "run scheduler")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
