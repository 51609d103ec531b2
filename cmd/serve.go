package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"qualitysite/internal/bootstrap"
	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
	"qualitysite/internal/scheduler"
	"qualitysite/internal/transport/rest"
	ingestuc "qualitysite/internal/usecase/ingest"
)

// serveCmd exposes the read API and /metrics. With --with-scheduler the
// recurring importers run in the same process, which is the usual
// single-binary deployment.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svcs appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		withScheduler, _ := cmd.Flags().GetBool("with-scheduler")

		server := &http.Server{
			Addr:              app.Config.Server.Addr,
			Handler:           rest.NewRouter(svcs.Report, svcs.Metrics),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", server.Addr))
			serveErr <- server.ListenAndServe()
		}()

		if withScheduler {
			sched := scheduler.New(app.Config.Ingest.MaxConcurrent)
			for _, feed := range ingestuc.FeedNames {
				feed := feed
				err := sched.Register(scheduler.Job{
					Name:  "import-" + feed,
					Every: app.Config.Ingest.Interval(),
					Run: func(jobCtx context.Context) error {
						_, err := svcs.Ingest.RunFeed(jobCtx, feed)
						return err
					},
				})
				if err != nil {
					return errs.Wrapf(err, "register %s job", feed)
				}
			}
			go func() {
				if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Error(ctx, "scheduler stopped", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		select {
		case err := <-serveErr:
			return errs.Wrap(err, "http server")
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		logging.Info(ctx, "http server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("with-scheduler", false, "Run the recurring importers in-process")
}
