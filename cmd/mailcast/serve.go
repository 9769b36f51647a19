package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailcast"
	"github.com/dmitrymomot/mailcast/handlers"
	"github.com/dmitrymomot/mailcast/middlewares"
	"github.com/dmitrymomot/mailcast/pkg/dispatch"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/mailer"
	"github.com/dmitrymomot/mailcast/pkg/mailer/provider"
	"github.com/dmitrymomot/mailcast/pkg/storage"
)

const sentryFlushTimeout = 2 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dispatch service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config) error {
	log := logger.NewFromConfig(os.Stdout, cfg.Log,
		middlewares.RequestIDExtractor(),
		handlers.DispatchIDExtractor(),
	)

	var checks []mailcast.HealthOption

	// A missing sender is not fatal: the service starts and dispatch requests get a 500.
	var sender mailer.Sender
	transport, err := provider.New(cfg.Mailer)
	switch {
	case err == nil:
		sender = transport.Sender
		checks = append(checks, mailcast.WithReadinessCheck("mailer", transport.Healthcheck))
		log.Info("mail transport configured", slog.String("provider", transport.Name))
	case errors.Is(err, mailer.ErrSenderNotConfigured):
		log.Warn("mail sender is not configured", slog.Any("error", err))
	default:
		return fmt.Errorf("mail transport: %w", err)
	}

	dispatchOpts := []dispatch.Option{dispatch.WithLogger(log.With(slog.String("component", "dispatch")))}
	if cfg.Storage.Enabled() {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("attachment storage: %w", err)
		}
		dispatchOpts = append(dispatchOpts, dispatch.WithAttachmentLoader(store))
		checks = append(checks, mailcast.WithOptionalReadinessCheck("storage", store.Healthcheck))
	}

	d := dispatch.New(sender, cfg.Dispatch, dispatchOpts...)

	app := mailcast.New(
		mailcast.WithLogger(log),
		mailcast.WithErrorHandler(handlers.ErrorHandler),
		mailcast.WithMaxBodySize(cfg.MaxBodyBytes),
		mailcast.WithMiddleware(
			middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORSOrigins...)),
			middlewares.RequestID(),
			middlewares.Logging(middlewares.WithLoggingStarted(), middlewares.WithLoggingSkipPaths("/health/live", "/health/ready")),
			middlewares.Recover(),
		),
		mailcast.WithHealthChecks(checks...),
		mailcast.WithHandlers(handlers.NewDispatch(d)),
	)

	return app.Run(cfg.Addr,
		mailcast.Logger(log),
		mailcast.WithContext(ctx),
		mailcast.WriteTimeout(cfg.WriteTimeout),
		mailcast.ShutdownTimeout(cfg.ShutdownTimeout),
		mailcast.ShutdownHook(func(context.Context) error {
			logger.FlushSentry(sentryFlushTimeout)
			return nil
		}),
	)
}
