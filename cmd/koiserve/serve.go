package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"koiserve/internal/config"
	"koiserve/internal/httpapi"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifier over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(*cfgPath, cmd.Flags())
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg, log); err != nil {
				log.Error().Err(err).Msg("koiserve stopped")
				return err
			}
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// configureHTTP pushes the resolved configuration into the HTTP layer.
func configureHTTP(ctx context.Context, cfg config.Config, log zerolog.Logger) {
	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(cfg.Log.Level)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeoutSeconds(int64(cfg.PredictTimeout))
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, nil, nil)
	httpapi.SetBaseContext(ctx)
}

// serve runs the HTTP server until ctx is canceled, then drains in-flight
// requests for up to five seconds.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("close backend")
		}
	}()

	configureHTTP(ctx, cfg, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(b),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("koiserve listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}
