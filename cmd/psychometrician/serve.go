package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/psychometrician/internal/adapters/http/api"
	"github.com/okian/psychometrician/internal/adapters/http/site"
	"github.com/okian/psychometrician/internal/adapters/http/swagger"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/config"
	"github.com/okian/psychometrician/pkg/logger"
	"github.com/okian/psychometrician/pkg/tracing"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
	serviceName            = "psychometrician"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the questionnaire over HTTP",
		Long: `Serve the session API, the OpenAPI document at /api-docs and a browser
questionnaire at /.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address override")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	shutdownTracing, err := tracing.Init(ctx, cfg.TracingEnabled,
		tracing.WithServiceName(serviceName),
		tracing.WithWriter(os.Stderr),
	)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error(ctx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	svc, err := service.NewFromConfig(ctx, cfg, service.WithLogger(log.Named("service")))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
			return err
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	return g.Wait()
}

// newMux routes the API, the OpenAPI document and the browser questionnaire.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes the service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats updates the queue and bank gauges as a side effect.
			svc.GetStats()
		}
	}
}
