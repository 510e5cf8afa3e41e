package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rgclark/putterbase/internal/aggregate"
	"github.com/rgclark/putterbase/internal/api/handlers"
	"github.com/rgclark/putterbase/internal/api/middleware"
	"github.com/rgclark/putterbase/internal/config"
	"github.com/rgclark/putterbase/internal/engine"
	"github.com/rgclark/putterbase/internal/ingest"
	"github.com/rgclark/putterbase/internal/store"
	"github.com/rgclark/putterbase/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server, scheduler, and stream consumer",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	eng := engine.NewEngine(st,
		engine.WithLogger(log),
		engine.WithWindows(cfg.Aggregate.WindowsDays),
		engine.WithAggregator(aggregate.New(cfg.Aggregate.TrimFraction, cfg.Aggregate.MinSamples)),
	)

	sched, err := engine.NewScheduler(
		eng, st, cfg.Schedule.AggregationInterval, cfg.Schedule.LockTTL, log,
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	ingester := ingest.NewIngester(st, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	healthH := handlers.NewHealthHandler(st)
	e.GET("/healthz", healthH.Healthz)
	e.GET("/readyz", healthH.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Putterbase API", Version))
	handlers.RegisterResolveRoutes(api, handlers.NewResolveHandler(st))
	handlers.RegisterDealRoutes(api, handlers.NewDealsHandler(st))
	handlers.RegisterStatRoutes(api, handlers.NewStatsHandler(st))
	handlers.RegisterObservationRoutes(api, handlers.NewObservationsHandler(ingester))
	handlers.RegisterTriggerRoutes(api, handlers.NewAggregateHandler(eng))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(st))
	handlers.RegisterSystemStateRoutes(api, handlers.NewSystemStateHandler(st))

	sched.Start()

	if cfg.Stream.Enabled {
		consumer := ingest.NewConsumer(cfg.Stream, ingester, log)
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("stream consumer stopped", "err", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	// Wait for any in-flight scheduled jobs.
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
	}

	log.Info("server stopped")
	return nil
}
