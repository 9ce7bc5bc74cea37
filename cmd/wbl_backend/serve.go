package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/handlers"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/internal/platform/scheduler"
	"github.com/SscSPs/water_billing_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("skip-migrations", false, "Start without applying pending migrations")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	logger, cfg := app.logger, app.cfg

	if skip, _ := cmd.Flags().GetBool("skip-migrations"); !skip {
		if err := runMigrations(cfg, logger); err != nil {
			return err
		}
	}

	posthogClient := utils.InitializePosthogClient(cfg.Posthog.APIKey, cfg.Posthog.Endpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	if err := handlers.RegisterRoutes(r, cfg, app.services, app.clock, posthogClient); err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		jobs, err := scheduler.NewJobScheduler(app.services.Accrual, app.services.DebtCase, app.clock, loc,
			cfg.Scheduler.Interval, cfg.Scheduler.AccrualDay, logger)
		if err != nil {
			return err
		}
		go jobs.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
