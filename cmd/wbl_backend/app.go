package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/water_billing_ledger/internal/adapters/lock"
	"github.com/SscSPs/water_billing_ledger/internal/adapters/messaging"
	"github.com/SscSPs/water_billing_ledger/internal/adapters/sheets"
	"github.com/SscSPs/water_billing_ledger/internal/adapters/storage"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/core/services"
	"github.com/SscSPs/water_billing_ledger/internal/platform/config"
	"github.com/SscSPs/water_billing_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/SscSPs/water_billing_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// application is everything a command needs once configuration is loaded.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	pool     *pgxpool.Pool
	services *portssvc.ServiceContainer
	closers  []func()
}

// bootstrap loads configuration, connects to Postgres and the optional infrastructure, and
// builds the service container.
func bootstrap(ctx context.Context) (*application, error) {
	logger := slog.Default()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, logger: logger, clock: clock.New(loc)}

	app.pool, err = database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	app.onClose(func() { database.ClosePgxPool(app.pool) })
	logger.Info("Database connection pool established.")

	infra, err := app.infrastructure(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	repos := pgsql.NewRepositoryProvider(app.pool)
	app.services = services.NewServiceContainer(cfg, repos, infra, app.clock)
	return app, nil
}

// infrastructure picks the Redis, RabbitMQ, MinIO and Sheets adapters that are configured and
// the in-process fallbacks for the rest.
func (a *application) infrastructure(ctx context.Context) (services.Infrastructure, error) {
	var infra services.Infrastructure
	cfg := a.cfg

	if cfg.Redis.Host != "" {
		client, err := lock.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return infra, err
		}
		a.onClose(func() { _ = client.Close() })
		infra.Locker = lock.NewRedisLocker(client)
		a.logger.Info("Using Redis locks", slog.String("addr", cfg.Redis.Addr()))
	} else {
		infra.Locker = lock.NewLocalLocker()
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, err := messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return infra, err
		}
		a.onClose(func() { _ = publisher.Close() })
		infra.Events = publisher
	} else {
		infra.Events = messaging.NewLogPublisher(a.logger)
	}

	if cfg.MinIO.Endpoint != "" {
		archive, err := storage.NewMinioArchive(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Secure, cfg.MinIO.Bucket)
		if err != nil {
			return infra, err
		}
		infra.Archive = archive
	} else {
		a.logger.Warn("MINIO_ENDPOINT not set. Raw bank statements will not be archived.")
	}

	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SpreadsheetID != "" {
		reader, err := sheets.NewReader(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return infra, err
		}
		infra.Sheets = reader
	}

	return infra, nil
}

func (a *application) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
