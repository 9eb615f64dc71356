// Package app wires configuration, infrastructure, and the orchestration
// engine together and starts the runtime mode selected by config.Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/TheCowboyAI/cim-keys-sub002/internal/auth"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/config"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/eventbus"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/eventstore"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/natsjwt"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/nscexport"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/pkicrypto"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/drivers/yubikeymock"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/httpserver"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/orchestrator"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/platform"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/telemetry"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/bootstrap"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/drivers"
)

// Exit codes for the CLI driver (spec.md §6): 0 success, 2 validation
// failure, 3 saga failed with compensation completed, 4 saga failed with
// compensation incomplete, 5 driver/IO error.
const (
	ExitSuccess               = 0
	ExitValidationFailed      = 2
	ExitCompensationCompleted = 3
	ExitCompensationIncomplete = 4
	ExitDriverError           = 5
)

// Run reads configuration, connects to infrastructure, and starts the
// mode cfg.Mode selects: "bootstrap" runs one bootstrap saga from a
// config file and exits, "server" serves the command API until ctx is
// cancelled. It returns the process exit code alongside any error.
func Run(ctx context.Context, cfg *config.Config) (int, error) {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)

	logger.Info("starting cim-keys-sub002", "mode", cfg.Mode)

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return ExitDriverError, fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return ExitDriverError, fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return ExitDriverError, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	metricsReg := telemetry.NewRegistry()

	pki := pkicrypto.New(logger)
	jwts := natsjwt.New(logger)
	yubikeys := yubikeymock.New(logger)
	store := eventstore.New(db, logger)
	store.Start(ctx)
	defer store.Close()
	bus := eventbus.New(rdb, logger)
	exporter := nscexport.New(cfg.NSCExportDir)

	engine := orchestrator.New(orchestrator.Drivers{
		Keys:      pki,
		Certs:     pki,
		YubiKeys:  yubikeys,
		JWTs:      jwts,
		Publisher: bus,
		Store:     store,
		Clock:     drivers.SystemClock{},
		NSCExport: exporter,
	})

	switch cfg.Mode {
	case "bootstrap":
		return runBootstrap(ctx, cfg, logger, engine)
	case "server":
		err := runServer(ctx, cfg, logger, db, rdb, metricsReg, engine)
		if err != nil {
			return ExitDriverError, err
		}
		return ExitSuccess, nil
	default:
		return ExitValidationFailed, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

// runBootstrap loads a bootstrap config file, starts a bootstrap saga, and
// maps its outcome to one of the CLI driver's exit codes.
func runBootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger, engine *orchestrator.Engine) (int, error) {
	bcfg, err := bootstrap.LoadConfig(cfg.BootstrapConfigPath)
	if err != nil {
		return ExitValidationFailed, err
	}

	run, startErr := engine.StartBootstrap(ctx, bcfg.ToSagaRequest())
	if run == nil {
		var validationErr cimerrors.ValidationFailed
		if errors.As(startErr, &validationErr) {
			return ExitValidationFailed, startErr
		}
		return ExitDriverError, fmt.Errorf("starting bootstrap saga: %w", startErr)
	}

	status := run.Saga.Status()
	logger.Info("bootstrap saga finished",
		"saga_id", run.Saga.ID,
		"phase", run.Saga.Phase,
		"status", status,
	)

	if startErr == nil && status.IsCompleted {
		return ExitSuccess, nil
	}

	logger.Error("bootstrap saga failed",
		"saga_id", run.Saga.ID,
		"failed_step", status.StepName,
		"artifacts", run.Saga.Artifacts,
	)
	if run.CompensationRan && !run.CompensationFailed {
		return ExitCompensationCompleted, fmt.Errorf("bootstrap saga failed, compensation completed: %w", startErr)
	}
	return ExitCompensationIncomplete, fmt.Errorf("bootstrap saga failed, compensation incomplete: %w", startErr)
}

// runServer starts the HTTP command API and blocks until ctx is
// cancelled.
func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry, engine *orchestrator.Engine) error {
	apikeyAuth := &auth.APIKeyAuthenticator{Secret: cfg.APIKeySecret}
	srv := httpserver.NewServer(cfg, logger, db, rdb, metricsReg, apikeyAuth, engine)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		return httpSrv.Shutdown(context.Background())
	}
}
