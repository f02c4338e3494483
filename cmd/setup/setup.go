package setup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flowfin/go-conciliador/internal/common/graceful"
	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/repositories"
	"github.com/flowfin/go-conciliador/internal/services"

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/lib/pq"
)

type Setup struct {
	Config      config.Config
	NewRelic    *newrelic.Application
	WriteDB     *sql.DB
	ReadDB      *sql.DB
	LedgerRepo  repositories.LedgerRepository
	ClosureRepo repositories.ClosureRepository
	Service     *services.Services
}

func Init(command string) (setup *Setup, stopper []graceful.ProcessStopper, err error) {
	cfg, err := config.Load("")
	if err != nil {
		return
	}

	setup = &Setup{
		Config: cfg,
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return
	}
	zap.ReplaceGlobals(logger)
	stopper = append(stopper, func(ctx context.Context) error {
		_ = logger.Sync()
		return nil
	})

	setup.NewRelic = setupNR(cfg)

	writeDB, readDB, err := setupPostgres(cfg)
	if err != nil {
		err = fmt.Errorf("failed connect to database: %w", err)
		return
	}
	setup.WriteDB = writeDB
	setup.ReadDB = readDB
	stopper = append(stopper, func(ctx context.Context) error {
		var errs error

		if writeDB != nil {
			if closeErr := writeDB.Close(); closeErr != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close writeDB: %w", closeErr))
			}
		}
		if readDB != nil {
			if closeErr := readDB.Close(); closeErr != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close readDB: %w", closeErr))
			}
		}

		return errs
	})

	ledgerRepo, err := repositories.NewLedgerRepository(cfg.Ledger.StorageDir)
	if err != nil {
		err = fmt.Errorf("failed to open validation ledger: %w", err)
		return
	}
	setup.LedgerRepo = ledgerRepo
	stopper = append(stopper, func(ctx context.Context) error { return ledgerRepo.Close() })

	closureRepo, err := repositories.NewClosureRepository(cfg.Ledger.ClosureDir)
	if err != nil {
		err = fmt.Errorf("failed to prepare closure directory: %w", err)
		return
	}
	setup.ClosureRepo = closureRepo

	sqlRepo := repositories.NewSQLRepository(writeDB, readDB, cfg)
	setup.Service = services.New(cfg, sqlRepo, ledgerRepo, closureRepo)

	zap.L().Info("[SETUP] dependencies ready", zap.String("command", command), zap.String("env", cfg.App.Env))
	return
}

func setupLogger(cfg config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.App.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(cfg.App.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.App.LogLevel, err)
		}
		level = parsed
	}

	var zapCfg zap.Config
	if config.StringToEnvironment(cfg.App.Env) == config.LOCAL_ENV {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build(zap.Fields(zap.String("app", cfg.App.Name)))
}

func setupNR(cfg config.Config) *newrelic.Application {
	if cfg.NewRelicLicenseKey == "" {
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.App.Name),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		zap.L().Warn("[SETUP] new relic disabled", zap.Error(err))
		return nil
	}
	return app
}

func setupPostgres(cfg config.Config) (*sql.DB, *sql.DB, error) {
	writeDB, err := initDB(cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init write DB: %w", err)
	}

	readDB, err := initDB(cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init read DB: %w", err)
	}

	return writeDB, readDB, nil
}

func initDB(pgConf config.Postgres) (*sql.DB, error) {
	const (
		defaultMaxOpen     = 10
		defaultMaxIdle     = 10
		defaultMaxLifetime = 3 // minutes
	)

	db, err := sql.Open("postgres", pgConf.DSN())
	if err != nil {
		return nil, err
	}

	maxOpen := pgConf.MaxOpenConnection
	if maxOpen == 0 {
		maxOpen = defaultMaxOpen
	}
	maxIdle := pgConf.MaxIdleConnection
	if maxIdle == 0 {
		maxIdle = defaultMaxIdle
	}
	maxLifetime := pgConf.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = defaultMaxLifetime
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(maxLifetime) * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
