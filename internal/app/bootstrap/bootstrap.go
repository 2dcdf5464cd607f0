package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_enricher/internal/app/provider"
	"wallet_enricher/internal/app/service"
	"wallet_enricher/internal/client"
	"wallet_enricher/internal/config"
	"wallet_enricher/internal/infrastructure/restapi"
	"wallet_enricher/internal/infrastructure/runstore"
	"wallet_enricher/internal/pkg/logger"
	"wallet_enricher/internal/pkg/metrics"
)

// App holds the wired dependencies shared by the commands.
type App struct {
	Config *config.Config
	Zap    *zap.Logger
	Dune   *client.DuneClient
	Runs   *runstore.Store
}

// New loads the configuration at path and sets up logging, metrics and the Dune client.
func New(path string) (*App, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.Setup(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	metrics.MustRegister()

	return &App{
		Config: cfg,
		Zap:    zapLogger,
		Dune: client.NewDuneClient(client.DuneConfig{
			BaseURL:       cfg.Dune.BaseURL,
			APIKey:        cfg.Dune.APIKey,
			Timeout:       cfg.Dune.RequestTimeout(),
			UploadTimeout: cfg.Dune.UploadTimeout(),
		}, zapLogger),
		Runs: runstore.New(
			time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
			time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		),
	}, nil
}

// Arkham creates the vendor client. A positive requestsPerSecond adds a limiter shared by all sessions.
func (a *App) Arkham() *client.ArkhamClient {
	cfg := a.Config.Arkham
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return client.NewArkhamClient(client.ArkhamConfig{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		RequestDelay:      cfg.RequestDelay(),
		RateLimitCooldown: cfg.RateLimitCooldown(),
		Timeout:           cfg.RequestTimeout(),
		Limiter:           limiter,
	}, a.Zap)
}

// LabelJob wires the labels sync job.
func (a *App) LabelJob() (*service.SyncJob, error) {
	cfg := a.Config.Labels
	appLogger := logger.NewSlogAdapter("job", service.JobLabels)

	addresses, err := provider.NewAddressProvider(a.Dune, cfg.Source.QueryID, cfg.Source.Column, cfg.Source.File, appLogger)
	if err != nil {
		return nil, err
	}
	labels := service.NewLabelService(a.Arkham(), cfg.Workers, a.Config.Export.Dir, appLogger)

	return service.NewSyncJob(service.JobLabels, cfg.Table.CreateRequest(), addresses, a.Dune, labels.ExportLabels, a.Runs, appLogger), nil
}

// PortfolioJob wires the portfolio sync job.
func (a *App) PortfolioJob() (*service.SyncJob, error) {
	cfg := a.Config.Portfolios
	appLogger := logger.NewSlogAdapter("job", service.JobPortfolios)

	addresses, err := provider.NewAddressProvider(a.Dune, cfg.Source.QueryID, cfg.Source.Column, cfg.Source.File, appLogger)
	if err != nil {
		return nil, err
	}
	portfolios := service.NewPortfolioService(a.Arkham(), service.PortfolioServiceConfig{
		Workers:    cfg.Workers,
		BatchSize:  cfg.BatchSize,
		BatchPause: cfg.BatchPause(),
		AsOfMillis: cfg.AsOfMillis,
		ExportDir:  a.Config.Export.Dir,
	}, appLogger)

	return service.NewSyncJob(service.JobPortfolios, cfg.Table.CreateRequest(), addresses, a.Dune, portfolios.ExportPortfolios, a.Runs, appLogger), nil
}

// RunJob runs job once, serving the status endpoints meanwhile when the server is enabled.
func (a *App) RunJob(ctx context.Context, job *service.SyncJob) (int, error) {
	if a.Config.Server.Enabled {
		srv := restapi.NewServer(a.Config.Server.Port, a.Runs, a.Zap)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.Zap.Warn("Status server forced to shutdown", zap.Error(err))
			}
		}()
	}

	summary, err := job.Run(ctx)
	if err != nil {
		var stepErr *service.StepError
		if errors.As(err, &stepErr) {
			a.Zap.Error("Sync job failed",
				zap.String("job", summary.Job),
				zap.String("step", stepErr.Step),
				zap.Error(stepErr.Err))
		}
		return 1, err
	}

	a.Zap.Info("Sync job finished",
		zap.String("job", summary.Job),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("rows", summary.Rows),
		zap.String("csv", summary.CSVPath),
		zap.Duration("elapsed", summary.Elapsed))
	return 0, nil
}
