package service

import (
	"context"
	"fmt"
	"time"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
	"wallet_enricher/internal/infrastructure/csvexport"
	"wallet_enricher/internal/pkg/metrics"
)

const JobPortfolios = "portfolios"

// PortfolioServiceConfig holds the tuning of the portfolio path.
type PortfolioServiceConfig struct {
	Workers    int
	BatchSize  int
	BatchPause time.Duration
	AsOfMillis int64 // 0 means the time of each call
	ExportDir  string
}

// PortfolioService enriches addresses with Arkham balances and exports them as the portfolio CSV.
type PortfolioService struct {
	enricher  *Enricher[entity.WalletPortfolio]
	exportDir string
	logger    port.Logger
	now       func() time.Time
}

// NewPortfolioService creates a new PortfolioService. Failed lookups are dropped.
func NewPortfolioService(vendor port.VendorClient, cfg PortfolioServiceConfig, logger port.Logger) *PortfolioService {
	asOf := cfg.AsOfMillis
	task := func(ctx context.Context, session port.VendorSession, address string) entity.Result[entity.WalletPortfolio] {
		return session.FetchPortfolio(ctx, address, asOf)
	}
	return &PortfolioService{
		enricher: NewEnricher[entity.WalletPortfolio](
			EnricherConfig{
				Job:        JobPortfolios,
				Workers:    cfg.Workers,
				BatchSize:  cfg.BatchSize,
				BatchPause: cfg.BatchPause,
			},
			vendor,
			task,
			DropFailures[entity.WalletPortfolio],
			logger,
		),
		exportDir: cfg.ExportDir,
		logger:    logger,
		now:       time.Now,
	}
}

// ExportPortfolios enriches addresses batch by batch and writes the portfolio CSV.
func (s *PortfolioService) ExportPortfolios(ctx context.Context, addresses []string) (ExportReport, error) {
	report := ExportReport{Job: JobPortfolios, Total: len(addresses)}
	if len(addresses) == 0 {
		s.logger.Warn("No address list provided", "job", JobPortfolios)
		return report, ErrNoAddresses
	}

	s.logger.Info("Starting to process addresses", "job", JobPortfolios, "addresses", len(addresses))
	portfolios, stats := s.enricher.RunBatched(ctx, addresses)
	report.Succeeded, report.Failed, report.Elapsed = stats.Succeeded, stats.Failed, stats.Elapsed

	if len(portfolios) == 0 {
		s.logger.Error("No data successfully retrieved, canceling CSV export", "job", JobPortfolios, "failed", stats.Failed)
		return report, ErrNoResults
	}

	path := csvexport.DefaultPath(s.exportDir, csvexport.PortfoliosPrefix, s.now())
	rows, err := csvexport.WritePortfolios(path, portfolios)
	if err != nil {
		s.logger.Error("Error saving CSV file", "job", JobPortfolios, "path", path, "error", err)
		return report, fmt.Errorf("export portfolios: %w", err)
	}
	metrics.ExportedRows.WithLabelValues(JobPortfolios).Set(float64(rows))

	report.CSVPath, report.Rows = path, rows
	s.logger.Info("CSV file created", "job", JobPortfolios, "path", path, "rows", rows)
	return report, nil
}
