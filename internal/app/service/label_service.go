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

const JobLabels = "labels"

// LabelService enriches addresses with Arkham intelligence and exports them as the labels CSV.
type LabelService struct {
	enricher  *Enricher[entity.WalletLabel]
	exportDir string
	logger    port.Logger
	now       func() time.Time
}

// NewLabelService creates a new LabelService. Failed lookups are kept as placeholder rows.
func NewLabelService(vendor port.VendorClient, workers int, exportDir string, logger port.Logger) *LabelService {
	return &LabelService{
		enricher: NewEnricher[entity.WalletLabel](
			EnricherConfig{Job: JobLabels, Workers: workers},
			vendor,
			fetchLabel,
			labelPlaceholder,
			logger,
		),
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}
}

func fetchLabel(ctx context.Context, session port.VendorSession, address string) entity.Result[entity.WalletLabel] {
	return session.FetchLabel(ctx, address)
}

func labelPlaceholder(address string, _ error) (entity.WalletLabel, bool) {
	return entity.PlaceholderLabel(address), true
}

// ExportLabels enriches all addresses in one pool and writes the labels CSV.
func (s *LabelService) ExportLabels(ctx context.Context, addresses []string) (ExportReport, error) {
	report := ExportReport{Job: JobLabels, Total: len(addresses)}
	if len(addresses) == 0 {
		s.logger.Warn("No addresses provided", "job", JobLabels)
		return report, ErrNoAddresses
	}

	s.logger.Info("Starting batch processing", "job", JobLabels, "addresses", len(addresses))
	labels, stats := s.enricher.Run(ctx, addresses)
	report.Succeeded, report.Failed, report.Elapsed = stats.Succeeded, stats.Failed, stats.Elapsed

	if stats.Succeeded == 0 {
		s.logger.Error("No data successfully retrieved, canceling CSV export", "job", JobLabels, "failed", stats.Failed)
		return report, ErrNoResults
	}

	path := csvexport.DefaultPath(s.exportDir, csvexport.LabelsPrefix, s.now())
	rows, err := csvexport.WriteLabels(path, labels)
	if err != nil {
		s.logger.Error("Error saving CSV file", "job", JobLabels, "path", path, "error", err)
		return report, fmt.Errorf("export labels: %w", err)
	}
	metrics.ExportedRows.WithLabelValues(JobLabels).Set(float64(rows))

	report.CSVPath, report.Rows = path, rows
	s.logger.Info("CSV file created", "job", JobLabels, "path", path, "rows", rows)
	return report, nil
}
