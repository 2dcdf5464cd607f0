package csvexport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"wallet_enricher/internal/domain/entity"
)

const (
	LabelsPrefix     = "arkham_labels"
	PortfoliosPrefix = "arkham_portfolios"

	timestampLayout = "20060102_150405"
)

var ( //nolint:gochecknoglobals // Global for definitions
	LabelHeader = []string{
		"no", "address", "name", "type", "label", "isuseraddress",
		"website", "twitter", "crunchbase", "linkedin",
	}
	PortfolioHeader = []string{"chain", "address", "symbol", "balance", "price", "usd"}
)

// formatBool writes booleans capitalised, as earlier exports of these tables did.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// DefaultPath returns dir/<prefix>_<local timestamp>.csv.
func DefaultPath(dir, prefix string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, now.Local().Format(timestampLayout)))
}

// WriteLabels writes one row per label. The no column is the 1-based position in labels.
// Returns the number of data rows written.
func WriteLabels(path string, labels []entity.WalletLabel) (int, error) {
	return writeFile(path, LabelHeader, func(w *csv.Writer) (int, error) {
		for i, label := range labels {
			record := []string{
				strconv.Itoa(i + 1),
				label.Address(),
				label.Name(),
				label.EntityType(),
				label.Label(),
				formatBool(label.IsUserAddress()),
				label.Website(),
				label.Twitter(),
				label.Crunchbase(),
				label.LinkedIn(),
			}
			if err := w.Write(record); err != nil {
				return i, err
			}
		}
		return len(labels), nil
	})
}

// WritePortfolios writes one row per wallet, exported chain and token. Chains follow
// entity.PortfolioExportChains order; tokens keep vendor order. Returns the number of data rows written.
func WritePortfolios(path string, portfolios []entity.WalletPortfolio) (int, error) {
	return writeFile(path, PortfolioHeader, func(w *csv.Writer) (int, error) {
		rows := 0
		for _, portfolio := range portfolios {
			for _, chain := range entity.PortfolioExportChains {
				network, ok := portfolio.Network(chain.Identifier)
				if !ok {
					continue
				}
				for _, token := range network.Tokens() {
					record := []string{
						chain.DisplayName,
						portfolio.Address(),
						token.Symbol,
						token.Balance,
						token.Price,
						token.USD,
					}
					if err := w.Write(record); err != nil {
						return rows, err
					}
					rows++
				}
			}
		}
		return rows, nil
	})
}

// writeFile writes header and rows to a temporary file next to path and renames it into place,
// so a failed export never leaves a partial file at path.
func writeFile(path string, header []string, writeRows func(w *csv.Writer) (int, error)) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create csv file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return 0, fmt.Errorf("failed to set permissions on csv file %s: %w", path, err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		cleanup()
		return 0, fmt.Errorf("failed to write csv header to %s: %w", path, err)
	}
	rows, err := writeRows(w)
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("failed to write csv rows to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		cleanup()
		return 0, fmt.Errorf("failed to flush csv file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close csv file %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to move csv file into %s: %w", path, err)
	}
	return rows, nil
}
