package provider

import (
	"context"
	"fmt"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/infrastructure/addressloader"
)

// QueryAddressProvider extracts one column from the latest results of a saved Dune query.
type QueryAddressProvider struct {
	reader  port.QueryResultReader
	queryID int64
	column  string
	logger  port.Logger
}

// NewQueryAddressProvider creates a new QueryAddressProvider.
func NewQueryAddressProvider(reader port.QueryResultReader, queryID int64, column string, logger port.Logger) *QueryAddressProvider {
	return &QueryAddressProvider{reader: reader, queryID: queryID, column: column, logger: logger}
}

// Addresses returns the column values in row order. Rows without the column, or with an empty value, are skipped.
func (p *QueryAddressProvider) Addresses(ctx context.Context) ([]string, error) {
	p.logger.Debug("Fetching address data from Dune", "query_id", p.queryID, "column", p.column)
	rows, err := p.reader.QueryLatestRows(ctx, p.queryID)
	if err != nil {
		p.logger.Error("Error fetching data from Dune", "query_id", p.queryID, "error", err)
		return nil, fmt.Errorf("query %d: %w", p.queryID, err)
	}

	addresses := make([]string, 0, len(rows))
	for _, row := range rows {
		v, ok := row[p.column]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		addresses = append(addresses, s)
	}

	p.logger.Info("Data extraction summary", "query_id", p.queryID, "total_rows", len(rows), "values_extracted", len(addresses))
	return addresses, nil
}

// FileAddressProvider reads addresses from a local file.
type FileAddressProvider struct {
	loader *addressloader.FileLoader
	path   string
	logger port.Logger
}

// NewFileAddressProvider creates a new FileAddressProvider.
func NewFileAddressProvider(path string, logger port.Logger) *FileAddressProvider {
	return &FileAddressProvider{
		loader: addressloader.NewFileLoader(path, logger.Info),
		path:   path,
		logger: logger,
	}
}

// Addresses loads addresses from the configured file.
func (p *FileAddressProvider) Addresses(context.Context) ([]string, error) {
	p.logger.Debug("Loading addresses from file", "path", p.path)
	addresses, err := p.loader.Load()
	if err != nil {
		p.logger.Error("Failed to load addresses", "path", p.path, "error", err)
		return nil, err
	}
	return addresses, nil
}

// NewAddressProvider picks the file source when file is set, otherwise the Dune query source.
func NewAddressProvider(reader port.QueryResultReader, queryID int64, column, file string, logger port.Logger) (port.AddressProvider, error) {
	if file != "" {
		return NewFileAddressProvider(file, logger), nil
	}
	if queryID <= 0 {
		return nil, fmt.Errorf("address source needs either a file or a query id")
	}
	return NewQueryAddressProvider(reader, queryID, column, logger), nil
}
