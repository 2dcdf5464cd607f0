package port

import (
	"context"

	"wallet_enricher/internal/domain/entity"
)

// TableStore defines the hosted analytics table operations used by the sync jobs.
type TableStore interface {
	CreateTable(ctx context.Context, req entity.CreateTableRequest) (entity.CreateTableResult, error)
	ClearTable(ctx context.Context, namespace, table string) error
	InsertCSV(ctx context.Context, namespace, table, csvPath string) (entity.InsertResult, error)
	DeleteTable(ctx context.Context, namespace, table string) error
}

// QueryResultReader reads the latest stored results of a saved query.
type QueryResultReader interface {
	QueryLatestRows(ctx context.Context, queryID int64) ([]map[string]any, error)
}
