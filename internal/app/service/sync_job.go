package service

import (
	"context"
	"fmt"
	"time"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
)

// Sync job steps, in execution order.
const (
	StepCreateTable = "create_table"
	StepAddresses   = "fetch_addresses"
	StepExport      = "export"
	StepClearTable  = "clear_table"
	StepInsert      = "insert"
)

// StepError reports the step at which a sync job stopped.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// ExportFunc enriches addresses and writes a CSV, see LabelService.ExportLabels and
// PortfolioService.ExportPortfolios.
type ExportFunc func(ctx context.Context, addresses []string) (ExportReport, error)

// SyncJob refreshes one table: create it if needed, read source addresses, enrich and export
// them, then replace the table contents with the new CSV. It stops at the first failing step.
type SyncJob struct {
	name      string
	table     entity.CreateTableRequest
	addresses port.AddressProvider
	tables    port.TableStore
	export    ExportFunc
	recorder  port.RunRecorder
	logger    port.Logger
	now       func() time.Time
}

// NewSyncJob creates a new SyncJob. recorder may be nil.
func NewSyncJob(
	name string,
	table entity.CreateTableRequest,
	addresses port.AddressProvider,
	tables port.TableStore,
	export ExportFunc,
	recorder port.RunRecorder,
	logger port.Logger,
) *SyncJob {
	return &SyncJob{
		name:      name,
		table:     table,
		addresses: addresses,
		tables:    tables,
		export:    export,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the job once.
func (j *SyncJob) Run(ctx context.Context) (entity.RunSummary, error) {
	start := j.now()
	summary := entity.RunSummary{Job: j.name}
	fullName := j.table.Namespace + "." + j.table.TableName

	fail := func(step string, err error) (entity.RunSummary, error) {
		j.logger.Error("Sync job step failed", "job", j.name, "step", step, "table", fullName, "error", err)
		summary.FailedStep = step
		summary.Error = err.Error()
		j.finish(&summary, start)
		return summary, &StepError{Step: step, Err: err}
	}

	created, err := j.tables.CreateTable(ctx, j.table)
	if err != nil {
		return fail(StepCreateTable, err)
	}
	j.logger.Info("Step 0: table ready", "job", j.name, "table", created.FullName, "already_existed", created.AlreadyExisted)

	addresses, err := j.addresses.Addresses(ctx)
	if err != nil {
		return fail(StepAddresses, err)
	}
	if len(addresses) == 0 {
		return fail(StepAddresses, ErrNoAddresses)
	}
	j.logger.Info("Step 1: address retrieval completed", "job", j.name, "addresses", len(addresses))

	report, err := j.export(ctx, addresses)
	summary.Total, summary.Succeeded, summary.Failed = report.Total, report.Succeeded, report.Failed
	if err != nil {
		return fail(StepExport, err)
	}
	summary.Rows, summary.CSVPath = report.Rows, report.CSVPath
	j.logger.Info("Step 2: enrichment completed", "job", j.name, "file", report.CSVPath, "rows", report.Rows)

	if err := j.tables.ClearTable(ctx, j.table.Namespace, j.table.TableName); err != nil {
		return fail(StepClearTable, err)
	}
	j.logger.Info("Step 3: table cleared", "job", j.name, "table", fullName)

	inserted, err := j.tables.InsertCSV(ctx, j.table.Namespace, j.table.TableName, report.CSVPath)
	if err != nil {
		return fail(StepInsert, err)
	}
	j.logger.Info("Step 4: data update successful", "job", j.name, "table", fullName,
		"rows_written", inserted.RowsWritten, "bytes_written", inserted.BytesWritten)

	j.finish(&summary, start)
	return summary, nil
}

func (j *SyncJob) finish(summary *entity.RunSummary, start time.Time) {
	summary.FinishedAt = j.now()
	summary.Elapsed = summary.FinishedAt.Sub(start)
	if j.recorder != nil {
		j.recorder.Record(*summary)
	}
}
