package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
	"wallet_enricher/internal/pkg/metrics"
	"wallet_enricher/internal/pkg/utils"
)

// Task performs the single vendor call for one address on the worker's session.
type Task[T any] func(ctx context.Context, session port.VendorSession, address string) entity.Result[T]

// FailurePolicy decides what a failed address contributes to the output.
// Returning false drops the address.
type FailurePolicy[T any] func(address string, err error) (T, bool)

// DropFailures is the FailurePolicy that omits failed addresses.
func DropFailures[T any](string, error) (T, bool) {
	var zero T
	return zero, false
}

// EnricherConfig configures an Enricher.
type EnricherConfig struct {
	Job        string
	Workers    int
	BatchSize  int
	BatchPause time.Duration
}

// EnrichStats summarizes one Run or RunBatched call.
type EnrichStats struct {
	Total     int
	Succeeded int
	Failed    int
	Batches   int
	Elapsed   time.Duration
}

// Enricher fans addresses out to a bounded pool of workers, each owning one vendor session.
// Output order is completion order.
type Enricher[T any] struct {
	cfg       EnricherConfig
	vendor    port.VendorClient
	task      Task[T]
	onFailure FailurePolicy[T]
	logger    port.Logger
	sleep     func(time.Duration)
}

// NewEnricher creates a new Enricher.
func NewEnricher[T any](
	cfg EnricherConfig,
	vendor port.VendorClient,
	task Task[T],
	onFailure FailurePolicy[T],
	logger port.Logger,
) *Enricher[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if onFailure == nil {
		onFailure = DropFailures[T]
	}
	return &Enricher[T]{
		cfg:       cfg,
		vendor:    vendor,
		task:      task,
		onFailure: onFailure,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Run processes all addresses in a single pool.
func (e *Enricher[T]) Run(ctx context.Context, addresses []string) ([]T, EnrichStats) {
	start := time.Now()
	out, stats := e.runPool(ctx, addresses, 0, len(addresses))
	stats.Batches = 1
	stats.Elapsed = time.Since(start)
	e.logSummary(stats)
	return out, stats
}

// RunBatched processes addresses in consecutive batches of BatchSize. The next batch starts only
// after the previous one has drained, with BatchPause slept between batches but not after the last.
func (e *Enricher[T]) RunBatched(ctx context.Context, addresses []string) ([]T, EnrichStats) {
	start := time.Now()
	batches := utils.BatchStrings(addresses, e.cfg.BatchSize)

	out := make([]T, 0, len(addresses))
	stats := EnrichStats{Total: len(addresses), Batches: len(batches)}

	for i, batch := range batches {
		e.logger.Info("Processing batch",
			"job", e.cfg.Job,
			"batch", fmt.Sprintf("%d/%d", i+1, len(batches)),
			"size", len(batch))

		// Progress indices continue across batches.
		batchOut, batchStats := e.runPool(ctx, batch, i*e.cfg.BatchSize, len(addresses))
		out = append(out, batchOut...)
		stats.Succeeded += batchStats.Succeeded
		stats.Failed += batchStats.Failed

		if i < len(batches)-1 && e.cfg.BatchPause > 0 {
			e.logger.Info("Waiting before next batch", "job", e.cfg.Job, "pause", e.cfg.BatchPause.String())
			e.sleep(e.cfg.BatchPause)
		}
	}

	stats.Elapsed = time.Since(start)
	e.logSummary(stats)
	return out, stats
}

type enrichJob struct {
	index   int
	address string
}

// runPool returns only after every address has been processed and collected.
func (e *Enricher[T]) runPool(ctx context.Context, addresses []string, offset, total int) ([]T, EnrichStats) {
	stats := EnrichStats{Total: len(addresses)}
	if len(addresses) == 0 {
		return []T{}, stats
	}
	start := time.Now()
	defer func() {
		metrics.BatchDuration.WithLabelValues(e.cfg.Job).Observe(time.Since(start).Seconds())
	}()

	jobs := make(chan enrichJob)
	results := make(chan T, len(addresses))
	var succeeded, failed atomic.Int64

	workers := e.cfg.Workers
	if workers > len(addresses) {
		workers = len(addresses)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var session port.VendorSession
			defer func() {
				if session != nil {
					session.Close()
				}
			}()

			for job := range jobs {
				if session == nil {
					session = e.vendor.NewSession()
				}
				value, err := e.process(ctx, session, job, total)
				if err == nil {
					succeeded.Add(1)
					results <- value
					continue
				}
				failed.Add(1)
				if substitute, keep := e.onFailure(job.address, err); keep {
					results <- substitute
				}
			}
			return nil
		})
	}

	for i, address := range addresses {
		jobs <- enrichJob{index: offset + i + 1, address: address}
	}
	close(jobs)
	_ = g.Wait()
	close(results)

	out := make([]T, 0, len(addresses))
	for value := range results {
		out = append(out, value)
	}

	stats.Succeeded = int(succeeded.Load())
	stats.Failed = int(failed.Load())
	return out, stats
}

// process runs the task for one address, converting a panic into a failure.
func (e *Enricher[T]) process(ctx context.Context, session port.VendorSession, job enrichJob, total int) (value T, err error) {
	progress := fmt.Sprintf("%d/%d", job.index, total)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Task panicked", "job", e.cfg.Job, "progress", progress, "address", job.address, "panic", fmt.Sprint(r))
			metrics.AddressOutcomes.WithLabelValues(e.cfg.Job, "failed").Inc()
			var zero T
			value = zero
			err = &entity.FetchError{Kind: entity.FetchErrorPanic, Address: job.address, Err: fmt.Errorf("%v", r)}
		}
	}()

	value, err = e.task(ctx, session, job.address).Unwrap()
	if err != nil {
		e.logger.Warn("Failed", "job", e.cfg.Job, "progress", progress, "address", job.address, "error", err)
		metrics.AddressOutcomes.WithLabelValues(e.cfg.Job, "failed").Inc()
		return value, err
	}

	e.logger.Info("Success", "job", e.cfg.Job, "progress", progress, "address", job.address)
	metrics.AddressOutcomes.WithLabelValues(e.cfg.Job, "succeeded").Inc()
	return value, nil
}

func (e *Enricher[T]) logSummary(stats EnrichStats) {
	e.logger.Info("Processing complete",
		"job", e.cfg.Job,
		"succeeded", stats.Succeeded,
		"total", stats.Total,
		"failed", stats.Failed,
		"batches", stats.Batches,
		"elapsed", stats.Elapsed.Round(time.Millisecond).String())
}
