package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
)

func addressRange(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("0x%04d", i)
	}
	return out
}

func TestEnricher_RunBatchedSplitsAndPausesBetweenBatches(t *testing.T) {
	vendor := &fakeVendor{}
	var perBatch [2]atomic.Int64
	var batch atomic.Int64

	task := func(ctx context.Context, s port.VendorSession, address string) entity.Result[entity.WalletPortfolio] {
		perBatch[batch.Load()].Add(1)
		return s.FetchPortfolio(ctx, address, 0)
	}
	e := NewEnricher[entity.WalletPortfolio](
		EnricherConfig{Job: "test", Workers: 10, BatchSize: 1000, BatchPause: 2 * time.Second},
		vendor, task, nil, nopLogger{},
	)
	rec := &sleepRecorder{}
	e.sleep = func(d time.Duration) {
		rec.sleep(d)
		batch.Add(1)
	}

	out, stats := e.RunBatched(context.Background(), addressRange(1500))

	assert.Len(t, out, 1500)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 1500, stats.Succeeded)
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.sleeps)
	assert.Equal(t, int64(1000), perBatch[0].Load())
	assert.Equal(t, int64(500), perBatch[1].Load())
	assert.Equal(t, vendor.opened.Load(), vendor.closed.Load())
	assert.LessOrEqual(t, vendor.opened.Load(), int64(20), "at most one session per worker per batch")
}

func TestEnricher_SingleBatchHasNoPause(t *testing.T) {
	vendor := &fakeVendor{}
	e := NewEnricher[entity.WalletPortfolio](
		EnricherConfig{Job: "test", Workers: 3, BatchSize: 1000, BatchPause: 2 * time.Second},
		vendor,
		func(ctx context.Context, s port.VendorSession, a string) entity.Result[entity.WalletPortfolio] {
			return s.FetchPortfolio(ctx, a, 0)
		},
		nil, nopLogger{},
	)
	rec := &sleepRecorder{}
	e.sleep = rec.sleep

	out, stats := e.RunBatched(context.Background(), addressRange(1000))
	assert.Len(t, out, 1000)
	assert.Equal(t, 1, stats.Batches)
	assert.Empty(t, rec.sleeps)
}

func TestEnricher_FailurePolicies(t *testing.T) {
	vendor := &fakeVendor{rateLimited: map[string]bool{"0xB": true}}
	addresses := []string{"0xA", "0xB", "0xC"}

	dropping := NewEnricher[entity.WalletLabel](EnricherConfig{Job: "drop", Workers: 2}, vendor, fetchLabel, DropFailures[entity.WalletLabel], nopLogger{})
	out, stats := dropping.Run(context.Background(), addresses)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, stats.Failed)

	keeping := NewEnricher[entity.WalletLabel](EnricherConfig{Job: "keep", Workers: 2}, vendor, fetchLabel, labelPlaceholder, nopLogger{})
	out, stats = keeping.Run(context.Background(), addresses)
	require.Len(t, out, 3)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)

	got := map[string]bool{}
	for _, label := range out {
		got[label.Address()] = true
	}
	assert.Equal(t, map[string]bool{"0xA": true, "0xB": true, "0xC": true}, got)
}

func TestEnricher_PanicIsTreatedAsFailure(t *testing.T) {
	vendor := &fakeVendor{panics: map[string]bool{"0xB": true}}
	var failures []error
	policy := func(address string, err error) (entity.WalletLabel, bool) {
		failures = append(failures, err)
		return entity.PlaceholderLabel(address), true
	}
	e := NewEnricher[entity.WalletLabel](EnricherConfig{Job: "panic", Workers: 1}, vendor, fetchLabel, policy, nopLogger{})

	out, stats := e.Run(context.Background(), []string{"0xA", "0xB", "0xC"})

	assert.Len(t, out, 3)
	assert.Equal(t, 2, stats.Succeeded)
	require.Len(t, failures, 1)
	kind, ok := entity.FetchErrorKindOf(failures[0])
	require.True(t, ok)
	assert.Equal(t, entity.FetchErrorPanic, kind)
	assert.Equal(t, int64(1), vendor.opened.Load())
	assert.Equal(t, int64(1), vendor.closed.Load())
}

func TestEnricher_EmptyInputOpensNoSessions(t *testing.T) {
	vendor := &fakeVendor{}
	e := NewEnricher[entity.WalletLabel](EnricherConfig{Job: "empty", Workers: 5}, vendor, fetchLabel, labelPlaceholder, nopLogger{})

	out, stats := e.Run(context.Background(), nil)
	assert.Empty(t, out)
	assert.Zero(t, stats.Total)
	assert.Zero(t, vendor.opened.Load())
}

func TestEnricher_WorkersNeverExceedAddresses(t *testing.T) {
	vendor := &fakeVendor{}
	e := NewEnricher[entity.WalletLabel](EnricherConfig{Job: "few", Workers: 5}, vendor, fetchLabel, labelPlaceholder, nopLogger{})

	_, _ = e.Run(context.Background(), []string{"0xA", "0xB"})
	assert.LessOrEqual(t, vendor.opened.Load(), int64(2))
	assert.Equal(t, int64(2), vendor.calls.Load())
}
