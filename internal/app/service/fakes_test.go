package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeVendor answers from canned bodies; addresses listed in rateLimited fail with a 429.
type fakeVendor struct {
	labels      map[string]string
	portfolios  map[string]string
	rateLimited map[string]bool
	panics      map[string]bool

	opened atomic.Int64
	closed atomic.Int64
	calls  atomic.Int64
}

func (v *fakeVendor) NewSession() port.VendorSession {
	v.opened.Add(1)
	return &fakeSession{vendor: v}
}

type fakeSession struct {
	vendor *fakeVendor
	closed bool
}

func (s *fakeSession) fail(address string) error {
	if s.vendor.panics[address] {
		panic("boom " + address)
	}
	if s.vendor.rateLimited[address] {
		return &entity.FetchError{Kind: entity.FetchErrorRateLimited, Address: address, StatusCode: 429}
	}
	return nil
}

func (s *fakeSession) FetchLabel(_ context.Context, address string) entity.Result[entity.WalletLabel] {
	s.vendor.calls.Add(1)
	if err := s.fail(address); err != nil {
		return entity.Failure[entity.WalletLabel](err)
	}
	body, ok := s.vendor.labels[address]
	if !ok {
		body = `{}`
	}
	label, err := entity.ParseWalletLabel(address, []byte(body))
	if err != nil {
		return entity.Failure[entity.WalletLabel](err)
	}
	return entity.Success(label)
}

func (s *fakeSession) FetchPortfolio(_ context.Context, address string, _ int64) entity.Result[entity.WalletPortfolio] {
	s.vendor.calls.Add(1)
	if err := s.fail(address); err != nil {
		return entity.Failure[entity.WalletPortfolio](err)
	}
	body, ok := s.vendor.portfolios[address]
	if !ok {
		body = `{"ethereum": {"eth": {"symbol": "ETH", "balance": "1", "price": "2", "usd": "2"}}}`
	}
	portfolio, err := entity.ParseWalletPortfolio(address, []byte(body))
	if err != nil {
		return entity.Failure[entity.WalletPortfolio](err)
	}
	return entity.Success(portfolio)
}

func (s *fakeSession) Close() {
	if !s.closed {
		s.closed = true
		s.vendor.closed.Add(1)
	}
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
}

type fakeAddresses struct {
	addresses []string
	err       error
}

func (f fakeAddresses) Addresses(context.Context) ([]string, error) {
	return f.addresses, f.err
}

type fakeTables struct {
	calls     []string
	createErr error
	clearErr  error
	insertErr error
	inserted  string
}

func (f *fakeTables) CreateTable(_ context.Context, req entity.CreateTableRequest) (entity.CreateTableResult, error) {
	f.calls = append(f.calls, StepCreateTable)
	if f.createErr != nil {
		return entity.CreateTableResult{}, f.createErr
	}
	return entity.CreateTableResult{FullName: "dune." + req.Namespace + "." + req.TableName}, nil
}

func (f *fakeTables) ClearTable(context.Context, string, string) error {
	f.calls = append(f.calls, StepClearTable)
	return f.clearErr
}

func (f *fakeTables) InsertCSV(_ context.Context, _, _, csvPath string) (entity.InsertResult, error) {
	f.calls = append(f.calls, StepInsert)
	if f.insertErr != nil {
		return entity.InsertResult{}, f.insertErr
	}
	f.inserted = csvPath
	return entity.InsertResult{RowsWritten: 1, BytesWritten: 10}, nil
}

func (f *fakeTables) DeleteTable(context.Context, string, string) error {
	return nil
}

type fakeRecorder struct {
	summaries []entity.RunSummary
}

func (r *fakeRecorder) Record(summary entity.RunSummary) {
	r.summaries = append(r.summaries, summary)
}
