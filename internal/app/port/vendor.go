package port

import (
	"context"

	"wallet_enricher/internal/domain/entity"
)

// VendorSession is one worker's connection to the enrichment vendor.
// A session is never shared between goroutines.
type VendorSession interface {
	// FetchLabel returns the per-chain intelligence for an address.
	FetchLabel(ctx context.Context, address string) entity.Result[entity.WalletLabel]

	// FetchPortfolio returns balances for an address. asOfMillis of 0 means now.
	FetchPortfolio(ctx context.Context, address string, asOfMillis int64) entity.Result[entity.WalletPortfolio]

	// Close releases the session's connections.
	Close()
}

// VendorClient hands out sessions, one per worker.
type VendorClient interface {
	NewSession() VendorSession
}
