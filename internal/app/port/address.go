package port

import "context"

// AddressProvider defines the interface for fetching the wallet addresses to enrich.
type AddressProvider interface {
	Addresses(ctx context.Context) ([]string, error)
}
