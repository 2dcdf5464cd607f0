package entity

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a vendor lookup failed.
type FetchErrorKind string

const (
	FetchErrorTransport   FetchErrorKind = "transport"
	FetchErrorTimeout     FetchErrorKind = "timeout"
	FetchErrorStatus      FetchErrorKind = "status"
	FetchErrorRateLimited FetchErrorKind = "rate_limited"
	FetchErrorDecode      FetchErrorKind = "decode"
	FetchErrorPanic       FetchErrorKind = "panic"
)

// FetchError represents an error that occurred while fetching data for one address.
type FetchError struct {
	Kind       FetchErrorKind
	Address    string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: address %s: status %d: %v", e.Kind, e.Address, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: address %s: status %d", e.Kind, e.Address, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: address %s: %v", e.Kind, e.Address, e.Err)
	default:
		return fmt.Sprintf("%s: address %s", e.Kind, e.Address)
	}
}

// Unwrap returns the underlying transport or decode error.
func (e *FetchError) Unwrap() error { return e.Err }

// FetchErrorKindOf returns the kind of the first FetchError in err's chain.
func FetchErrorKindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsRateLimited reports whether err is a vendor 429.
func IsRateLimited(err error) bool {
	kind, ok := FetchErrorKindOf(err)
	return ok && kind == FetchErrorRateLimited
}
