package entity

// Result is the outcome of one enrichment call: either a value or the error that prevented it.
type Result[T any] struct {
	value T
	err   error
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps err. A nil err is still a failure.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = &FetchError{Kind: FetchErrorTransport}
	}
	return Result[T]{err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.err == nil }

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Unwrap returns the value and error as a pair.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }
