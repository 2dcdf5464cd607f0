package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPrimaryChain(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  int
	}{
		{name: "empty", names: nil, want: -1},
		{name: "ethereum beats earlier chains", names: []string{"bsc", "base", "ethereum"}, want: 2},
		{name: "arbitrum before polygon", names: []string{"polygon", "arbitrum_one"}, want: 1},
		{name: "bsc is last resort among known", names: []string{"tron", "bsc"}, want: 1},
		{name: "unknown chains fall back to first", names: []string{"tron", "solana"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectPrimaryChain(tt.names))
		})
	}
}

func TestResult(t *testing.T) {
	ok := Success(42)
	assert.True(t, ok.OK())
	assert.Equal(t, 42, ok.Value())
	assert.NoError(t, ok.Err())

	cause := &FetchError{Kind: FetchErrorRateLimited, Address: "0xB", StatusCode: 429}
	failed := Failure[int](cause)
	assert.False(t, failed.OK())
	assert.Equal(t, 0, failed.Value())
	assert.True(t, IsRateLimited(failed.Err()))

	_, err := Failure[string](nil).Unwrap()
	assert.Error(t, err)
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&FetchError{Kind: FetchErrorTransport, Address: "0xA", Err: cause})

	require.ErrorIs(t, err, cause)
	kind, ok := FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, FetchErrorTransport, kind)
	assert.Contains(t, err.Error(), "0xA")
	assert.False(t, IsRateLimited(err))
}
