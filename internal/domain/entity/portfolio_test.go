package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWalletPortfolio_PreservesOrderAndLiterals(t *testing.T) {
	body := []byte(`{
		"ethereum": {
			"usd-coin": {"id": "usd-coin", "symbol": "USDC", "balance": 1.50, "price": 1, "usd": 1.5},
			"ethereum": {"symbol": "ETH", "balance": "0.25", "price": 3000.1, "usd": 750.025}
		},
		"arbitrum_one": {
			"arb": {"id": "arbitrum", "symbol": "ARB", "balance": 10, "price": null}
		}
	}`)

	portfolio, err := ParseWalletPortfolio("0xA", body)
	require.NoError(t, err)
	assert.Equal(t, "0xA", portfolio.Address())

	networks := portfolio.Networks()
	require.Len(t, networks, 2)
	assert.Equal(t, ChainEthereum, networks[0].Name())
	assert.Equal(t, ChainArbitrumOne, networks[1].Name())

	tokens := networks[0].Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, Token{Key: "usd-coin", ID: "usd-coin", Symbol: "USDC", Balance: "1.50", Price: "1", USD: "1.5"}, tokens[0])
	assert.Equal(t, Token{Key: "ethereum", ID: "ethereum", Symbol: "ETH", Balance: "0.25", Price: "3000.1", USD: "750.025"}, tokens[1])

	arb, ok := portfolio.Network(ChainArbitrumOne)
	require.True(t, ok)
	arbTokens := arb.Tokens()
	require.Len(t, arbTokens, 1)
	assert.Equal(t, "arbitrum", arbTokens[0].ID)
	assert.Equal(t, "10", arbTokens[0].Balance)
	assert.Equal(t, "", arbTokens[0].Price)
	assert.Equal(t, "", arbTokens[0].USD)
}

func TestParseWalletPortfolio_SkipsMalformedEntries(t *testing.T) {
	body := []byte(`{"ethereum": {"eth": "nope", "usdt": {"symbol": "USDT"}}, "base": []}`)

	portfolio, err := ParseWalletPortfolio("0xA", body)
	require.NoError(t, err)

	networks := portfolio.Networks()
	require.Len(t, networks, 1)
	tokens := networks[0].Tokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDT", tokens[0].Symbol)
}

func TestParseWalletPortfolio_RejectsNonObject(t *testing.T) {
	_, err := ParseWalletPortfolio("0xA", []byte(`["ethereum"]`))
	assert.Error(t, err)
}

func TestNewNetwork_DuplicateTokenKeepsPosition(t *testing.T) {
	network := NewNetwork(ChainBase, []Token{
		{Key: "a", ID: "coin", Symbol: "A1"},
		{Key: "b", ID: "coin", Symbol: "B"},
		{Key: "a", ID: "coin", Symbol: "A2"},
	})

	tokens := network.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, "A2", tokens[0].Symbol)
	assert.Equal(t, "B", tokens[1].Symbol)
}

func TestParseWalletPortfolio_KeysSharingCoinIDStayDistinct(t *testing.T) {
	body := []byte(`{"ethereum": {
		"usdc-eth": {"id": "usd-coin", "symbol": "USDC", "balance": "1"},
		"usdc-bridged": {"id": "usd-coin", "symbol": "USDC.e", "balance": "2"}
	}}`)

	portfolio, err := ParseWalletPortfolio("0xA", body)
	require.NoError(t, err)

	network, ok := portfolio.Network(ChainEthereum)
	require.True(t, ok)
	tokens := network.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, "usdc-eth", tokens[0].Key)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, "1", tokens[0].Balance)
	assert.Equal(t, "usdc-bridged", tokens[1].Key)
	assert.Equal(t, "USDC.e", tokens[1].Symbol)
	assert.Equal(t, "usd-coin", tokens[1].ID)
}
