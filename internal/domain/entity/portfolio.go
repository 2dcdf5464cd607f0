package entity

import jsoniter "github.com/json-iterator/go"

// Token is one holding on a network. Amounts are kept exactly as the vendor formatted them.
// Key is the token's key in the vendor response; ID is the vendor's coin id, which several
// keys may share.
type Token struct {
	Key     string `json:"key"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
	Price   string `json:"price"`
	USD     string `json:"usd"`
}

// Network holds the tokens of a wallet on one chain, in vendor order.
type Network struct {
	name   string
	tokens []Token
}

// NewNetwork builds a Network. A repeated token key keeps its first position and the last value.
// Tokens without a key are identified by ID.
func NewNetwork(name string, tokens []Token) Network {
	ordered := make([]Token, 0, len(tokens))
	positions := make(map[string]int, len(tokens))
	for _, token := range tokens {
		key := token.Key
		if key == "" {
			key = token.ID
		}
		if pos, seen := positions[key]; seen {
			ordered[pos] = token
			continue
		}
		positions[key] = len(ordered)
		ordered = append(ordered, token)
	}
	return Network{name: name, tokens: ordered}
}

// Name returns the chain identifier.
func (n Network) Name() string { return n.name }

// Tokens returns the network's tokens in vendor order.
func (n Network) Tokens() []Token {
	out := make([]Token, len(n.tokens))
	copy(out, n.tokens)
	return out
}

// WalletPortfolio represents the balances of one address across chains.
type WalletPortfolio struct {
	address  string
	networks []Network
}

// NewWalletPortfolio builds a WalletPortfolio from networks in vendor order.
func NewWalletPortfolio(address string, networks []Network) WalletPortfolio {
	ordered := make([]Network, 0, len(networks))
	positions := make(map[string]int, len(networks))
	for _, network := range networks {
		if pos, seen := positions[network.name]; seen {
			ordered[pos] = network
			continue
		}
		positions[network.name] = len(ordered)
		ordered = append(ordered, network)
	}
	return WalletPortfolio{address: address, networks: ordered}
}

// ParseWalletPortfolio decodes a /portfolio/address/{address} response body.
func ParseWalletPortfolio(address string, body []byte) (WalletPortfolio, error) {
	var networks []Network
	err := readObject(body, func(iter *jsoniter.Iterator, chain string) {
		var tokens []Token
		readNestedObject(iter, func(it *jsoniter.Iterator, key string) {
			var raw map[string]any
			it.ReadVal(&raw)
			tokens = append(tokens, tokenFromMap(key, raw))
		})
		networks = append(networks, NewNetwork(chain, tokens))
	})
	if err != nil {
		return WalletPortfolio{}, err
	}
	return NewWalletPortfolio(address, networks), nil
}

func tokenFromMap(key string, raw map[string]any) Token {
	id := stringField(raw, "id")
	if id == "" {
		id = key
	}
	return Token{
		Key:     key,
		ID:      id,
		Name:    stringField(raw, "name"),
		Symbol:  stringField(raw, "symbol"),
		Balance: stringField(raw, "balance"),
		Price:   stringField(raw, "price"),
		USD:     stringField(raw, "usd"),
	}
}

// Address returns the queried address.
func (p WalletPortfolio) Address() string { return p.address }

// Networks returns the wallet's networks in vendor order.
func (p WalletPortfolio) Networks() []Network {
	out := make([]Network, len(p.networks))
	copy(out, p.networks)
	return out
}

// Network looks up a network by chain identifier.
func (p WalletPortfolio) Network(chain string) (Network, bool) {
	for _, network := range p.networks {
		if network.name == chain {
			return network, true
		}
	}
	return Network{}, false
}
