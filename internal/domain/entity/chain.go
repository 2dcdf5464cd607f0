package entity

// Chain identifiers as returned by the Arkham API.
const (
	ChainEthereum    = "ethereum"
	ChainArbitrumOne = "arbitrum_one"
	ChainPolygon     = "polygon"
	ChainOptimism    = "optimism"
	ChainBase        = "base"
	ChainBSC         = "bsc"
)

// ExportChain maps a vendor chain identifier to the name written into the portfolio table.
type ExportChain struct {
	Identifier  string
	DisplayName string
}

var ( //nolint:gochecknoglobals // Global for definitions
	// PrimaryChainPriority is the order in which a wallet's primary chain is picked.
	PrimaryChainPriority = []string{
		ChainEthereum,
		ChainArbitrumOne,
		ChainPolygon,
		ChainOptimism,
		ChainBase,
		ChainBSC,
	}

	// PortfolioExportChains is the allow-list of chains exported to the portfolio table, in row order.
	PortfolioExportChains = []ExportChain{
		{Identifier: ChainArbitrumOne, DisplayName: "arbitrum"},
		{Identifier: ChainEthereum, DisplayName: ChainEthereum},
		{Identifier: ChainBase, DisplayName: ChainBase},
		{Identifier: ChainOptimism, DisplayName: ChainOptimism},
	}
)

// SelectPrimaryChain returns the index of the primary chain in names, which must be in
// vendor response order. The highest priority chain present wins; otherwise the first
// chain is used. Returns -1 when names is empty.
func SelectPrimaryChain(names []string) int {
	if len(names) == 0 {
		return -1
	}
	for _, wanted := range PrimaryChainPriority {
		for i, name := range names {
			if name == wanted {
				return i
			}
		}
	}
	return 0
}
