package entity

import jsoniter "github.com/json-iterator/go"

// Entity is the organisation Arkham attributes a wallet to.
type Entity struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Website    string `json:"website"`
	Twitter    string `json:"twitter"`
	Crunchbase string `json:"crunchbase"`
	LinkedIn   string `json:"linkedin"`
}

// Label is a single classification name for a wallet.
type Label struct {
	Name string `json:"name"`
}

// ChainRecord is the intelligence Arkham holds for an address on one chain.
type ChainRecord struct {
	Chain         string
	Address       string
	IsUserAddress bool
	Entity        *Entity
	Label         *Label
}

// WalletLabel aggregates the per-chain intelligence of one address.
// Accessors read from the primary chain, see SelectPrimaryChain.
type WalletLabel struct {
	address string
	chains  []ChainRecord
	primary int
}

// NewWalletLabel builds a WalletLabel from chain records in vendor response order.
func NewWalletLabel(address string, chains []ChainRecord) WalletLabel {
	records := make([]ChainRecord, 0, len(chains))
	positions := make(map[string]int, len(chains))
	for _, record := range chains {
		// A repeated chain key keeps its first position and the last value.
		if pos, seen := positions[record.Chain]; seen {
			records[pos] = record
			continue
		}
		positions[record.Chain] = len(records)
		records = append(records, record)
	}

	names := make([]string, len(records))
	for i, record := range records {
		names[i] = record.Chain
	}
	return WalletLabel{
		address: address,
		chains:  records,
		primary: SelectPrimaryChain(names),
	}
}

// PlaceholderLabel is the record written for an address whose lookup failed.
func PlaceholderLabel(address string) WalletLabel {
	return NewWalletLabel(address, nil)
}

// ParseWalletLabel decodes a /intelligence/address/{address}/all response body.
func ParseWalletLabel(address string, body []byte) (WalletLabel, error) {
	var chains []ChainRecord
	err := readObject(body, func(iter *jsoniter.Iterator, chain string) {
		var raw map[string]any
		iter.ReadVal(&raw)
		chains = append(chains, chainRecordFromMap(chain, raw))
	})
	if err != nil {
		return WalletLabel{}, err
	}
	return NewWalletLabel(address, chains), nil
}

func chainRecordFromMap(chain string, raw map[string]any) ChainRecord {
	record := ChainRecord{
		Chain:         chain,
		Address:       stringField(raw, "address"),
		IsUserAddress: boolField(raw, "isUserAddress"),
	}
	if obj, ok := objectField(raw, "arkhamEntity"); ok {
		record.Entity = &Entity{
			Name:       stringField(obj, "name"),
			Type:       stringField(obj, "type"),
			Website:    stringField(obj, "website"),
			Twitter:    stringField(obj, "twitter"),
			Crunchbase: stringField(obj, "crunchbase"),
			LinkedIn:   stringField(obj, "linkedin"),
		}
	}
	if obj, ok := objectField(raw, "arkhamLabel"); ok {
		record.Label = &Label{Name: stringField(obj, "name")}
	}
	return record
}

// Address returns the queried address.
func (w WalletLabel) Address() string { return w.address }

// IsPlaceholder reports whether the vendor returned no chain data for the address.
func (w WalletLabel) IsPlaceholder() bool { return len(w.chains) == 0 }

// Chains returns the chain records in vendor response order.
func (w WalletLabel) Chains() []ChainRecord {
	out := make([]ChainRecord, len(w.chains))
	copy(out, w.chains)
	return out
}

// Chain looks up the record for a chain identifier.
func (w WalletLabel) Chain(name string) (ChainRecord, bool) {
	for _, record := range w.chains {
		if record.Chain == name {
			return record, true
		}
	}
	return ChainRecord{}, false
}

// PrimaryChain returns the record all entity accessors read from.
func (w WalletLabel) PrimaryChain() (ChainRecord, bool) {
	if w.primary < 0 || w.primary >= len(w.chains) {
		return ChainRecord{}, false
	}
	return w.chains[w.primary], true
}

func (w WalletLabel) entity() Entity {
	primary, ok := w.PrimaryChain()
	if !ok || primary.Entity == nil {
		return Entity{}
	}
	return *primary.Entity
}

// Name returns the primary chain's entity name.
func (w WalletLabel) Name() string { return w.entity().Name }

// EntityType returns the primary chain's entity type, e.g. "cex".
func (w WalletLabel) EntityType() string { return w.entity().Type }

// Website returns the primary chain's entity website.
func (w WalletLabel) Website() string { return w.entity().Website }

// Twitter returns the primary chain's entity Twitter handle or URL.
func (w WalletLabel) Twitter() string { return w.entity().Twitter }

// Crunchbase returns the primary chain's entity Crunchbase URL.
func (w WalletLabel) Crunchbase() string { return w.entity().Crunchbase }

// LinkedIn returns the primary chain's entity LinkedIn URL.
func (w WalletLabel) LinkedIn() string { return w.entity().LinkedIn }

// IsUserAddress reads the flag of the primary chain.
func (w WalletLabel) IsUserAddress() bool {
	primary, ok := w.PrimaryChain()
	return ok && primary.IsUserAddress
}

// Label returns the primary chain's label. When the primary chain carries none, the first
// labelled chain in response order is used instead. Other accessors never fall back.
func (w WalletLabel) Label() string {
	if primary, ok := w.PrimaryChain(); ok && primary.Label != nil {
		return primary.Label.Name
	}
	for _, record := range w.chains {
		if record.Label != nil {
			return record.Label.Name
		}
	}
	return ""
}
