// internal/assets/assets.go
package assets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Asset is one entry of the static per-network token list. It is never
// mutated after loading.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// Mint parses the asset's mint address.
func (a *Asset) Mint() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(a.Address)
}

// Registry holds the asset lists keyed by network name.
type Registry struct {
	lists map[string][]Asset
}

// Load reads the asset registry from a JSON file of the form
// {"mainnet-beta": [...], "devnet": [...]}. The registry is loaded once
// at startup and treated as read-only afterwards.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset list: %w", err)
	}

	lists := make(map[string][]Asset)
	if err := json.Unmarshal(raw, &lists); err != nil {
		return nil, fmt.Errorf("failed to parse asset list: %w", err)
	}

	return &Registry{lists: lists}, nil
}

// Assets returns the asset list for a network.
func (r *Registry) Assets(network string) []Asset {
	return r.lists[network]
}

// Lookup finds an asset by symbol or mint address on a network.
func (r *Registry) Lookup(network, symbolOrMint string) (*Asset, error) {
	for i := range r.lists[network] {
		a := &r.lists[network][i]
		if a.Symbol == symbolOrMint || a.Address == symbolOrMint {
			return a, nil
		}
	}
	return nil, fmt.Errorf("asset %q not found on %s", symbolOrMint, network)
}
