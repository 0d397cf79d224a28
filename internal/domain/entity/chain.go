package entity

import (
	"fmt"
	"sort"
)

// ChainID identifies a supported EVM network
type ChainID string

const (
	ChainEthereum ChainID = "eth"
	ChainPolygon  ChainID = "polygon"
)

// ChainConfig holds the endpoints and credentials for a single chain
type ChainConfig struct {
	RPCURL         string `json:"rpc_url"`
	ExplorerURL    string `json:"explorer_url"`
	ExplorerAPIKey string `json:"-"`
}

// Registry maps chain identifiers to their configuration.
// Built once at startup and immutable afterwards.
type Registry struct {
	chains map[ChainID]ChainConfig
}

// NewRegistry creates a registry from the given chain configurations
func NewRegistry(chains map[ChainID]ChainConfig) *Registry {
	copied := make(map[ChainID]ChainConfig, len(chains))
	for id, cfg := range chains {
		copied[id] = cfg
	}
	return &Registry{chains: copied}
}

// Config returns the configuration for a chain
func (r *Registry) Config(chain ChainID) (ChainConfig, error) {
	cfg, ok := r.chains[chain]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: %s", ErrUnknownChain, chain)
	}
	return cfg, nil
}

// Chains returns the registered chain identifiers in stable order
func (r *Registry) Chains() []ChainID {
	ids := make([]ChainID, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
