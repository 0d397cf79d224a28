package entity

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CuratedContract is the metadata attached to one entry of the curated
// contract list. Fields beyond the known ones are kept in Metadata and
// passed through to the resulting Holding untouched.
type CuratedContract struct {
	Symbol string
	Name   string

	// FetchBatch marks multi-token contracts whose balance is obtained
	// through a batched per-id query instead of a plain balanceOf call.
	FetchBatch bool

	// TotalSupply bounds the synthetic id range [0, TotalSupply) used by
	// batched queries. Required when FetchBatch is set. Assumes token ids
	// are densely assigned starting at zero; sparse or non-zero-based id
	// schemes will undercount.
	TotalSupply int64

	Metadata map[string]interface{}
}

// UnmarshalJSON splits the known metadata keys from the passthrough ones
func (c *CuratedContract) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["symbol"].(string); ok {
		c.Symbol = v
	}
	if v, ok := raw["name"].(string); ok {
		c.Name = v
	}
	if v, ok := raw["fetch_batch"].(bool); ok {
		c.FetchBatch = v
	}
	if v, ok := raw["total_supply"].(float64); ok {
		c.TotalSupply = int64(v)
	}

	delete(raw, "symbol")
	delete(raw, "name")
	delete(raw, "fetch_batch")
	delete(raw, "total_supply")
	if len(raw) > 0 {
		c.Metadata = raw
	}
	return nil
}

// CuratedEntry pairs a checksummed contract address with its metadata
type CuratedEntry struct {
	Address  common.Address
	Contract CuratedContract
}

// CuratedList is the curated contract list in its original file order.
// Aggregation output follows this order.
type CuratedList []CuratedEntry

// Holding is one positive balance a wallet holds on a curated contract
type Holding struct {
	Address  common.Address         `json:"address"`
	Symbol   string                 `json:"symbol"`
	Name     string                 `json:"name"`
	Balance  *big.Int               `json:"balance"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
