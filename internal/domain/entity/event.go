package entity

import (
	"github.com/ethereum/go-ethereum/common"
)

// BlockRange selects the blocks an event query covers. A negative Start is
// an offset from the current chain head ("last N blocks"); a nil End means
// the current head. Explicit endpoints are inclusive, matching the
// explorer-API convention.
type BlockRange struct {
	Start int64
	End   *uint64
}

// EventQuery describes one log query against a single contract
type EventQuery struct {
	Address common.Address
	Chain   ChainID

	// Event is the event name to match in the contract ABI. When the ABI
	// declares overloads, Signature must carry the full canonical
	// signature, e.g. "Transfer(address,address,uint256)".
	Event     string
	Signature string

	// ArgFilters constrains indexed arguments by name, e.g.
	// {"tokenId": big.NewInt(7)}. Values follow go-ethereum topic
	// encoding rules.
	ArgFilters map[string]interface{}

	// Topics overrides filter topics by position; a nil entry leaves the
	// position unconstrained. Position 0 is the event signature and is
	// always set by the engine.
	Topics []*common.Hash

	Range BlockRange
}

// DecodedEvent is a raw log decoded against its event ABI entry
type DecodedEvent struct {
	Name        string                 `json:"name"`
	Args        map[string]interface{} `json:"args"`
	BlockNumber uint64                 `json:"block_number"`
	LogIndex    uint                   `json:"log_index"`
	TxHash      common.Hash            `json:"tx_hash"`
}

// DecodedCall is a transaction's call-data decoded against the target
// contract's function selectors
type DecodedCall struct {
	Function string                 `json:"function"`
	Args     map[string]interface{} `json:"args"`
}
