package service

import (
	"context"
	"math/big"

	"evm-wallet-inspector/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient exposes the node RPC primitives this system needs.
// Implementations wrap a single chain's JSON-RPC endpoint.
type ChainClient interface {
	// BalanceAt returns the native balance of an account at the latest block
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)

	// CodeAt returns the bytecode at an address; empty for an EOA
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)

	// BlockNumber returns the current chain head number
	BlockNumber(ctx context.Context) (uint64, error)

	// HeaderByNumber returns a block header; nil number means latest
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// SuggestGasPrice returns the node's current gas price estimate
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// TransactionByHash returns a transaction and whether it is pending
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)

	// TransactionReceipt returns the receipt of a mined transaction
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)

	// FilterLogs executes a single eth_getLogs query
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// CallContract executes a read-only contract call
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// ChainClientProvider hands out a ChainClient per chain identifier
type ChainClientProvider interface {
	Client(chain entity.ChainID) (ChainClient, error)
}
