package service

import (
	"context"

	"evm-wallet-inspector/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// EventQueryService builds log filters, executes them and decodes the raw
// logs into structured events
type EventQueryService interface {
	// QueryEvents resolves the contract, translates the block range,
	// issues the log query and decodes every returned log. Logs are
	// returned in provider order. A log whose topic count does not match
	// the event's indexed-argument count fails the query with
	// entity.ErrDecode.
	QueryEvents(ctx context.Context, query entity.EventQuery) ([]entity.DecodedEvent, error)
}

// TransactionDecoderService decodes a transaction's call-data against its
// target contract's ABI
type TransactionDecoderService interface {
	// DecodeTransaction fails with entity.ErrContractResolution when the
	// target has no resolvable ABI (e.g. an externally-owned account) and
	// entity.ErrUnknownSelector when no function matches the leading
	// 4-byte selector.
	DecodeTransaction(ctx context.Context, txHash common.Hash, chain entity.ChainID) (*entity.DecodedCall, error)
}

// HoldingsService aggregates a wallet's balances over a curated contract list
type HoldingsService interface {
	// Aggregate returns one Holding per curated contract with a strictly
	// positive balance, in curated-list order. Batch-tagged contracts are
	// skipped entirely unless includeBatch is set; batch-path failures
	// degrade that contract to a zero balance instead of aborting the
	// aggregation.
	Aggregate(ctx context.Context, wallet common.Address, curated entity.CuratedList, includeBatch bool) ([]entity.Holding, error)

	// Holding checks a single contract and returns nil when the wallet's
	// balance is zero
	Holding(ctx context.Context, wallet, contract common.Address, meta entity.CuratedContract) (*entity.Holding, error)
}

// NameResolver performs reverse human-readable name lookup for an address.
// Callers treat a failed lookup as "no name"; the error branch exists so
// the discard is explicit at the call site.
type NameResolver interface {
	ReverseName(ctx context.Context, address common.Address) (string, error)
}

// EventPublisher pushes decoded events to downstream consumers
type EventPublisher interface {
	PublishEvents(ctx context.Context, chain entity.ChainID, contract common.Address, events []entity.DecodedEvent) error
}
