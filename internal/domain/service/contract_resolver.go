package service

import (
	"context"

	"evm-wallet-inspector/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ABIFetcher retrieves ABI text for a contract from an external source,
// typically a block-explorer API
type ABIFetcher interface {
	// FetchABI returns the contract's ABI JSON text. Fails with
	// entity.ErrABINotFound when the explorer has no verified source and
	// entity.ErrTransport on network or HTTP failure.
	FetchABI(ctx context.Context, address common.Address, chain entity.ChainID) (string, error)
}

// ContractHandle combines a chain client, address and parsed ABI into a
// callable contract
type ContractHandle interface {
	// Address returns the checksummed contract address
	Address() common.Address

	// ABI returns the parsed contract ABI
	ABI() abi.ABI

	// Call performs a read-only contract call and returns the unpacked
	// output values
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)

	// FindEvent looks up an event ABI entry by name. When the ABI
	// declares overloads of the name, signature must carry the canonical
	// form (e.g. "Transfer(address,address,uint256)") or the lookup fails
	// with entity.ErrAmbiguousEvent; an unknown name fails with
	// entity.ErrEventNotFound.
	FindEvent(name, signature string) (abi.Event, error)
}

// ContractResolver produces contract handles, fetching and caching ABIs as
// needed
type ContractResolver interface {
	// Resolve checksums the address, loads its ABI from the durable cache
	// or the fetcher, and returns a callable handle. Fails with
	// entity.ErrABIUnavailable when no ABI can be obtained.
	Resolve(ctx context.Context, address common.Address, chain entity.ChainID) (ContractHandle, error)
}
