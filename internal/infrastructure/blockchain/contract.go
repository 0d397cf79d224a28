package blockchain

import (
	"context"
	"fmt"
	"strings"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/repository"
	"evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// BoundContract is a chain client + address + parsed ABI, callable for
// read-only methods and event lookups
type BoundContract struct {
	address common.Address
	abi     abi.ABI
	client  service.ChainClient
}

var _ service.ContractHandle = (*BoundContract)(nil)

// NewBoundContract binds an already-parsed ABI to an address and client
func NewBoundContract(address common.Address, parsed abi.ABI, client service.ChainClient) *BoundContract {
	return &BoundContract{address: address, abi: parsed, client: client}
}

// Address returns the checksummed contract address
func (c *BoundContract) Address() common.Address {
	return c.address
}

// ABI returns the parsed contract ABI
func (c *BoundContract) ABI() abi.ABI {
	return c.abi
}

// Call packs the arguments, performs eth_call and unpacks the outputs
func (c *BoundContract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: packing %s call: %v", entity.ErrDecode, method, err)
	}

	msg := ethereum.CallMsg{To: &c.address, Data: input}
	output, err := c.client.CallContract(ctx, msg)
	if err != nil {
		return nil, err
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w: unpacking %s output: %v", entity.ErrDecode, method, err)
	}
	return values, nil
}

// FindEvent looks up an event ABI entry by name. go-ethereum renames
// overloads to Transfer0, Transfer1, ... so matching goes through RawName.
// More than one overload requires a canonical signature to disambiguate.
func (c *BoundContract) FindEvent(name, signature string) (abi.Event, error) {
	var matches []abi.Event
	for _, event := range c.abi.Events {
		if event.RawName != name {
			continue
		}
		if signature != "" {
			if event.Sig == signature {
				return event, nil
			}
			continue
		}
		matches = append(matches, event)
	}

	switch len(matches) {
	case 0:
		if signature != "" {
			return abi.Event{}, fmt.Errorf("%w: no event matching signature %s on %s",
				entity.ErrEventNotFound, signature, c.address.Hex())
		}
		return abi.Event{}, fmt.Errorf("%w: no event named %s on %s",
			entity.ErrEventNotFound, name, c.address.Hex())
	case 1:
		return matches[0], nil
	default:
		sigs := make([]string, len(matches))
		for i, m := range matches {
			sigs[i] = m.Sig
		}
		return abi.Event{}, fmt.Errorf("%w: %s declares %d events named %s (%s); supply a signature",
			entity.ErrAmbiguousEvent, c.address.Hex(), len(matches), name, strings.Join(sigs, ", "))
	}
}

// Resolver produces contract handles, backed by the durable ABI cache with
// explorer fallback
type Resolver struct {
	store   repository.ABIRepository
	fetcher service.ABIFetcher
	clients service.ChainClientProvider
	logger  *logger.Logger
}

// NewResolver creates a new contract resolver
func NewResolver(store repository.ABIRepository, fetcher service.ABIFetcher, clients service.ChainClientProvider, log *logger.Logger) service.ContractResolver {
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		clients: clients,
		logger:  log.WithComponent("contract-resolver"),
	}
}

// Resolve checksums the address, loads its ABI from cache or explorer and
// returns a callable handle
func (r *Resolver) Resolve(ctx context.Context, address common.Address, chain entity.ChainID) (service.ContractHandle, error) {
	client, err := r.clients.Client(chain)
	if err != nil {
		return nil, err
	}

	abiJSON, cached, err := r.store.Get(address)
	if err != nil {
		return nil, err
	}

	if !cached {
		r.logger.Info("Fetching contract ABI for the first time",
			zap.String("address", address.Hex()),
			zap.String("chain", string(chain)))

		abiJSON, err = r.fetcher.FetchABI(ctx, address, chain)
		if err != nil {
			return nil, fmt.Errorf("%w: %s on %s: %w", entity.ErrABIUnavailable, address.Hex(), chain, err)
		}
		if err := r.store.PutIfAbsent(address, abiJSON); err != nil {
			return nil, err
		}
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing ABI for %s: %v", entity.ErrABIUnavailable, address.Hex(), err)
	}

	return NewBoundContract(address, parsed, client), nil
}
