package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"evm-wallet-inspector/internal/domain/entity"
	domain_service "evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/config"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// HoldingsService aggregates a wallet's balances over the curated contract
// list. Contracts are checked concurrently by a bounded worker pool, but
// output order always follows the input list.
type HoldingsService struct {
	resolver domain_service.ContractResolver
	names    domain_service.NameResolver
	chain    entity.ChainID
	workers  int
	logger   *logger.Logger
}

// NewHoldingsService creates a new holdings aggregator. names may be nil;
// reverse-name lookup is purely informational.
func NewHoldingsService(
	resolver domain_service.ContractResolver,
	names domain_service.NameResolver,
	cfg *config.HoldingsConfig,
	log *logger.Logger,
) domain_service.HoldingsService {
	workers := cfg.WorkerPoolSize
	if workers < 1 {
		workers = 1
	}
	return &HoldingsService{
		resolver: resolver,
		names:    names,
		chain:    entity.ChainEthereum,
		workers:  workers,
		logger:   log.WithComponent("holdings"),
	}
}

// Aggregate checks every curated contract and returns the strictly positive
// balances in curated-list order
func (s *HoldingsService) Aggregate(ctx context.Context, wallet common.Address, curated entity.CuratedList, includeBatch bool) ([]entity.Holding, error) {
	if s.names != nil {
		// Lookup failures mean "no name", never fatal
		if name, err := s.names.ReverseName(ctx, wallet); err == nil {
			s.logger.Info("Aggregating holdings",
				zap.String("wallet", wallet.Hex()),
				zap.String("name", name))
		}
	}

	results := make([]*entity.Holding, len(curated))
	checkErrs := make([]error, len(curated))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(curated) {
		workers = len(curated)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := curated[i]
				holding, err := s.check(ctx, wallet, entry, includeBatch)
				if err != nil {
					// One contract's failure never cancels the others
					checkErrs[i] = fmt.Errorf("checking %s: %w", entry.Address.Hex(), err)
					continue
				}
				results[i] = holding
			}
		}()
	}

	for i, entry := range curated {
		// Batch-tagged contracts are skipped before any network activity
		if entry.Contract.FetchBatch && !includeBatch {
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(checkErrs...); err != nil {
		return nil, err
	}

	holdings := make([]entity.Holding, 0, len(curated))
	for _, holding := range results {
		if holding != nil {
			holdings = append(holdings, *holding)
		}
	}
	return holdings, nil
}

// check resolves one curated contract and queries the wallet's balance on it
func (s *HoldingsService) check(ctx context.Context, wallet common.Address, entry entity.CuratedEntry, includeBatch bool) (*entity.Holding, error) {
	handle, err := s.resolver.Resolve(ctx, entry.Address, s.chain)
	if err != nil {
		if entry.Contract.FetchBatch {
			s.logger.Warn("Problems resolving batch contract, treating balance as zero",
				zap.String("contract", entry.Address.Hex()),
				zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	var balance *big.Int
	if entry.Contract.FetchBatch {
		balance = s.batchBalance(ctx, handle, wallet, entry)
	} else {
		balance, err = singleBalance(ctx, handle, wallet)
		if err != nil {
			return nil, err
		}
	}

	// A zero balance never produces a Holding
	if balance.Sign() <= 0 {
		return nil, nil
	}

	return &entity.Holding{
		Address:  entry.Address,
		Symbol:   entry.Contract.Symbol,
		Name:     entry.Contract.Name,
		Balance:  balance,
		Metadata: entry.Contract.Metadata,
	}, nil
}

// Holding checks a single contract; nil result means the wallet holds nothing
func (s *HoldingsService) Holding(ctx context.Context, wallet, contract common.Address, meta entity.CuratedContract) (*entity.Holding, error) {
	handle, err := s.resolver.Resolve(ctx, contract, s.chain)
	if err != nil {
		return nil, err
	}

	balance, err := singleBalance(ctx, handle, wallet)
	if err != nil {
		return nil, err
	}
	if balance.Sign() <= 0 {
		return nil, nil
	}

	return &entity.Holding{
		Address:  contract,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Balance:  balance,
		Metadata: meta.Metadata,
	}, nil
}

// batchBalance queries balanceOfBatch over the synthetic id range
// [0, total_supply), replicating the wallet once per id, and counts the
// non-zero positions. Assumes dense, zero-based token ids; sparse schemes
// undercount. Any failure degrades to a zero balance with a diagnostic so
// one non-conforming contract cannot abort a whole aggregation.
func (s *HoldingsService) batchBalance(ctx context.Context, handle domain_service.ContractHandle, wallet common.Address, entry entity.CuratedEntry) *big.Int {
	supply := entry.Contract.TotalSupply
	if supply <= 0 {
		s.logger.Warn("Batch contract without total_supply, treating balance as zero",
			zap.String("contract", entry.Address.Hex()))
		return big.NewInt(0)
	}

	owners := make([]common.Address, supply)
	ids := make([]*big.Int, supply)
	for i := int64(0); i < supply; i++ {
		owners[i] = wallet
		ids[i] = big.NewInt(i)
	}

	s.logger.Debug("Querying batched balances",
		zap.String("contract", entry.Address.Hex()),
		zap.Int64("id_range_end", supply))

	out, err := handle.Call(ctx, "balanceOfBatch", owners, ids)
	if err != nil {
		s.logger.Warn("Problems fetching batch contract balance, moving along",
			zap.String("contract", entry.Address.Hex()),
			zap.Error(err))
		return big.NewInt(0)
	}

	var balances []*big.Int
	ok := len(out) > 0
	if ok {
		balances, ok = out[0].([]*big.Int)
	}
	if !ok {
		s.logger.Warn("Unexpected balanceOfBatch return shape, treating balance as zero",
			zap.String("contract", entry.Address.Hex()))
		return big.NewInt(0)
	}

	count := int64(0)
	for _, b := range balances {
		if b != nil && b.Sign() > 0 {
			count++
		}
	}
	return big.NewInt(count)
}

func singleBalance(ctx context.Context, handle domain_service.ContractHandle, wallet common.Address) (*big.Int, error) {
	out, err := handle.Call(ctx, "balanceOf", wallet)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: balanceOf returned no values", entity.ErrDecode)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf returned %T, expected uint256", entity.ErrDecode, out[0])
	}
	return balance, nil
}
