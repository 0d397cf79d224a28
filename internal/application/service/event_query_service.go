package service

import (
	"context"
	"fmt"
	"math/big"

	"evm-wallet-inspector/internal/domain/entity"
	domain_service "evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/config"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// EventQueryService builds log filters from event queries, executes them
// and decodes the raw logs
type EventQueryService struct {
	resolver     domain_service.ContractResolver
	clients      domain_service.ChainClientProvider
	publisher    domain_service.EventPublisher
	maxBlockSpan uint64
	logger       *logger.Logger
}

// NewEventQueryService creates a new event query service. publisher may be
// nil when downstream publishing is not wired.
func NewEventQueryService(
	resolver domain_service.ContractResolver,
	clients domain_service.ChainClientProvider,
	publisher domain_service.EventPublisher,
	cfg *config.EventsConfig,
	log *logger.Logger,
) domain_service.EventQueryService {
	return &EventQueryService{
		resolver:     resolver,
		clients:      clients,
		publisher:    publisher,
		maxBlockSpan: cfg.MaxBlockSpan,
		logger:       log.WithComponent("event-query"),
	}
}

// QueryEvents resolves the contract handle, translates the block range,
// executes the log query and decodes every returned log in provider order
func (s *EventQueryService) QueryEvents(ctx context.Context, query entity.EventQuery) ([]entity.DecodedEvent, error) {
	handle, err := s.resolver.Resolve(ctx, query.Address, query.Chain)
	if err != nil {
		return nil, err
	}

	event, err := handle.FindEvent(query.Event, query.Signature)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.Client(query.Chain)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolveRange(ctx, client, query.Range)
	if err != nil {
		return nil, err
	}

	topics, err := buildTopics(event, query)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Querying event logs",
		zap.String("contract", query.Address.Hex()),
		zap.String("event", event.Sig),
		zap.Uint64("from_block", start),
		zap.Uint64("to_block", end))

	logs, err := s.fetchLogs(ctx, client, query.Address, topics, start, end)
	if err != nil {
		return nil, err
	}

	events := make([]entity.DecodedEvent, 0, len(logs))
	for _, raw := range logs {
		decoded, err := DecodeLog(event, raw)
		if err != nil {
			return nil, err
		}
		events = append(events, *decoded)
	}

	if s.publisher != nil && len(events) > 0 {
		// Best-effort: a publish failure never fails the query
		if err := s.publisher.PublishEvents(ctx, query.Chain, query.Address, events); err != nil {
			s.logger.Warn("Failed to publish decoded events", zap.Error(err))
		}
	}

	return events, nil
}

// resolveRange translates a BlockRange into absolute inclusive endpoints.
// A negative start is an offset from the chain head; a nil end means head.
func (s *EventQueryService) resolveRange(ctx context.Context, client domain_service.ChainClient, r entity.BlockRange) (uint64, uint64, error) {
	var head uint64
	if r.Start < 0 || r.End == nil {
		var err error
		head, err = client.BlockNumber(ctx)
		if err != nil {
			return 0, 0, err
		}
	}

	var start uint64
	if r.Start < 0 {
		offset := uint64(-r.Start)
		if offset > head {
			start = 0
		} else {
			start = head - offset
		}
	} else {
		start = uint64(r.Start)
	}

	end := head
	if r.End != nil {
		end = *r.End
	}

	if end < start {
		return 0, 0, fmt.Errorf("%w: block range end %d before start %d", entity.ErrDecode, end, start)
	}
	return start, end, nil
}

// fetchLogs issues one eth_getLogs per sub-range. With no configured span
// limit the whole range goes out as a single query; chunking keeps
// individual queries inside provider limits while preserving log order.
func (s *EventQueryService) fetchLogs(ctx context.Context, client domain_service.ChainClient, address common.Address, topics [][]common.Hash, start, end uint64) ([]types.Log, error) {
	span := s.maxBlockSpan
	if span == 0 || end-start+1 <= span {
		return client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{address},
			Topics:    topics,
		})
	}

	var all []types.Log
	for from := start; from <= end; from += span {
		to := from + span - 1
		if to > end {
			to = end
		}
		logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: []common.Address{address},
			Topics:    topics,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, logs...)
	}
	return all, nil
}

// buildTopics derives the filter topics: position 0 is always the event
// signature; further positions come from named indexed-argument filters,
// with raw per-position overrides applied last
func buildTopics(event abi.Event, query entity.EventQuery) ([][]common.Hash, error) {
	indexed := indexedInputs(event)
	topics := make([][]common.Hash, len(indexed)+1)
	topics[0] = []common.Hash{event.ID}

	for i, input := range indexed {
		value, ok := query.ArgFilters[input.Name]
		if !ok {
			continue
		}
		encoded, err := abi.MakeTopics([]interface{}{value})
		if err != nil {
			return nil, fmt.Errorf("%w: encoding filter for %s: %v", entity.ErrDecode, input.Name, err)
		}
		topics[i+1] = encoded[0]
	}

	for position, topic := range query.Topics {
		// Position 0 stays the event signature
		if topic == nil || position == 0 || position >= len(topics) {
			continue
		}
		topics[position] = []common.Hash{*topic}
	}

	// Trailing unconstrained positions are dropped rather than sent as
	// empty match-alls
	last := len(topics)
	for last > 1 && topics[last-1] == nil {
		last--
	}
	return topics[:last], nil
}

// DecodeLog decodes one raw log against an event ABI entry: indexed fields
// positionally from the topics, the rest from the log body
func DecodeLog(event abi.Event, raw types.Log) (*entity.DecodedEvent, error) {
	indexed := indexedInputs(event)
	if len(raw.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("%w: log %s/%d has %d topics, event %s expects %d",
			entity.ErrDecode, raw.TxHash.Hex(), raw.Index, len(raw.Topics), event.Sig, len(indexed)+1)
	}

	args := make(map[string]interface{})
	if len(event.Inputs.NonIndexed()) > 0 {
		if len(raw.Data) == 0 {
			return nil, fmt.Errorf("%w: log %s/%d has no data, event %s expects %d non-indexed arguments",
				entity.ErrDecode, raw.TxHash.Hex(), raw.Index, event.Sig, len(event.Inputs.NonIndexed()))
		}
		if err := event.Inputs.UnpackIntoMap(args, raw.Data); err != nil {
			return nil, fmt.Errorf("%w: unpacking %s log body: %v", entity.ErrDecode, event.RawName, err)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, raw.Topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: parsing %s log topics: %v", entity.ErrDecode, event.RawName, err)
	}

	return &entity.DecodedEvent{
		Name:        event.RawName,
		Args:        args,
		BlockNumber: raw.BlockNumber,
		LogIndex:    raw.Index,
		TxHash:      raw.TxHash,
	}, nil
}

func indexedInputs(event abi.Event) abi.Arguments {
	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	return indexed
}
