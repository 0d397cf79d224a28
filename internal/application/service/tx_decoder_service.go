package service

import (
	"context"
	"fmt"

	"evm-wallet-inspector/internal/domain/entity"
	domain_service "evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TransactionDecoderService resolves a transaction's target contract and
// decodes its call-data into a function name and typed arguments
type TransactionDecoderService struct {
	resolver domain_service.ContractResolver
	clients  domain_service.ChainClientProvider
	logger   *logger.Logger
}

// NewTransactionDecoderService creates a new transaction decoder
func NewTransactionDecoderService(
	resolver domain_service.ContractResolver,
	clients domain_service.ChainClientProvider,
	log *logger.Logger,
) domain_service.TransactionDecoderService {
	return &TransactionDecoderService{
		resolver: resolver,
		clients:  clients,
		logger:   log.WithComponent("tx-decoder"),
	}
}

// DecodeTransaction fetches the transaction, resolves its target contract
// and matches the call-data against the contract's function selectors
func (s *TransactionDecoderService) DecodeTransaction(ctx context.Context, txHash common.Hash, chain entity.ChainID) (*entity.DecodedCall, error) {
	client, err := s.clients.Client(chain)
	if err != nil {
		return nil, err
	}

	tx, _, err := client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}

	to := tx.To()
	if to == nil {
		return nil, fmt.Errorf("%w: transaction %s deploys a contract, nothing to decode against",
			entity.ErrContractResolution, txHash.Hex())
	}

	code, err := client.CodeAt(ctx, *to)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: target %s of transaction %s is an externally-owned account",
			entity.ErrContractResolution, to.Hex(), txHash.Hex())
	}

	s.logger.Info("Decoding transaction",
		zap.String("tx_hash", txHash.Hex()),
		zap.String("contract", to.Hex()))

	handle, err := s.resolver.Resolve(ctx, *to, chain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrContractResolution, err)
	}

	data := tx.Data()
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: transaction %s call-data shorter than a selector (%d bytes)",
			entity.ErrDecode, txHash.Hex(), len(data))
	}

	contractABI := handle.ABI()
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: no function on %s matches selector 0x%x",
			entity.ErrUnknownSelector, to.Hex(), data[:4])
	}

	values, err := method.Inputs.UnpackValues(data[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: unpacking %s arguments of transaction %s: %v",
			entity.ErrDecode, method.RawName, txHash.Hex(), err)
	}

	args := make(map[string]interface{}, len(values))
	for i, input := range method.Inputs {
		name := input.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		args[name] = values[i]
	}

	return &entity.DecodedCall{
		Function: method.RawName,
		Args:     args,
	}, nil
}
