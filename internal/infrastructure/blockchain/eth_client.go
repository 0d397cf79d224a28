package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ethClient adapts go-ethereum's ethclient to the domain ChainClient
// interface, mapping transport failures onto the error taxonomy
type ethClient struct {
	eth *ethclient.Client
}

var _ service.ChainClient = (*ethClient)(nil)

func (c *ethClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, transportErr("eth_getBalance", err)
	}
	return balance, nil
}

func (c *ethClient) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, transportErr("eth_getCode", err)
	}
	return code, nil
}

func (c *ethClient) BlockNumber(ctx context.Context) (uint64, error) {
	head, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, transportErr("eth_blockNumber", err)
	}
	return head, nil
}

func (c *ethClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	header, err := c.eth.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, transportErr("eth_getBlockByNumber", err)
	}
	return header, nil
}

func (c *ethClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, transportErr("eth_gasPrice", err)
	}
	return price, nil
}

func (c *ethClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, false, transportErr("eth_getTransactionByHash", err)
	}
	return tx, pending, nil
}

func (c *ethClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, transportErr("eth_getTransactionReceipt", err)
	}
	return receipt, nil
}

func (c *ethClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	logs, err := c.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, transportErr("eth_getLogs", err)
	}
	return logs, nil
}

func (c *ethClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, transportErr("eth_call", err)
	}
	return out, nil
}

func transportErr(method string, err error) error {
	return fmt.Errorf("%w: %s: %v", entity.ErrTransport, method, err)
}
