package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MockChainClient is a programmable in-memory ChainClient for tests and
// offline development
type MockChainClient struct {
	mu sync.Mutex

	Balances map[common.Address]*big.Int
	Codes    map[common.Address][]byte
	Head     uint64
	GasPrice *big.Int
	Txs      map[common.Hash]*types.Transaction
	Receipts map[common.Hash]*types.Receipt
	Logs     []types.Log

	// CallFn handles eth_call; nil means every call fails
	CallFn func(msg ethereum.CallMsg) ([]byte, error)

	// Recorded requests
	FilterQueries []ethereum.FilterQuery
	CallCount     int
}

var _ service.ChainClient = (*MockChainClient)(nil)

// NewMockChainClient creates an empty mock client
func NewMockChainClient() *MockChainClient {
	return &MockChainClient{
		Balances: make(map[common.Address]*big.Int),
		Codes:    make(map[common.Address][]byte),
		Txs:      make(map[common.Hash]*types.Transaction),
		Receipts: make(map[common.Hash]*types.Receipt),
		GasPrice: big.NewInt(0),
	}
}

func (m *MockChainClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance, ok := m.Balances[account]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

func (m *MockChainClient) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Codes[account], nil
}

func (m *MockChainClient) BlockNumber(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Head, nil
}

func (m *MockChainClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if number == nil {
		number = new(big.Int).SetUint64(m.Head)
	}
	return &types.Header{Number: new(big.Int).Set(number)}, nil
}

func (m *MockChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.GasPrice), nil
}

func (m *MockChainClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Txs[hash]
	if !ok {
		return nil, false, fmt.Errorf("%w: transaction %s not found", entity.ErrTransport, hash.Hex())
	}
	return tx, false, nil
}

func (m *MockChainClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	receipt, ok := m.Receipts[hash]
	if !ok {
		return nil, fmt.Errorf("%w: receipt %s not found", entity.ErrTransport, hash.Hex())
	}
	return receipt, nil
}

func (m *MockChainClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterQueries = append(m.FilterQueries, query)
	return m.Logs, nil
}

func (m *MockChainClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	m.mu.Lock()
	callFn := m.CallFn
	m.CallCount++
	m.mu.Unlock()

	if callFn == nil {
		return nil, fmt.Errorf("%w: no call handler configured", entity.ErrTransport)
	}
	return callFn(msg)
}

// MockClientProvider returns the same mock client for every chain
type MockClientProvider struct {
	Mock *MockChainClient
}

var _ service.ChainClientProvider = (*MockClientProvider)(nil)

func (p *MockClientProvider) Client(chain entity.ChainID) (service.ChainClient, error) {
	return p.Mock, nil
}
