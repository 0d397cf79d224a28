package blockchain

import (
	"fmt"
	"sync"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// ClientPool dials one RPC client per chain on first use and reuses it for
// the process lifetime
type ClientPool struct {
	registry *entity.Registry
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[entity.ChainID]service.ChainClient
}

// NewClientPool creates a lazy per-chain client pool
func NewClientPool(registry *entity.Registry, log *logger.Logger) *ClientPool {
	return &ClientPool{
		registry: registry,
		logger:   log.WithComponent("chain-client"),
		clients:  make(map[entity.ChainID]service.ChainClient),
	}
}

// Client returns the RPC client for a chain, dialing it on first use
func (p *ClientPool) Client(chain entity.ChainID) (service.ChainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[chain]; ok {
		return client, nil
	}

	cfg, err := p.registry.Config(chain)
	if err != nil {
		return nil, err
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: no RPC endpoint configured for %s", entity.ErrUnknownChain, chain)
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial %s RPC: %v", entity.ErrTransport, chain, err)
	}

	p.logger.Info("Connected to chain RPC", zap.String("chain", string(chain)))

	client := &ethClient{eth: eth}
	p.clients[chain] = client
	return client, nil
}

// Close releases every dialed client
func (p *ClientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for chain, client := range p.clients {
		if ec, ok := client.(*ethClient); ok {
			ec.eth.Close()
		}
		delete(p.clients, chain)
	}
}
