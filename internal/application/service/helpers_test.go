package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"evm-wallet-inspector/internal/domain/entity"
	domain_service "evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/blockchain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const erc20ABI = `[
	{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false}
]`

const erc1155ABI = `[
	{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"balanceOfBatch","inputs":[{"name":"owners","type":"address[]"},{"name":"ids","type":"uint256[]"}],"outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view"}
]`

const overloadedTransferABI = `[
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}],"anonymous":false}
]`

func parseABI(t *testing.T, abiJSON string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	return parsed
}

// stubResolver hands out pre-built contract handles without touching the
// network
type stubResolver struct {
	mu      sync.Mutex
	handles map[common.Address]domain_service.ContractHandle
	err     error
	calls   int
}

func (s *stubResolver) Resolve(ctx context.Context, address common.Address, chain entity.ChainID) (domain_service.ContractHandle, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	handle, ok := s.handles[address]
	if !ok {
		return nil, entity.ErrABIUnavailable
	}
	return handle, nil
}

func newStubResolver(t *testing.T, client *blockchain.MockChainClient, contracts map[common.Address]string) *stubResolver {
	t.Helper()
	handles := make(map[common.Address]domain_service.ContractHandle, len(contracts))
	for address, abiJSON := range contracts {
		handles[address] = blockchain.NewBoundContract(address, parseABI(t, abiJSON), client)
	}
	return &stubResolver{handles: handles}
}

// addressTopic encodes an address the way it appears in an indexed topic
func addressTopic(address common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(address.Bytes(), 32))
}
