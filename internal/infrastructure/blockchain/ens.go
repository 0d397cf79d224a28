package blockchain

import (
	"context"
	"fmt"
	"strings"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// ensRegistryAddress is the ENS registry deployed on Ethereum mainnet
var ensRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const ensRegistryABI = `[{"constant":true,"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

const ensResolverABI = `[{"constant":true,"inputs":[{"name":"node","type":"bytes32"}],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

// ENSResolver performs reverse name lookup against the mainnet ENS
// registry. Lookups are best-effort: callers discard the error branch and
// treat any failure as "no name".
type ENSResolver struct {
	clients     service.ChainClientProvider
	registryABI abi.ABI
	resolverABI abi.ABI
	logger      *logger.Logger
}

// NewENSResolver creates a new reverse-name resolver
func NewENSResolver(clients service.ChainClientProvider, log *logger.Logger) (service.NameResolver, error) {
	registryABI, err := abi.JSON(strings.NewReader(ensRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("parsing ENS registry ABI: %w", err)
	}
	resolverABI, err := abi.JSON(strings.NewReader(ensResolverABI))
	if err != nil {
		return nil, fmt.Errorf("parsing ENS resolver ABI: %w", err)
	}
	return &ENSResolver{
		clients:     clients,
		registryABI: registryABI,
		resolverABI: resolverABI,
		logger:      log.WithComponent("ens"),
	}, nil
}

// ReverseName resolves <addr>.addr.reverse through the registry and its
// configured resolver
func (r *ENSResolver) ReverseName(ctx context.Context, address common.Address) (string, error) {
	client, err := r.clients.Client(entity.ChainEthereum)
	if err != nil {
		return "", err
	}

	node := Namehash(strings.ToLower(address.Hex()[2:]) + ".addr.reverse")

	registry := NewBoundContract(ensRegistryAddress, r.registryABI, client)
	out, err := registry.Call(ctx, "resolver", node)
	if err != nil {
		return "", err
	}
	var resolverAddr common.Address
	ok := len(out) > 0
	if ok {
		resolverAddr, ok = out[0].(common.Address)
	}
	if !ok || resolverAddr == (common.Address{}) {
		return "", fmt.Errorf("no reverse resolver configured for %s", address.Hex())
	}

	resolver := NewBoundContract(resolverAddr, r.resolverABI, client)
	out, err = resolver.Call(ctx, "name", node)
	if err != nil {
		return "", err
	}
	var name string
	ok = len(out) > 0
	if ok {
		name, ok = out[0].(string)
	}
	if !ok || name == "" {
		return "", fmt.Errorf("no reverse record for %s", address.Hex())
	}

	r.logger.Debug("Resolved reverse name",
		zap.String("address", address.Hex()),
		zap.String("name", name))
	return name, nil
}

// Namehash implements the ENS name hashing algorithm (EIP-137)
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = [32]byte(crypto.Keccak256(node[:], labelHash))
	}
	return node
}
