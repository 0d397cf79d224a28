package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"evm-wallet-inspector/internal/domain/repository"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ABIFileStore keeps one plain-text ABI file per checksummed contract
// address under a storage root, layout <root>/<address>.abi.
type ABIFileStore struct {
	root   string
	logger *logger.Logger
}

var _ repository.ABIRepository = (*ABIFileStore)(nil)

// NewABIFileStore creates the storage root if needed and returns the store
func NewABIFileStore(root string, log *logger.Logger) (*ABIFileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ABI storage root %s: %w", root, err)
	}
	return &ABIFileStore{
		root:   root,
		logger: log.WithComponent("abi-store"),
	}, nil
}

// Get returns the cached ABI text for an address and whether an entry exists
func (s *ABIFileStore) Get(address common.Address) (string, bool, error) {
	data, err := os.ReadFile(s.path(address))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cached ABI for %s: %w", address.Hex(), err)
	}
	return string(data), true, nil
}

// PutIfAbsent writes an entry only if none exists. O_EXCL makes the create
// atomic, so two callers racing on the same uncached address cannot clobber
// each other; the loser's write is a no-op.
func (s *ABIFileStore) PutIfAbsent(address common.Address, abiJSON string) error {
	f, err := os.OpenFile(s.path(address), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Debug("ABI already cached, keeping existing entry",
				zap.String("address", address.Hex()))
			return nil
		}
		return fmt.Errorf("failed to create ABI cache entry for %s: %w", address.Hex(), err)
	}
	defer f.Close()

	if _, err := f.WriteString(abiJSON); err != nil {
		return fmt.Errorf("failed to write ABI cache entry for %s: %w", address.Hex(), err)
	}

	s.logger.Info("Cached contract ABI",
		zap.String("address", address.Hex()),
		zap.Int("bytes", len(abiJSON)))
	return nil
}

func (s *ABIFileStore) path(address common.Address) string {
	return filepath.Join(s.root, address.Hex()+".abi")
}
