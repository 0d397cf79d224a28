package entity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress parses a hex address of any casing and returns it as a
// 20-byte value whose textual form (Address.Hex) is EIP-55 checksummed.
// Two case-insensitive-equal inputs normalize to the same value, so the
// result is safe to use as a cache key or RPC argument.
func NormalizeAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return common.HexToAddress(raw), nil
}
