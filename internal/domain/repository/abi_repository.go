package repository

import (
	"github.com/ethereum/go-ethereum/common"
)

// ABIRepository is the durable ABI cache, keyed by checksummed contract
// address. Entries are append-only: once written they are never mutated.
type ABIRepository interface {
	// Get returns the cached ABI text for an address and whether an entry
	// exists
	Get(address common.Address) (string, bool, error)

	// PutIfAbsent writes an entry only if none exists. The write must use
	// an atomic create-exclusive primitive so that concurrent first
	// fetches of the same address cannot clobber each other; an existing
	// entry is left untouched and the call succeeds.
	PutIfAbsent(address common.Address, abiJSON string) error
}
