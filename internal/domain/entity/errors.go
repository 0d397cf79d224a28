package entity

import "errors"

// Error taxonomy for the ABI resolution and decoding subsystem.
// All errors are surfaced to callers; see the holdings aggregator for the
// single deliberate degradation path.
var (
	// ErrUnknownChain indicates a chain identifier with no registry entry
	ErrUnknownChain = errors.New("unknown chain")

	// ErrInvalidAddress indicates a string that is not a valid hex address
	ErrInvalidAddress = errors.New("invalid address")

	// ErrTransport indicates a network or HTTP failure talking to an RPC
	// node or explorer endpoint
	ErrTransport = errors.New("transport failure")

	// ErrABINotFound indicates the explorer holds no verified source for
	// the requested contract
	ErrABINotFound = errors.New("abi not found")

	// ErrABIUnavailable indicates no ABI could be obtained for an address
	// from either the cache or the explorer
	ErrABIUnavailable = errors.New("abi unavailable")

	// ErrAmbiguousEvent indicates an ABI declares multiple events with the
	// same name and no disambiguating signature was supplied
	ErrAmbiguousEvent = errors.New("ambiguous event")

	// ErrEventNotFound indicates an ABI declares no event with the
	// requested name
	ErrEventNotFound = errors.New("event not found")

	// ErrUnknownSelector indicates call-data whose 4-byte selector matches
	// no function in the contract ABI
	ErrUnknownSelector = errors.New("unknown function selector")

	// ErrDecode indicates malformed or mismatched log/call data
	ErrDecode = errors.New("decode failure")

	// ErrContractResolution indicates a transaction target with no
	// resolvable ABI, e.g. an externally-owned account
	ErrContractResolution = errors.New("contract resolution failure")
)
