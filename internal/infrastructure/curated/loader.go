package curated

import (
	"encoding/json"
	"fmt"
	"os"

	"evm-wallet-inspector/internal/domain/entity"
)

// Load reads a curated contract list from a JSON object keyed by contract
// address. Decoding goes through the token stream so the file's key order
// is preserved; aggregation output follows it. Addresses are normalized to
// checksummed form on the way in.
func Load(path string) (entity.CuratedList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open curated list %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse curated list %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("curated list %s: expected a JSON object", path)
	}

	var list entity.CuratedList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse curated list %s: %w", path, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("curated list %s: non-string key %v", path, keyTok)
		}

		address, err := entity.NormalizeAddress(key)
		if err != nil {
			return nil, fmt.Errorf("curated list %s: %w", path, err)
		}

		var meta entity.CuratedContract
		if err := dec.Decode(&meta); err != nil {
			return nil, fmt.Errorf("curated list %s: entry %s: %w", path, key, err)
		}

		list = append(list, entity.CuratedEntry{Address: address, Contract: meta})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse curated list %s: %w", path, err)
	}
	return list, nil
}
