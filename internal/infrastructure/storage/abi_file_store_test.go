package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

func newTestStore(t *testing.T) *ABIFileStore {
	t.Helper()
	store, err := NewABIFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return store
}

func TestGetMissingEntry(t *testing.T) {
	store := newTestStore(t)
	addr, _ := entity.NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	_, ok, err := store.Get(addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutThenGet(t *testing.T) {
	store := newTestStore(t)
	addr, _ := entity.NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	require.NoError(t, store.PutIfAbsent(addr, testABI))

	got, ok, err := store.Get(addr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testABI, got)
}

func TestPutNeverOverwrites(t *testing.T) {
	store := newTestStore(t)
	addr, _ := entity.NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	require.NoError(t, store.PutIfAbsent(addr, testABI))
	require.NoError(t, store.PutIfAbsent(addr, `[]`))

	got, ok, err := store.Get(addr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testABI, got, "second put must not change the cached entry")
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewABIFileStore(dir, logger.Nop())
	require.NoError(t, err)

	// Lowercase input keys the same entry as its checksummed form
	addr, _ := entity.NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, store.PutIfAbsent(addr, testABI))

	_, statErr := os.Stat(filepath.Join(dir, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed.abi"))
	assert.NoError(t, statErr)
}

func TestConcurrentFirstPut(t *testing.T) {
	store := newTestStore(t)
	addr, _ := entity.NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			abiText := testABI
			if n%2 == 1 {
				abiText = `[]`
			}
			assert.NoError(t, store.PutIfAbsent(addr, abiText))
		}(i)
	}
	wg.Wait()

	got, ok, err := store.Get(addr)
	require.NoError(t, err)
	assert.True(t, ok)
	// One of the writers won, atomically and completely
	assert.Contains(t, []string{testABI, `[]`}, got)
}
