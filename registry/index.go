package registry

import (
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

// PoolIndex binds a pool under its address and both vault addresses.
type PoolIndex struct {
	mu    sync.RWMutex
	pools map[solana.PublicKey]program.Pool
}

func NewPoolIndex() *PoolIndex {
	return &PoolIndex{
		pools: make(map[solana.PublicKey]program.Pool),
	}
}

// Add overwrites any previous binding at the three keys.
func (i *PoolIndex) Add(pool program.Pool) {
	i.mu.Lock()
	i.pools[pool.Address()] = pool
	i.pools[pool.VaultA()] = pool
	i.pools[pool.VaultB()] = pool
	i.mu.Unlock()
}

func (i *PoolIndex) Get(address solana.PublicKey) (program.Pool, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	pool, ok := i.pools[address]
	return pool, ok
}

func (i *PoolIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.pools)
}

// Pools returns every distinct pool, keyed by pool address.
func (i *PoolIndex) Pools() []program.Pool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	pools := make([]program.Pool, 0, len(i.pools)/3+1)
	for address, pool := range i.pools {
		if pool.Address() == address {
			pools = append(pools, pool)
		}
	}
	return pools
}
