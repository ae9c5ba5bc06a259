package registry

import (
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

// PoolList is the set of pools trading one unordered token pair. It is bound under both directions.
type PoolList struct {
	mu    sync.RWMutex
	pools []program.Pool
}

func (l *PoolList) append(pool program.Pool) {
	l.mu.Lock()
	l.pools = append(l.pools, pool)
	l.mu.Unlock()
}

func (l *PoolList) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pools)
}

// Pools returns a snapshot of the list. The pools themselves are shared.
func (l *PoolList) Pools() []program.Pool {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	pools := make([]program.Pool, len(l.pools))
	copy(pools, l.pools)
	return pools
}

// Graph maps token -> token -> pools.
type Graph struct {
	mu    sync.RWMutex
	edges map[solana.PublicKey]map[solana.PublicKey]*PoolList
	pairs int
}

func NewGraph() *Graph {
	return &Graph{
		edges: make(map[solana.PublicKey]map[solana.PublicKey]*PoolList),
	}
}

func (g *Graph) get(tokenA, tokenB solana.PublicKey) *PoolList {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[tokenA][tokenB]
}

// Add appends pool to the list of its pair, creating and binding the list in both directions on first use.
func (g *Graph) Add(pool program.Pool) {
	tokenA, tokenB := pool.TokenA(), pool.TokenB()
	if list := g.get(tokenA, tokenB); list != nil {
		list.append(pool)
		return
	}
	g.mu.Lock()
	list := g.edges[tokenA][tokenB]
	if list == nil {
		list = &PoolList{}
		g.bind(tokenA, tokenB, list)
		g.bind(tokenB, tokenA, list)
		g.pairs++
	}
	g.mu.Unlock()
	list.append(pool)
}

func (g *Graph) bind(from, to solana.PublicKey, list *PoolList) {
	neighbors, ok := g.edges[from]
	if !ok {
		neighbors = make(map[solana.PublicKey]*PoolList)
		g.edges[from] = neighbors
	}
	neighbors[to] = list
}

// Pair returns the shared list of the pair, nil when no pool trades it.
func (g *Graph) Pair(tokenA, tokenB solana.PublicKey) *PoolList {
	return g.get(tokenA, tokenB)
}

// Neighbors returns every token directly tradeable against token.
func (g *Graph) Neighbors(token solana.PublicKey) []solana.PublicKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	neighbors := make([]solana.PublicKey, 0, len(g.edges[token]))
	for other := range g.edges[token] {
		neighbors = append(neighbors, other)
	}
	return neighbors
}

func (g *Graph) Tokens() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

func (g *Graph) Pairs() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pairs
}
