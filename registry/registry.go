package registry

import (
	"context"

	"github.com/egaotan/solana-registry/meteora"
	"github.com/egaotan/solana-registry/metrics"
	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/raydium"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Registry is the process wide context shared by the loader, the refreshers and the readers.
type Registry struct {
	network program.Network
	log     *zap.Logger
	metrics *metrics.Metrics

	graph        *Graph
	index        *PoolIndex
	vaults       *meteora.VaultCache
	legit        *LegitCache
	state        *NetworkState
	cpmmFees     *raydium.FeeTable
	platformFees *raydium.FeeTable
}

func New(network program.Network, log *zap.Logger, m *metrics.Metrics) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("registry")
	return &Registry{
		network:      network,
		log:          log,
		metrics:      m,
		graph:        NewGraph(),
		index:        NewPoolIndex(),
		vaults:       meteora.NewVaultCache(),
		legit:        NewLegitCache(network, LegitAuthorities, log, m),
		state:        NewNetworkState(),
		cpmmFees:     raydium.NewCpmmFeeTable(log),
		platformFees: raydium.NewPlatformFeeTable(log),
	}
}

// InsertPool links pool into the market graph and the pool index and reports whether it was accepted.
// Pools with equal or null tokens are dropped.
func (r *Registry) InsertPool(pool program.Pool) bool {
	if !pool.Info().Valid() {
		r.log.Debug("reject pool", zap.Stringer("pool", pool.Address()), zap.Stringer("protocol", pool.Protocol()),
			zap.Stringer("token_a", pool.TokenA()), zap.Stringer("token_b", pool.TokenB()))
		r.metrics.PoolRejected()
		return false
	}
	r.graph.Add(pool)
	r.index.Add(pool)
	r.metrics.PoolInserted(pool.Protocol().String())
	return true
}

// PoolsByPair returns the shared pool list of the pair in either order, nil when none.
func (r *Registry) PoolsByPair(tokenA, tokenB solana.PublicKey) *PoolList {
	return r.graph.Pair(tokenA, tokenB)
}

// PoolByAddress resolves a pool, token A vault or token B vault address.
func (r *Registry) PoolByAddress(address solana.PublicKey) (program.Pool, bool) {
	return r.index.Get(address)
}

func (r *Registry) GetOrCreateVault(token solana.PublicKey) *meteora.Vault {
	return r.vaults.GetOrCreate(token)
}

func (r *Registry) IsLegitToken(ctx context.Context, token solana.PublicKey) bool {
	return r.legit.IsLegit(ctx, token)
}

// RefreshPool reloads pool from the network. The pool keeps its previous state on error.
func (r *Registry) RefreshPool(ctx context.Context, pool program.Pool) error {
	if err := pool.Refresh(ctx, r.network); err != nil {
		r.log.Warn("refresh pool", zap.Stringer("pool", pool.Address()), zap.Error(err))
		r.metrics.RefreshFailed(pool.Protocol().String())
		return err
	}
	return nil
}

func (r *Registry) Pools() []program.Pool {
	return r.index.Pools()
}

func (r *Registry) Neighbors(token solana.PublicKey) []solana.PublicKey {
	return r.graph.Neighbors(token)
}

func (r *Registry) Network() program.Network {
	return r.network
}

func (r *Registry) State() *NetworkState {
	return r.state
}

func (r *Registry) Vaults() *meteora.VaultCache {
	return r.vaults
}

func (r *Registry) CpmmFees() *raydium.FeeTable {
	return r.cpmmFees
}

func (r *Registry) PlatformFees() *raydium.FeeTable {
	return r.platformFees
}

func (r *Registry) Metrics() *metrics.Metrics {
	return r.metrics
}

func (r *Registry) Logger() *zap.Logger {
	return r.log
}

type Stats struct {
	Tokens      int `json:"tokens"`
	Pairs       int `json:"pairs"`
	Addresses   int `json:"addresses"`
	Vaults      int `json:"vaults"`
	LegitTokens int `json:"legit_checked"`
}

// Stats also publishes the sizes to the metrics.
func (r *Registry) Stats() Stats {
	stats := Stats{
		Tokens:      r.graph.Tokens(),
		Pairs:       r.graph.Pairs(),
		Addresses:   r.index.Len(),
		Vaults:      r.vaults.Len(),
		LegitTokens: r.legit.Len(),
	}
	r.metrics.SetSizes(stats.Pairs, stats.Addresses, stats.Vaults)
	return stats
}
