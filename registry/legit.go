package registry

import (
	"context"
	"sync"

	"github.com/egaotan/solana-registry/metrics"
	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// metadataHeaderSize covers the key byte and the update authority.
const metadataHeaderSize = 33

// LegitAuthorities are the update authorities the launchpads stamp on the metadata of their coins.
var LegitAuthorities = []solana.PublicKey{
	program.RaydiumLaunchpadAuthority,
	program.PumpBondingCurveAuthority,
}

// LegitCache remembers, for the lifetime of the process, whether a token was minted by a known launchpad.
type LegitCache struct {
	network     program.Network
	authorities map[solana.PublicKey]bool
	log         *zap.Logger
	metrics     *metrics.Metrics

	mu     sync.Mutex
	tokens map[solana.PublicKey]bool
}

func NewLegitCache(network program.Network, authorities []solana.PublicKey, log *zap.Logger, m *metrics.Metrics) *LegitCache {
	set := make(map[solana.PublicKey]bool, len(authorities))
	for _, authority := range authorities {
		set[authority] = true
	}
	return &LegitCache{
		network:     network,
		authorities: set,
		log:         log,
		metrics:     m,
		tokens:      make(map[solana.PublicKey]bool),
	}
}

// IsLegit fetches the metadata of token on first use. The lock is held over the fetch so each token is fetched once.
func (c *LegitCache) IsLegit(ctx context.Context, token solana.PublicKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if legit, ok := c.tokens[token]; ok {
		return legit
	}
	legit := c.fetch(ctx, token)
	c.tokens[token] = legit
	c.metrics.LegitChecked(legit)
	return legit
}

func (c *LegitCache) fetch(ctx context.Context, token solana.PublicKey) bool {
	metadata := program.MetadataAddress(token)
	data, err := c.network.AccountData(ctx, metadata)
	if err != nil {
		c.log.Debug("metadata fetch failed, token is not legit",
			zap.Stringer("token", token), zap.Stringer("metadata", metadata), zap.Error(err))
		return false
	}
	if len(data) < metadataHeaderSize {
		return false
	}
	authority := solana.PublicKeyFromBytes(data[1:metadataHeaderSize])
	return c.authorities[authority]
}

func (c *LegitCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tokens)
}
