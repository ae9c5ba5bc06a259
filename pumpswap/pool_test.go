package pumpswap

import (
	"context"
	"testing"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, canonical bool) *Pool {
	base := programtest.NewKey()
	creator := programtest.NewKey()
	if canonical {
		creator = program.PumpPoolAuthority(base)
	}
	layout := PoolLayout{
		Creator:               creator,
		BaseMint:              base,
		QuoteMint:             program.SOL,
		LpMint:                programtest.NewKey(),
		PoolBaseTokenAccount:  programtest.NewKey(),
		PoolQuoteTokenAccount: programtest.NewKey(),
		CoinCreator:           programtest.NewKey(),
	}
	key := programtest.NewKey()
	parsed, err := ParsePool(key, programtest.Encode(t, &layout, PoolLayoutSize))
	require.NoError(t, err)
	return NewPool(key, parsed)
}

func TestFeeTiers(t *testing.T) {
	require.Len(t, FeeTiers, 23)
	assert.Equal(t, uint64(12_500_000), FeeTiers[0].Total())
	assert.Equal(t, uint64(3_000_000), FeeTiers[len(FeeTiers)-1].Total())
	for i := 1; i < len(FeeTiers); i++ {
		assert.Greater(t, FeeTiers[i].MarketCapSol, FeeTiers[i-1].MarketCapSol)
		assert.LessOrEqual(t, FeeTiers[i].Total(), FeeTiers[i-1].Total())
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, FeeTiers[0], TierFor(0))
	assert.Equal(t, FeeTiers[0], TierFor(419_999_999_999))
	assert.Equal(t, FeeTiers[1], TierFor(420_000_000_000))
	assert.Equal(t, FeeTiers[22], TierFor(98_240_000_000_000))
	assert.Equal(t, FeeTiers[22], TierFor(^uint64(0)))
}

func TestMarketCap(t *testing.T) {
	_, ok := MarketCap(0, 10, CanonicalBaseSupply)
	assert.False(t, ok)
	mcap, ok := MarketCap(500_000_000_000_000, 210_000_000_000, CanonicalBaseSupply)
	assert.True(t, ok)
	assert.Equal(t, uint64(420_000_000_000), mcap)
}

func TestCanonicalPoolFee(t *testing.T) {
	pool := newTestPool(t, true)
	assert.True(t, pool.Canonical)

	fee, err := pool.TotalSwapFee(program.FixedClock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(12_500_000), fee)

	pool.SetState(State{BaseAmount: 500_000_000_000_000, QuoteAmount: 209_999_999_999})
	fee, _ = pool.TotalSwapFee(program.FixedClock{})
	assert.Equal(t, uint64(12_500_000), fee)

	pool.SetState(State{BaseAmount: 500_000_000_000_000, QuoteAmount: 210_000_000_000})
	fee, _ = pool.TotalSwapFee(program.FixedClock{})
	assert.Equal(t, uint64(12_000_000), fee)

	pool.SetState(State{BaseAmount: 1_000_000_000_000_000, QuoteAmount: 100_000_000_000_000})
	fee, _ = pool.TotalSwapFee(program.FixedClock{})
	assert.Equal(t, uint64(3_000_000), fee)
}

func TestNonCanonicalPoolFee(t *testing.T) {
	pool := newTestPool(t, false)
	assert.False(t, pool.Canonical)
	pool.SetState(State{BaseAmount: 1, QuoteAmount: 1_000_000_000_000})
	fee, err := pool.TotalSwapFee(program.FixedClock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000), fee)

	for _, direction := range []program.SwapDirection{program.AToB, program.BToA} {
		fees := pool.DirectionalFees(direction, program.FixedClock{})
		assert.True(t, fees.A.IsZero())
		assert.Equal(t, "0.003", fees.B.String())
	}
}

func TestPoolAccounts(t *testing.T) {
	pool := newTestPool(t, false)
	assert.Equal(t, program.PumpSwapFeeVault, pool.FeeVault)
	expected, _, err := solana.FindAssociatedTokenAddress(program.PumpSwapFeeVault, program.SOL)
	require.NoError(t, err)
	assert.Equal(t, expected, pool.FeeVaultTokenAccount)
	assert.Equal(t, program.PumpCreatorVaultAuthority(pool.CoinCreator), pool.CoinCreatorVaultAuthority)
}

func TestPoolRefresh(t *testing.T) {
	pool := newTestPool(t, false)
	network := programtest.NewNetwork()
	network.SetBalance(pool.VaultA(), 2_000)
	assert.ErrorIs(t, pool.Refresh(context.Background(), network), program.ErrAccountNotFound)
	assert.Equal(t, uint64(0), pool.TokenAAmount())

	network.SetBalance(pool.VaultB(), 500)
	require.NoError(t, pool.Refresh(context.Background(), network))
	assert.Equal(t, uint64(2_000), pool.TokenAAmount())
	assert.Equal(t, uint64(500), pool.TokenBAmount())
	assert.Equal(t, "4000000000", pool.PriceAOverB().String())
	assert.Equal(t, "250000000", pool.PriceBOverA().String())
}

func TestParsePoolSize(t *testing.T) {
	_, err := ParsePool(programtest.NewKey(), make([]byte, 299))
	assert.ErrorIs(t, err, program.ErrInvalidAccount)
}
