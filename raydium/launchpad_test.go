package raydium

import (
	"context"
	"testing"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLaunchpadLayout() LaunchpadPoolLayout {
	return LaunchpadPoolLayout{
		VirtualBase:    1_073_025_605_596_382,
		VirtualQuote:   30_000_852_951,
		RealBase:       73_025_605_596_382,
		RealQuote:      0,
		PlatformConfig: programtest.NewKey(),
		BaseMint:       programtest.NewKey(),
		QuoteMint:      program.SOL,
		BaseVault:      programtest.NewKey(),
		QuoteVault:     programtest.NewKey(),
	}
}

func TestLaunchpadReserves(t *testing.T) {
	key := programtest.NewKey()
	layout := newTestLaunchpadLayout()
	parsed, err := ParseLaunchpadPool(key, programtest.Encode(t, &layout, LaunchpadPoolLayoutSize))
	require.NoError(t, err)
	pool := NewLaunchpadPool(key, parsed, NewPlatformFeeTable(nil))

	assert.Equal(t, uint64(1_000_000_000_000_000), pool.TokenAAmount())
	assert.Equal(t, uint64(30_000_852_951), pool.TokenBAmount())
	assert.Equal(t, "30000", pool.PriceBOverA().String())

	network := programtest.NewNetwork()
	layout.RealBase = 73_025_605_596_383
	layout.RealQuote = 1_000
	network.SetAccount(key, programtest.Encode(t, &layout, LaunchpadPoolLayoutSize))
	require.NoError(t, pool.Refresh(context.Background(), network))
	assert.Equal(t, uint64(999_999_999_999_999), pool.TokenAAmount())
	assert.Equal(t, uint64(30_000_853_951), pool.TokenBAmount())
}

func TestLaunchpadFees(t *testing.T) {
	layout := newTestLaunchpadLayout()
	platforms := NewPlatformFeeTable(nil)
	pool := NewLaunchpadPool(programtest.NewKey(), layout, platforms)

	_, err := pool.TotalSwapFee(program.FixedClock{})
	assert.ErrorIs(t, err, program.ErrFeeUnsupported)
	assert.Equal(t, program.DoNotTrade, pool.DirectionalFees(program.AToB, program.FixedClock{}))
	assert.Equal(t, program.FeeDenominator, pool.EstimatedFee())

	platforms.Set(layout.PlatformConfig, 10_000_000)
	assert.Equal(t, uint64(12_500_000), pool.EstimatedFee())
}

func TestParseLaunchpadPlatform(t *testing.T) {
	key := programtest.NewKey()
	layout := LaunchpadPlatformLayout{FeeRate: 10_000}
	parsed, err := ParseLaunchpadPlatform(key, programtest.Encode(t, &layout, LaunchpadPlatformLayoutSize))
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), parsed.PlatformFee())

	_, err = ParseLaunchpadPlatform(key, make([]byte, 120))
	assert.ErrorIs(t, err, program.ErrInvalidAccount)
}
