package meteora

import (
	"context"
	"testing"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDbcConfig(t *testing.T) *DbcConfig {
	layout := DbcConfigLayout{
		QuoteMint:      program.SOL,
		CollectFeeMode: uint8(DbcCollectFeeQuoteToken),
		ActivationType: uint8(ActivationBySlot),
		SqrtStartPrice: q64Price(1, 4),
	}
	layout.PoolFees.BaseFee = DbcBaseFeeLayout{
		CliffFeeNumerator: 10_000_000,
		SecondFactor:      10,
		ThirdFactor:       1_000_000,
		FirstFactor:       5,
		BaseFeeMode:       uint8(FeeSchedulerLinear),
	}
	layout.Curve[0] = LiquidityDistributionLayout{SqrtPrice: q64Price(4, 1), Liquidity: scaledLiquidity(1_000)}
	key := programtest.NewKey()
	decoded, err := ParseDbcConfig(key, programtest.Encode(t, &layout, 1_048))
	require.NoError(t, err)
	config := NewDbcConfig(key, decoded)
	require.Len(t, config.Curve, 1)
	return config
}

func newTestDbcPool(t *testing.T, config *DbcConfig, sqrtPrice program.Uint128) *DbcPool {
	layout := DbcVirtualPoolLayout{
		BaseMint:        programtest.NewKey(),
		BaseVault:       programtest.NewKey(),
		QuoteVault:      programtest.NewKey(),
		Config:          config.Address,
		BaseReserve:     800_000,
		QuoteReserve:    2_000,
		SqrtPrice:       sqrtPrice,
		ActivationPoint: 0,
	}
	key := programtest.NewKey()
	decoded, err := ParseDbcPool(key, programtest.Encode(t, &layout, 512))
	require.NoError(t, err)
	return NewDbcPool(key, decoded, config)
}

func TestDbcPoolPrice(t *testing.T) {
	config := newTestDbcConfig(t)
	pool := newTestDbcPool(t, config, q64Price(1, 1))
	assert.Equal(t, program.SOL, pool.TokenB())
	assert.Equal(t, "1000000000", pool.PriceBOverA().String())
	assert.Equal(t, "1000000000", pool.PriceAOverB().String())

	pool = newTestDbcPool(t, config, q64Price(2, 1))
	assert.Equal(t, "4000000000", pool.PriceBOverA().String())
	assert.Equal(t, "250000000", pool.PriceAOverB().String())

	pool = newTestDbcPool(t, config, program.Uint128{})
	assert.Equal(t, 0, pool.PriceAOverB().Sign())
	assert.Equal(t, 0, pool.PriceBOverA().Sign())
}

func TestDbcPoolReserves(t *testing.T) {
	config := newTestDbcConfig(t)
	pool := newTestDbcPool(t, config, q64Price(1, 1))
	assert.Equal(t, uint64(800_000), pool.TokenAAmount())
	assert.Equal(t, uint64(2_000), pool.TokenBAmount())

	// past the last curve point
	pool = newTestDbcPool(t, config, q64Price(8, 1))
	assert.Zero(t, pool.TokenAAmount())
	assert.Zero(t, pool.TokenBAmount())

	config.Curve[0].Liquidity = program.Uint128{}
	pool = newTestDbcPool(t, config, q64Price(1, 1))
	assert.Zero(t, pool.TokenAAmount())
	assert.Zero(t, pool.TokenBAmount())
}

func TestDbcPoolFees(t *testing.T) {
	config := newTestDbcConfig(t)
	pool := newTestDbcPool(t, config, q64Price(1, 1))

	fee, err := pool.TotalSwapFee(program.FixedClock{CurrentSlot: 25})
	require.NoError(t, err)
	assert.Equal(t, uint64(8_000_000), fee)

	fees := pool.DirectionalFees(program.AToB, program.FixedClock{CurrentSlot: 25})
	assert.True(t, fees.A.IsZero())
	assert.True(t, program.FeeFraction(8_000_000).Equal(fees.B))
	fees = pool.DirectionalFees(program.BToA, program.FixedClock{CurrentSlot: 25})
	assert.True(t, fees.A.IsZero())

	config.CollectFeeMode = DbcCollectFeeOutputToken
	fees = pool.DirectionalFees(program.BToA, program.FixedClock{CurrentSlot: 25})
	assert.True(t, program.FeeFraction(8_000_000).Equal(fees.A))
	assert.True(t, fees.B.IsZero())

	config.BaseFee.CliffFeeNumerator = 995_000_000
	config.BaseFee.PeriodFrequency = 0
	fee, _ = pool.TotalSwapFee(program.FixedClock{})
	assert.Equal(t, MaxFeeNumeratorV1, fee)
}

func TestDbcPoolDynamicFee(t *testing.T) {
	config := newTestDbcConfig(t)
	config.DynamicFee = DynamicFee{Initialized: true, BinStep: 10, VariableFeeControl: 1_000}
	pool := newTestDbcPool(t, config, q64Price(1, 1))
	state := pool.State()
	state.VolatilityAccumulator = program.Uint128{Lo: 1_000}
	pool.SetState(state)

	fee, _ := pool.TotalSwapFee(program.FixedClock{CurrentSlot: 1_000})
	assert.Equal(t, uint64(5_000_000+1), fee)
}

func TestDbcPoolRefresh(t *testing.T) {
	config := newTestDbcConfig(t)
	pool := newTestDbcPool(t, config, q64Price(1, 1))
	network := programtest.NewNetwork()
	network.Accounts[pool.Address()] = programtest.Encode(t, &DbcVirtualPoolLayout{
		BaseReserve:  700_000,
		QuoteReserve: 3_000,
		SqrtPrice:    q64Price(1, 1),
	}, 512)
	require.NoError(t, pool.Refresh(context.Background(), network))
	assert.Equal(t, uint64(700_000), pool.TokenAAmount())
	assert.Equal(t, uint64(3_000), pool.TokenBAmount())
}
