package program

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "2500000000", Price(5, 2).String())
	assert.Equal(t, "0", Price(5, 0).String())
	assert.Equal(t, "18446744073709551615000000000", Price(^uint64(0), 1).String())
}

func TestFeeLegs(t *testing.T) {
	assert.Equal(t, "0.0025", FeeFraction(2_500_000).String())

	fees := InputLeg(AToB, 2_500_000)
	assert.Equal(t, "0.0025", fees.A.String())
	assert.True(t, fees.B.IsZero())
	fees = InputLeg(BToA, 2_500_000)
	assert.True(t, fees.A.IsZero())
	assert.Equal(t, "0.0025", fees.B.String())

	fees = OutputLeg(AToB, 1_000_000)
	assert.True(t, fees.A.IsZero())
	assert.Equal(t, "0.001", fees.B.String())
	fees = OutputLeg(BToA, 1_000_000)
	assert.Equal(t, "0.001", fees.A.String())

	assert.Equal(t, "1", DoNotTrade.A.String())
	assert.Equal(t, "1", DoNotTrade.B.String())
}

func TestPoolInfoValid(t *testing.T) {
	token := newKey()
	assert.True(t, PoolInfo{TokenAMint: token, TokenBMint: SOL}.Valid())
	assert.False(t, PoolInfo{TokenAMint: token, TokenBMint: token}.Valid())
	assert.False(t, PoolInfo{TokenAMint: System, TokenBMint: token}.Valid())
	assert.False(t, PoolInfo{TokenAMint: token, TokenBMint: System}.Valid())
}

func TestDirectionFor(t *testing.T) {
	info := PoolInfo{PoolAddress: newKey(), TokenAMint: newKey(), TokenBMint: SOL}
	direction, err := info.DirectionFor(info.TokenAMint)
	require.NoError(t, err)
	assert.Equal(t, AToB, direction)
	direction, err = info.DirectionFor(SOL)
	require.NoError(t, err)
	assert.Equal(t, BToA, direction)
	assert.Equal(t, "b_to_a", direction.String())
	_, err = info.DirectionFor(USDC)
	require.Error(t, err)
}

func TestProtocolNames(t *testing.T) {
	for protocol := ProtocolMeteoraAmm; protocol <= ProtocolPumpBondingCurve; protocol++ {
		parsed, err := ParseProtocol(protocol.String())
		require.NoError(t, err)
		assert.Equal(t, protocol, parsed)
		assert.False(t, protocol.ProgramID().IsZero())
	}
	_, err := ParseProtocol("serum")
	require.Error(t, err)
	assert.Equal(t, "protocol(42)", Protocol(42).String())
}

func TestUint128(t *testing.T) {
	v, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)
	u := NewUint128(v)
	assert.Equal(t, ^uint64(0), u.Lo)
	assert.Equal(t, ^uint64(0), u.Hi)
	assert.Equal(t, v.String(), u.Big().String())
	assert.True(t, Uint128{}.IsZero())
	assert.Equal(t, "18446744073709551616", Uint128{Hi: 1}.Uint256().Dec())
}

func TestAccountDiscriminator(t *testing.T) {
	assert.Equal(t, [8]byte{213, 224, 5, 209, 98, 69, 119, 92}, DbcVirtualPoolDiscriminator)
	assert.Equal(t, [8]byte{247, 237, 227, 245, 215, 195, 222, 70}, LaunchpadPoolDiscriminator)
}

func TestDerivedAddresses(t *testing.T) {
	mint := newKey()
	curve := BondingCurveAddress(mint)
	assert.Equal(t, curve, BondingCurveAddress(mint))
	assert.False(t, curve.IsOnCurve())
	assert.NotEqual(t, curve, PumpPoolAuthority(mint))

	vault, tokenVault, lpMint := MeteoraVaultAddresses(mint)
	assert.NotEqual(t, vault, tokenVault)
	assert.NotEqual(t, vault, lpMint)
	assert.False(t, MetadataAddress(mint).IsOnCurve())
	assert.False(t, AssociatedTokenAddress(curve, mint).IsOnCurve())
}

type snapshotPool struct {
	Pool
	info PoolInfo
}

func (p snapshotPool) Address() solana.PublicKey { return p.info.Address() }
func (p snapshotPool) TokenA() solana.PublicKey { return p.info.TokenA() }
func (p snapshotPool) TokenB() solana.PublicKey { return p.info.TokenB() }
func (p snapshotPool) Protocol() Protocol { return p.info.Protocol() }
func (p snapshotPool) TokenAAmount() uint64 { return 10 }
func (p snapshotPool) TokenBAmount() uint64 { return 40 }
func (p snapshotPool) PriceAOverB() *big.Int { return Price(10, 40) }
func (p snapshotPool) PriceBOverA() *big.Int { return Price(40, 10) }

func TestSnapshot(t *testing.T) {
	pool := snapshotPool{info: PoolInfo{PoolAddress: newKey(), TokenAMint: newKey(), TokenBMint: SOL, PoolProtocol: ProtocolPumpSwap}}
	update := Snapshot(pool)
	assert.Equal(t, pool.info.PoolAddress, update.Market)
	assert.Equal(t, "pumpswap", update.Protocol)
	assert.Equal(t, uint64(40), update.TokenBUnits)
	assert.Equal(t, "250000000", update.PriceAB.String())
	assert.Equal(t, "4000000000", update.PriceBA.String())
}
