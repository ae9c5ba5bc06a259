package meteora

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

var _ program.Pool = (*DbcPool)(nil)

type DbcCollectFeeMode uint8

const (
	DbcCollectFeeQuoteToken DbcCollectFeeMode = iota
	DbcCollectFeeOutputToken
)

// DbcConfig is the launch configuration shared by every virtual pool created from it.
type DbcConfig struct {
	Address        solana.PublicKey
	QuoteMint      solana.PublicKey
	BaseFee        BaseFee
	DynamicFee     DynamicFee
	CollectFeeMode DbcCollectFeeMode
	ActivationType ActivationType
	SqrtStartPrice program.Uint128
	Curve          []LiquidityDistributionLayout
}

func ParseDbcConfig(key solana.PublicKey, data []byte) (DbcConfigLayout, error) {
	layout := DbcConfigLayout{}
	if size := binary.Size(&layout); len(data) < size {
		return layout, fmt.Errorf("dbc config account(%s) data size is not valid, expected at least: %d, actual: %d: %w",
			key, size, len(data), program.ErrInvalidAccount)
	}
	if err := unpack(data, &layout); err != nil {
		return layout, fmt.Errorf("dbc config account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func NewDbcConfig(key solana.PublicKey, layout DbcConfigLayout) *DbcConfig {
	curve := make([]LiquidityDistributionLayout, 0, len(layout.Curve))
	for _, point := range layout.Curve {
		if point.SqrtPrice.IsZero() {
			break
		}
		curve = append(curve, point)
	}
	dynamic := layout.PoolFees.DynamicFee
	return &DbcConfig{
		Address:   key,
		QuoteMint: layout.QuoteMint,
		BaseFee:   layout.PoolFees.BaseFee.BaseFee(),
		DynamicFee: DynamicFee{
			Initialized:        dynamic.Initialized != 0,
			BinStep:            dynamic.BinStep,
			VariableFeeControl: dynamic.VariableFeeControl,
		},
		CollectFeeMode: DbcCollectFeeMode(layout.CollectFeeMode),
		ActivationType: ActivationType(layout.ActivationType),
		SqrtStartPrice: layout.SqrtStartPrice,
		Curve:          curve,
	}
}

// Liquidity returns the liquidity of the curve segment containing sqrtPrice, zero past the last segment.
func (c *DbcConfig) Liquidity(sqrtPrice program.Uint128) program.Uint128 {
	price := sqrtPrice.Uint256()
	for _, point := range c.Curve {
		if price.Lt(point.SqrtPrice.Uint256()) {
			return point.Liquidity
		}
	}
	return program.Uint128{}
}

type DbcState struct {
	BaseReserve           uint64
	QuoteReserve          uint64
	SqrtPrice             program.Uint128
	VolatilityAccumulator program.Uint128
	ActivationPoint       uint64
	IsMigrated            bool
}

type DbcPool struct {
	program.PoolInfo
	Config  *DbcConfig
	Creator solana.PublicKey

	mu    sync.RWMutex
	state DbcState
}

func ParseDbcPool(key solana.PublicKey, data []byte) (DbcVirtualPoolLayout, error) {
	layout := DbcVirtualPoolLayout{}
	if size := binary.Size(&layout); len(data) < size {
		return layout, fmt.Errorf("dbc pool account(%s) data size is not valid, expected at least: %d, actual: %d: %w",
			key, size, len(data), program.ErrInvalidAccount)
	}
	if err := unpack(data, &layout); err != nil {
		return layout, fmt.Errorf("dbc pool account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func dbcState(layout DbcVirtualPoolLayout) DbcState {
	return DbcState{
		BaseReserve:           layout.BaseReserve,
		QuoteReserve:          layout.QuoteReserve,
		SqrtPrice:             layout.SqrtPrice,
		VolatilityAccumulator: layout.VolatilityTracker.VolatilityAccumulator,
		ActivationPoint:       layout.ActivationPoint,
		IsMigrated:            layout.IsMigrated != 0,
	}
}

func NewDbcPool(key solana.PublicKey, layout DbcVirtualPoolLayout, config *DbcConfig) *DbcPool {
	return &DbcPool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.BaseMint,
			TokenBMint:   config.QuoteMint,
			TokenAVault:  layout.BaseVault,
			TokenBVault:  layout.QuoteVault,
			PoolProtocol: program.ProtocolMeteoraDbc,
		},
		Config:  config,
		Creator: layout.Creator,
		state:   dbcState(layout),
	}
}

func (p *DbcPool) State() DbcState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *DbcPool) SetState(state DbcState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *DbcPool) reserves() (uint64, uint64) {
	state := p.State()
	if p.Config.Liquidity(state.SqrtPrice).IsZero() {
		return 0, 0
	}
	return state.BaseReserve, state.QuoteReserve
}

func (p *DbcPool) TokenAAmount() uint64 {
	a, _ := p.reserves()
	return a
}

func (p *DbcPool) TokenBAmount() uint64 {
	_, b := p.reserves()
	return b
}

var q128 = new(big.Int).Lsh(big.NewInt(1), 128)

// PriceBOverA is sqrt_price^2 scaled to lamports; the curve quotes B per A.
func (p *DbcPool) PriceBOverA() *big.Int {
	sqrt := p.State().SqrtPrice.Big()
	price := new(big.Int).Mul(sqrt, sqrt)
	price.Mul(price, new(big.Int).SetUint64(program.LamportsPerSol))
	return price.Rsh(price, 128)
}

func (p *DbcPool) PriceAOverB() *big.Int {
	sqrt := p.State().SqrtPrice.Big()
	if sqrt.Sign() == 0 {
		return new(big.Int)
	}
	square := new(big.Int).Mul(sqrt, sqrt)
	price := new(big.Int).Mul(q128, new(big.Int).SetUint64(program.LamportsPerSol))
	return price.Quo(price, square)
}

func (p *DbcPool) TotalSwapFee(clock program.Clock) (uint64, error) {
	state := p.State()
	current := CurrentPoint(p.Config.ActivationType, clock)
	base := p.Config.BaseFee.Numerator(current, state.ActivationPoint)
	dynamic := p.Config.DynamicFee
	dynamic.VolatilityAccumulator = state.VolatilityAccumulator
	return TotalFee(base, dynamic.Numerator(), MaxFeeNumeratorV1), nil
}

// DirectionalFees charges the quote token, or the output token when the config says so.
func (p *DbcPool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	if p.Config.CollectFeeMode == DbcCollectFeeOutputToken {
		return program.OutputLeg(direction, fee)
	}
	return program.Fees{A: decimal.Zero, B: program.FeeFraction(fee)}
}

func (p *DbcPool) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("dbc(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseDbcPool(p.PoolAddress, data)
	if err != nil {
		return err
	}
	p.SetState(dbcState(layout))
	return nil
}
