package meteora

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var _ program.Pool = (*DammV2Pool)(nil)

type CollectFeeMode uint8

const (
	CollectFeeBothToken CollectFeeMode = iota
	CollectFeeOnlyB
)

// MaxFeeNumerator is the fee cap of a DAMMv2 pool version. Unknown versions mean the decoder is out of date.
func MaxFeeNumerator(version uint8) uint64 {
	switch version {
	case 0:
		return MaxFeeNumeratorV0
	case 1:
		return MaxFeeNumeratorV1
	}
	panic(fmt.Sprintf("invalid dammv2 pool version: %d", version))
}

type DammV2State struct {
	Liquidity       program.Uint128
	SqrtMinPrice    program.Uint128
	SqrtMaxPrice    program.Uint128
	SqrtPrice       program.Uint128
	BaseFee         BaseFee
	DynamicFee      DynamicFee
	ActivationPoint uint64
	ActivationType  ActivationType
	CollectFeeMode  CollectFeeMode
	PoolStatus      uint8
	Version         uint8
}

type DammV2Pool struct {
	program.PoolInfo
	Partner solana.PublicKey

	mu    sync.RWMutex
	state DammV2State
}

func ParseDammV2Pool(key solana.PublicKey, data []byte) (DammV2PoolLayout, error) {
	layout := DammV2PoolLayout{}
	if len(data) != DammV2PoolLayoutSize {
		return layout, fmt.Errorf("dammv2 account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, DammV2PoolLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := unpack(data, &layout); err != nil {
		return layout, fmt.Errorf("dammv2 account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func dammV2State(layout DammV2PoolLayout) DammV2State {
	return DammV2State{
		Liquidity:       layout.Liquidity,
		SqrtMinPrice:    layout.SqrtMinPrice,
		SqrtMaxPrice:    layout.SqrtMaxPrice,
		SqrtPrice:       layout.SqrtPrice,
		BaseFee:         layout.PoolFees.BaseFee.BaseFee(),
		DynamicFee:      layout.PoolFees.DynamicFee.DynamicFee(),
		ActivationPoint: layout.ActivationPoint,
		ActivationType:  ActivationType(layout.ActivationType),
		CollectFeeMode:  CollectFeeMode(layout.CollectFeeMode),
		PoolStatus:      layout.PoolStatus,
		Version:         layout.Version,
	}
}

func NewDammV2Pool(key solana.PublicKey, layout DammV2PoolLayout) *DammV2Pool {
	return &DammV2Pool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.TokenAMint,
			TokenBMint:   layout.TokenBMint,
			TokenAVault:  layout.TokenAVault,
			TokenBVault:  layout.TokenBVault,
			PoolProtocol: program.ProtocolMeteoraDammV2,
		},
		Partner: layout.Partner,
		state:   dammV2State(layout),
	}
}

func (p *DammV2Pool) State() DammV2State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *DammV2Pool) SetState(state DammV2State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func clamp256(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// DammV2Reserves derives both reserves from the concentrated liquidity position of the pool.
func DammV2Reserves(liquidity, sqrtPrice, sqrtMinPrice, sqrtMaxPrice program.Uint128) (uint64, uint64) {
	l := liquidity.Uint256()
	price := sqrtPrice.Uint256()
	lower := sqrtMinPrice.Uint256()
	upper := sqrtMaxPrice.Uint256()
	if l.IsZero() || price.IsZero() || price.Lt(lower) || price.Gt(upper) {
		return 0, 0
	}
	amountA := new(uint256.Int).Sub(upper, price)
	amountA.Mul(l, amountA)
	denominator := new(uint256.Int).Mul(price, upper)
	amountA.Div(amountA, denominator)

	amountB := new(uint256.Int).Sub(price, lower)
	amountB.Mul(l, amountB)
	amountB.Rsh(amountB, 128)
	return clamp256(amountA), clamp256(amountB)
}

func (p *DammV2Pool) reserves() (uint64, uint64) {
	state := p.State()
	return DammV2Reserves(state.Liquidity, state.SqrtPrice, state.SqrtMinPrice, state.SqrtMaxPrice)
}

func (p *DammV2Pool) TokenAAmount() uint64 {
	a, _ := p.reserves()
	return a
}

func (p *DammV2Pool) TokenBAmount() uint64 {
	_, b := p.reserves()
	return b
}

func (p *DammV2Pool) PriceAOverB() *big.Int {
	a, b := p.reserves()
	return program.Price(a, b)
}

func (p *DammV2Pool) PriceBOverA() *big.Int {
	a, b := p.reserves()
	return program.Price(b, a)
}

func (p *DammV2Pool) TotalSwapFee(clock program.Clock) (uint64, error) {
	state := p.State()
	current := CurrentPoint(state.ActivationType, clock)
	base := state.BaseFee.Numerator(current, state.ActivationPoint)
	return TotalFee(base, state.DynamicFee.Numerator(), MaxFeeNumerator(state.Version)), nil
}

// DirectionalFees charges the output token, or always token B when the pool collects fees in B only.
func (p *DammV2Pool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	if p.State().CollectFeeMode == CollectFeeBothToken {
		return program.OutputLeg(direction, fee)
	}
	return program.Fees{A: decimal.Zero, B: program.FeeFraction(fee)}
}

func (p *DammV2Pool) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("dammv2(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseDammV2Pool(p.PoolAddress, data)
	if err != nil {
		return err
	}
	p.SetState(dammV2State(layout))
	return nil
}
