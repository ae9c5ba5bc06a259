package raydium

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var _ program.Pool = (*AmmV4Pool)(nil)

type AmmV4State struct {
	BaseAmount         uint64
	QuoteAmount        uint64
	SwapFeeNumerator   uint64
	SwapFeeDenominator uint64
}

// AmmV4Pool is a legacy Raydium pool. Its reserves are the raw vault balances.
type AmmV4Pool struct {
	program.PoolInfo
	LpMint   solana.PublicKey
	MarketId solana.PublicKey

	mu    sync.RWMutex
	state AmmV4State
}

func ParseAmmV4(key solana.PublicKey, data []byte) (AmmV4Layout, error) {
	layout := AmmV4Layout{}
	if len(data) != AmmV4LayoutSize {
		return layout, fmt.Errorf("raydium account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, AmmV4LayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("raydium account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func NewAmmV4Pool(key solana.PublicKey, layout AmmV4Layout) *AmmV4Pool {
	return &AmmV4Pool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.BaseMint,
			TokenBMint:   layout.QuoteMint,
			TokenAVault:  layout.BaseVault,
			TokenBVault:  layout.QuoteVault,
			PoolProtocol: program.ProtocolRaydiumAmmV4,
		},
		LpMint:   layout.LpMint,
		MarketId: layout.MarketId,
		state: AmmV4State{
			SwapFeeNumerator:   layout.Fees.SwapFeeNumerator,
			SwapFeeDenominator: layout.Fees.SwapFeeDenominator,
		},
	}
}

func (p *AmmV4Pool) State() AmmV4State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *AmmV4Pool) SetState(state AmmV4State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *AmmV4Pool) TokenAAmount() uint64 {
	return p.State().BaseAmount
}

func (p *AmmV4Pool) TokenBAmount() uint64 {
	return p.State().QuoteAmount
}

func (p *AmmV4Pool) PriceAOverB() *big.Int {
	state := p.State()
	return program.Price(state.BaseAmount, state.QuoteAmount)
}

func (p *AmmV4Pool) PriceBOverA() *big.Int {
	state := p.State()
	return program.Price(state.QuoteAmount, state.BaseAmount)
}

func (p *AmmV4Pool) TotalSwapFee(program.Clock) (uint64, error) {
	state := p.State()
	return feeNumerator(state.SwapFeeNumerator, state.SwapFeeDenominator), nil
}

// DirectionalFees charges the input token.
func (p *AmmV4Pool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	return program.InputLeg(direction, fee)
}

// Refresh reads both vault balances. The fee fraction is fixed at construction.
func (p *AmmV4Pool) Refresh(ctx context.Context, network program.Network) error {
	base, err := network.TokenAccountBalance(ctx, p.TokenAVault)
	if err != nil {
		return fmt.Errorf("raydium(%s) base vault(%s) balance err: %w", p.PoolAddress, p.TokenAVault, err)
	}
	quote, err := network.TokenAccountBalance(ctx, p.TokenBVault)
	if err != nil {
		return fmt.Errorf("raydium(%s) quote vault(%s) balance err: %w", p.PoolAddress, p.TokenBVault, err)
	}
	p.mu.Lock()
	p.state.BaseAmount = base
	p.state.QuoteAmount = quote
	p.mu.Unlock()
	return nil
}

// feeNumerator scales numerator/denominator to FeeDenominator. A zero denominator is a full fee.
func feeNumerator(numerator, denominator uint64) uint64 {
	if denominator == 0 {
		return program.FeeDenominator
	}
	fee := program.Price(numerator, denominator)
	if !fee.IsUint64() {
		return program.FeeDenominator
	}
	return fee.Uint64()
}
