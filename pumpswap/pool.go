package pumpswap

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

var _ program.Pool = (*Pool)(nil)

type State struct {
	BaseAmount  uint64
	QuoteAmount uint64
}

// Pool is a Pumpswap constant product pool. Fees are always taken in the quote token.
type Pool struct {
	program.PoolInfo
	Creator     solana.PublicKey
	CoinCreator solana.PublicKey
	LpMint      solana.PublicKey
	// Canonical pools were migrated from the bonding curve and pay the market cap tiered fee.
	Canonical                      bool
	FeeVault                       solana.PublicKey
	FeeVaultTokenAccount           solana.PublicKey
	CoinCreatorVaultAuthority      solana.PublicKey
	CoinCreatorVaultAuthorityToken solana.PublicKey

	mu    sync.RWMutex
	state State
}

func ParsePool(key solana.PublicKey, data []byte) (PoolLayout, error) {
	layout := PoolLayout{}
	if len(data) != PoolLayoutSize {
		return layout, fmt.Errorf("pumpswap account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, PoolLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("pumpswap account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func NewPool(key solana.PublicKey, layout PoolLayout) *Pool {
	creatorVault := program.PumpCreatorVaultAuthority(layout.CoinCreator)
	return &Pool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.BaseMint,
			TokenBMint:   layout.QuoteMint,
			TokenAVault:  layout.PoolBaseTokenAccount,
			TokenBVault:  layout.PoolQuoteTokenAccount,
			PoolProtocol: program.ProtocolPumpSwap,
		},
		Creator:                        layout.Creator,
		CoinCreator:                    layout.CoinCreator,
		LpMint:                         layout.LpMint,
		Canonical:                      layout.Creator == program.PumpPoolAuthority(layout.BaseMint),
		FeeVault:                       program.PumpSwapFeeVault,
		FeeVaultTokenAccount:           program.AssociatedTokenAddress(program.PumpSwapFeeVault, layout.QuoteMint),
		CoinCreatorVaultAuthority:      creatorVault,
		CoinCreatorVaultAuthorityToken: program.AssociatedTokenAddress(creatorVault, layout.QuoteMint),
	}
}

func (p *Pool) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pool) SetState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *Pool) TokenAAmount() uint64 {
	return p.State().BaseAmount
}

func (p *Pool) TokenBAmount() uint64 {
	return p.State().QuoteAmount
}

func (p *Pool) PriceAOverB() *big.Int {
	state := p.State()
	return program.Price(state.BaseAmount, state.QuoteAmount)
}

func (p *Pool) PriceBOverA() *big.Int {
	state := p.State()
	return program.Price(state.QuoteAmount, state.BaseAmount)
}

// FeeTier returns the fee split the pool currently pays.
func (p *Pool) FeeTier() FeeTier {
	if !p.Canonical {
		return NonCanonicalFee
	}
	state := p.State()
	mcap, ok := MarketCap(state.BaseAmount, state.QuoteAmount, CanonicalBaseSupply)
	if !ok {
		return FeeTiers[0]
	}
	return TierFor(mcap)
}

func (p *Pool) TotalSwapFee(program.Clock) (uint64, error) {
	return p.FeeTier().Total(), nil
}

// DirectionalFees charges the quote token in both directions.
func (p *Pool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	return program.Fees{A: decimal.Zero, B: program.FeeFraction(fee)}
}

func (p *Pool) Refresh(ctx context.Context, network program.Network) error {
	base, err := network.TokenAccountBalance(ctx, p.TokenAVault)
	if err != nil {
		return fmt.Errorf("pumpswap(%s) base vault(%s) balance err: %w", p.PoolAddress, p.TokenAVault, err)
	}
	quote, err := network.TokenAccountBalance(ctx, p.TokenBVault)
	if err != nil {
		return fmt.Errorf("pumpswap(%s) quote vault(%s) balance err: %w", p.PoolAddress, p.TokenBVault, err)
	}
	p.SetState(State{BaseAmount: base, QuoteAmount: quote})
	return nil
}
