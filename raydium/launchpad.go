package raydium

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var _ program.Pool = (*LaunchpadPool)(nil)

// LaunchpadProtocolFee is the fixed protocol share on top of the platform fee.
const LaunchpadProtocolFee = uint64(2_500_000)

type LaunchpadState struct {
	RealBase  uint64
	RealQuote uint64
	Status    uint8
}

// LaunchpadPool is a bonding curve launch. Virtual reserves are fixed at creation.
type LaunchpadPool struct {
	program.PoolInfo
	PlatformConfig solana.PublicKey
	GlobalConfig   solana.PublicKey
	Creator        solana.PublicKey
	VirtualBase    uint64
	VirtualQuote   uint64

	platforms *FeeTable
	mu        sync.RWMutex
	state     LaunchpadState
}

func ParseLaunchpadPool(key solana.PublicKey, data []byte) (LaunchpadPoolLayout, error) {
	layout := LaunchpadPoolLayout{}
	if len(data) < LaunchpadPoolLayoutSize {
		return layout, fmt.Errorf("launchpad account(%s) data size is not valid, expected at least: %d, actual: %d: %w",
			key, LaunchpadPoolLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("launchpad account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func ParseLaunchpadPlatform(key solana.PublicKey, data []byte) (LaunchpadPlatformLayout, error) {
	layout := LaunchpadPlatformLayout{}
	if len(data) != LaunchpadPlatformLayoutSize {
		return layout, fmt.Errorf("launchpad platform account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, LaunchpadPlatformLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("launchpad platform account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func (l LaunchpadPlatformLayout) PlatformFee() uint64 {
	return l.FeeRate * 1000
}

func NewLaunchpadPool(key solana.PublicKey, layout LaunchpadPoolLayout, platforms *FeeTable) *LaunchpadPool {
	return &LaunchpadPool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.BaseMint,
			TokenBMint:   layout.QuoteMint,
			TokenAVault:  layout.BaseVault,
			TokenBVault:  layout.QuoteVault,
			PoolProtocol: program.ProtocolRaydiumLaunchpad,
		},
		PlatformConfig: layout.PlatformConfig,
		GlobalConfig:   layout.GlobalConfig,
		Creator:        layout.Creator,
		VirtualBase:    layout.VirtualBase,
		VirtualQuote:   layout.VirtualQuote,
		platforms:      platforms,
		state: LaunchpadState{
			RealBase:  layout.RealBase,
			RealQuote: layout.RealQuote,
			Status:    layout.Status,
		},
	}
}

func (p *LaunchpadPool) State() LaunchpadState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *LaunchpadPool) SetState(state LaunchpadState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *LaunchpadPool) reserves() (uint64, uint64) {
	state := p.State()
	base := uint64(0)
	if p.VirtualBase > state.RealBase {
		base = p.VirtualBase - state.RealBase
	}
	return base, p.VirtualQuote + state.RealQuote
}

func (p *LaunchpadPool) TokenAAmount() uint64 {
	a, _ := p.reserves()
	return a
}

func (p *LaunchpadPool) TokenBAmount() uint64 {
	_, b := p.reserves()
	return b
}

func (p *LaunchpadPool) PriceAOverB() *big.Int {
	a, b := p.reserves()
	return program.Price(a, b)
}

func (p *LaunchpadPool) PriceBOverA() *big.Int {
	a, b := p.reserves()
	return program.Price(b, a)
}

// EstimatedFee is the platform fee plus the protocol fee, capped at the full fee. It is not fit for slippage math.
func (p *LaunchpadPool) EstimatedFee() uint64 {
	fee := p.platforms.Fee(p.PlatformConfig) + LaunchpadProtocolFee
	if fee > program.FeeDenominator {
		return program.FeeDenominator
	}
	return fee
}

func (p *LaunchpadPool) TotalSwapFee(program.Clock) (uint64, error) {
	return 0, fmt.Errorf("launchpad(%s): %w", p.PoolAddress, program.ErrFeeUnsupported)
}

func (p *LaunchpadPool) DirectionalFees(program.SwapDirection, program.Clock) program.Fees {
	return program.DoNotTrade
}

// Refresh reloads the real reserves from the pool account.
func (p *LaunchpadPool) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("launchpad(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseLaunchpadPool(p.PoolAddress, data)
	if err != nil {
		return err
	}
	p.SetState(LaunchpadState{
		RealBase:  layout.RealBase,
		RealQuote: layout.RealQuote,
		Status:    layout.Status,
	})
	return nil
}
