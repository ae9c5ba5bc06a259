package raydium

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var _ program.Pool = (*CpmmPool)(nil)

// CpmmState holds the raw vault balances and the fee counters parked in them.
type CpmmState struct {
	VaultAAmount uint64
	VaultBAmount uint64
	ProtocolFeeA uint64
	ProtocolFeeB uint64
	FundFeeA     uint64
	FundFeeB     uint64
	CreatorFeeA  uint64
	CreatorFeeB  uint64
	Status       uint8
}

type CpmmPool struct {
	program.PoolInfo
	AmmConfig solana.PublicKey
	LpMint    solana.PublicKey

	fees  *FeeTable
	mu    sync.RWMutex
	state CpmmState
}

func ParseCpmmPool(key solana.PublicKey, data []byte) (CpmmPoolLayout, error) {
	layout := CpmmPoolLayout{}
	if len(data) != CpmmPoolLayoutSize {
		return layout, fmt.Errorf("cpmm account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, CpmmPoolLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("cpmm account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func ParseCpmmConfig(key solana.PublicKey, data []byte) (CpmmConfigLayout, error) {
	layout := CpmmConfigLayout{}
	if len(data) != CpmmConfigLayoutSize {
		return layout, fmt.Errorf("cpmm config account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, CpmmConfigLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("cpmm config account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

// ConfigFee converts a trade fee rate in hundredths of a bip to a fee numerator.
func (l CpmmConfigLayout) ConfigFee() uint64 {
	return l.TradeFeeRate * 1000
}

func cpmmCounters(layout CpmmPoolLayout, state CpmmState) CpmmState {
	state.ProtocolFeeA = layout.ProtocolFeesToken0
	state.ProtocolFeeB = layout.ProtocolFeesToken1
	state.FundFeeA = layout.FundFeesToken0
	state.FundFeeB = layout.FundFeesToken1
	state.CreatorFeeA = layout.CreatorFeesToken0
	state.CreatorFeeB = layout.CreatorFeesToken1
	state.Status = layout.Status
	return state
}

func NewCpmmPool(key solana.PublicKey, layout CpmmPoolLayout, fees *FeeTable) *CpmmPool {
	return &CpmmPool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.Token0Mint,
			TokenBMint:   layout.Token1Mint,
			TokenAVault:  layout.Token0Vault,
			TokenBVault:  layout.Token1Vault,
			PoolProtocol: program.ProtocolRaydiumCpmm,
		},
		AmmConfig: layout.AmmConfig,
		LpMint:    layout.LpMint,
		fees:      fees,
		state:     cpmmCounters(layout, CpmmState{}),
	}
}

func (p *CpmmPool) State() CpmmState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *CpmmPool) SetState(state CpmmState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func subFees(amount uint64, fees ...uint64) uint64 {
	for _, fee := range fees {
		if fee >= amount {
			return 0
		}
		amount -= fee
	}
	return amount
}

func (s CpmmState) reserves() (uint64, uint64) {
	return subFees(s.VaultAAmount, s.ProtocolFeeA, s.FundFeeA, s.CreatorFeeA),
		subFees(s.VaultBAmount, s.ProtocolFeeB, s.FundFeeB, s.CreatorFeeB)
}

func (p *CpmmPool) TokenAAmount() uint64 {
	a, _ := p.State().reserves()
	return a
}

func (p *CpmmPool) TokenBAmount() uint64 {
	_, b := p.State().reserves()
	return b
}

func (p *CpmmPool) PriceAOverB() *big.Int {
	a, b := p.State().reserves()
	return program.Price(a, b)
}

func (p *CpmmPool) PriceBOverA() *big.Int {
	a, b := p.State().reserves()
	return program.Price(b, a)
}

func (p *CpmmPool) TotalSwapFee(program.Clock) (uint64, error) {
	return p.fees.Fee(p.AmmConfig), nil
}

// DirectionalFees charges the input token.
func (p *CpmmPool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	return program.InputLeg(direction, fee)
}

func (p *CpmmPool) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("cpmm(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseCpmmPool(p.PoolAddress, data)
	if err != nil {
		return err
	}
	vaultA, err := network.TokenAccountBalance(ctx, p.TokenAVault)
	if err != nil {
		return fmt.Errorf("cpmm(%s) vault(%s) balance err: %w", p.PoolAddress, p.TokenAVault, err)
	}
	vaultB, err := network.TokenAccountBalance(ctx, p.TokenBVault)
	if err != nil {
		return fmt.Errorf("cpmm(%s) vault(%s) balance err: %w", p.PoolAddress, p.TokenBVault, err)
	}
	p.SetState(cpmmCounters(layout, CpmmState{VaultAAmount: vaultA, VaultBAmount: vaultB}))
	return nil
}
