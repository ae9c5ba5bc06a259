package meteora

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

var _ program.Pool = (*AmmPool)(nil)

type VaultSource interface {
	GetOrCreate(token solana.PublicKey) *Vault
}

type AmmPoolState struct {
	Enabled        bool
	TokenALpAmount uint64
	TokenBLpAmount uint64
	Fees           AmmPoolFeesLayout
}

// AmmPool is a classic Meteora pool whose reserves live in the shared token vaults.
type AmmPool struct {
	program.PoolInfo
	AVaultLp          solana.PublicKey
	BVaultLp          solana.PublicKey
	ProtocolTokenAFee solana.PublicKey
	ProtocolTokenBFee solana.PublicKey

	vaultA *Vault
	vaultB *Vault
	clock  program.Clock

	mu    sync.RWMutex
	state AmmPoolState
}

func ParseAmmPool(key solana.PublicKey, data []byte) (AmmPoolLayout, error) {
	layout := AmmPoolLayout{}
	if len(data) != AmmPoolLayoutSize {
		return layout, fmt.Errorf("meteora amm account(%s) data size is not valid, expected: %d, actual: %d: %w",
			key, AmmPoolLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := unpack(data, &layout); err != nil {
		return layout, fmt.Errorf("meteora amm account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func NewAmmPool(key solana.PublicKey, layout AmmPoolLayout, vaults VaultSource, clock program.Clock) *AmmPool {
	vaultA := vaults.GetOrCreate(layout.TokenAMint)
	vaultB := vaults.GetOrCreate(layout.TokenBMint)
	return &AmmPool{
		PoolInfo: program.PoolInfo{
			PoolAddress:  key,
			TokenAMint:   layout.TokenAMint,
			TokenBMint:   layout.TokenBMint,
			TokenAVault:  vaultA.Address,
			TokenBVault:  vaultB.Address,
			PoolProtocol: program.ProtocolMeteoraAmm,
		},
		AVaultLp:          layout.AVaultLp,
		BVaultLp:          layout.BVaultLp,
		ProtocolTokenAFee: layout.ProtocolTokenAFee,
		ProtocolTokenBFee: layout.ProtocolTokenBFee,
		vaultA:            vaultA,
		vaultB:            vaultB,
		clock:             clock,
		state: AmmPoolState{
			Enabled: layout.Enabled != 0,
			Fees:    layout.Fees,
		},
	}
}

func (p *AmmPool) Vaults() (*Vault, *Vault) {
	return p.vaultA, p.vaultB
}

func (p *AmmPool) State() AmmPoolState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *AmmPool) SetState(state AmmPoolState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// Enabled must be checked by callers before routing through the pool.
func (p *AmmPool) Enabled() bool {
	return p.State().Enabled
}

func (p *AmmPool) nowMs() uint64 {
	ms := p.clock.Now().UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

func vaultShare(lpAmount uint64, vault *Vault, nowMs uint64) uint64 {
	lpSupply := vault.LpSupply()
	if lpSupply == 0 {
		return 0
	}
	amount := new(uint256.Int).Mul(uint256.NewInt(lpAmount), uint256.NewInt(vault.WithdrawableAmount(nowMs)))
	amount.Div(amount, uint256.NewInt(lpSupply))
	if !amount.IsUint64() {
		return ^uint64(0)
	}
	return amount.Uint64()
}

func (p *AmmPool) TokenAAmount() uint64 {
	return vaultShare(p.State().TokenALpAmount, p.vaultA, p.nowMs())
}

func (p *AmmPool) TokenBAmount() uint64 {
	return vaultShare(p.State().TokenBLpAmount, p.vaultB, p.nowMs())
}

func (p *AmmPool) PriceAOverB() *big.Int {
	nowMs := p.nowMs()
	state := p.State()
	return program.Price(vaultShare(state.TokenALpAmount, p.vaultA, nowMs), vaultShare(state.TokenBLpAmount, p.vaultB, nowMs))
}

func (p *AmmPool) PriceBOverA() *big.Int {
	nowMs := p.nowMs()
	state := p.State()
	return program.Price(vaultShare(state.TokenBLpAmount, p.vaultB, nowMs), vaultShare(state.TokenALpAmount, p.vaultA, nowMs))
}

// feeTerm scales numerator/denominator to the lamport scale, a zero denominator counts as the full fee.
func feeTerm(numerator, denominator uint64) uint64 {
	if denominator == 0 {
		return program.FeeDenominator
	}
	return clampUint64(program.Price(numerator, denominator))
}

func (p *AmmPool) TotalSwapFee(program.Clock) (uint64, error) {
	fees := p.State().Fees
	return feeTerm(fees.TradeFeeNumerator, fees.TradeFeeDenominator) +
		feeTerm(fees.ProtocolTradeFeeNumerator, fees.ProtocolTradeFeeDenominator), nil
}

// DirectionalFees charges the input token.
func (p *AmmPool) DirectionalFees(direction program.SwapDirection, clock program.Clock) program.Fees {
	fee, _ := p.TotalSwapFee(clock)
	return program.InputLeg(direction, fee)
}

// Refresh fetches the pool, both vaults and both lp balances before touching any state,
// so a failed refresh leaves the pool and the shared vaults as they were.
func (p *AmmPool) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("meteora amm(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseAmmPool(p.PoolAddress, data)
	if err != nil {
		return err
	}
	vaultA, err := p.vaultA.fetch(ctx, network)
	if err != nil {
		return err
	}
	vaultB, err := p.vaultB.fetch(ctx, network)
	if err != nil {
		return err
	}
	lpA, err := network.TokenAccountBalance(ctx, p.AVaultLp)
	if err != nil {
		return fmt.Errorf("meteora amm(%s) vault lp(%s) balance err: %w", p.PoolAddress, p.AVaultLp, err)
	}
	lpB, err := network.TokenAccountBalance(ctx, p.BVaultLp)
	if err != nil {
		return fmt.Errorf("meteora amm(%s) vault lp(%s) balance err: %w", p.PoolAddress, p.BVaultLp, err)
	}
	p.vaultA.SetState(vaultA)
	p.vaultB.SetState(vaultB)
	p.SetState(AmmPoolState{
		Enabled:        layout.Enabled != 0,
		TokenALpAmount: lpA,
		TokenBLpAmount: lpB,
		Fees:           layout.Fees,
	})
	return nil
}
