package meteora

import (
	"context"
	"fmt"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

const LockedProfitDegradationDenominator = uint64(1_000_000_000_000)

type VaultState struct {
	Enabled                 bool
	TotalAmount             uint64
	LastUpdatedLockedProfit uint64
	LastReport              uint64
	LockedProfitDegradation uint64
	LpSupply                uint64
}

// Vault is the token deposit vault shared by every classic AMM pool trading the token.
type Vault struct {
	Address    solana.PublicKey
	TokenVault solana.PublicKey
	TokenMint  solana.PublicKey
	LpMint     solana.PublicKey

	mu    sync.RWMutex
	state VaultState
}

func NewVault(token solana.PublicKey) *Vault {
	address, tokenVault, lpMint := program.MeteoraVaultAddresses(token)
	return &Vault{
		Address:    address,
		TokenVault: tokenVault,
		TokenMint:  token,
		LpMint:     lpMint,
	}
}

func (v *Vault) State() VaultState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *Vault) SetState(state VaultState) {
	v.mu.Lock()
	v.state = state
	v.mu.Unlock()
}

func (v *Vault) LpSupply() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.LpSupply
}

// WithdrawableAmount is the total amount minus the locked profit still degrading at nowMs.
func (v *Vault) WithdrawableAmount(nowMs uint64) uint64 {
	v.mu.RLock()
	state := v.state
	v.mu.RUnlock()
	return withdrawableAmount(state, nowMs)
}

func withdrawableAmount(state VaultState, nowMs uint64) uint64 {
	duration := uint64(0)
	if nowMs > state.LastReport {
		duration = nowMs - state.LastReport
	}
	denominator := uint256.NewInt(LockedProfitDegradationDenominator)
	ratio := new(uint256.Int).Mul(uint256.NewInt(duration), uint256.NewInt(state.LockedProfitDegradation))
	if ratio.Gt(denominator) {
		return state.TotalAmount
	}
	locked := new(uint256.Int).Sub(denominator, ratio)
	locked.Mul(locked, uint256.NewInt(state.LastUpdatedLockedProfit))
	locked.Div(locked, denominator)
	if !locked.IsUint64() || locked.Uint64() > state.TotalAmount {
		return 0
	}
	return state.TotalAmount - locked.Uint64()
}

// Refresh reloads the vault account and its lp supply.
func (v *Vault) Refresh(ctx context.Context, network program.Network) error {
	state, err := v.fetch(ctx, network)
	if err != nil {
		return err
	}
	v.SetState(state)
	return nil
}

func (v *Vault) fetch(ctx context.Context, network program.Network) (VaultState, error) {
	data, err := network.AccountData(ctx, v.Address)
	if err != nil {
		return VaultState{}, fmt.Errorf("vault(%s) fetch err: %w", v.Address, err)
	}
	layout, err := ParseVault(v.Address, data)
	if err != nil {
		return VaultState{}, err
	}
	lpSupply, err := network.TokenSupply(ctx, v.LpMint)
	if err != nil {
		return VaultState{}, fmt.Errorf("vault(%s) lp mint(%s) supply err: %w", v.Address, v.LpMint, err)
	}
	return VaultState{
		Enabled:                 layout.Enabled != 0,
		TotalAmount:             layout.TotalAmount,
		LastUpdatedLockedProfit: layout.LockedProfitTracker.LastUpdatedLockedProfit,
		LastReport:              layout.LockedProfitTracker.LastReport,
		LockedProfitDegradation: layout.LockedProfitTracker.LockedProfitDegradation,
		LpSupply:                lpSupply,
	}, nil
}

func ParseVault(key solana.PublicKey, data []byte) (VaultLayout, error) {
	layout := VaultLayout{}
	if len(data) != VaultBigLayoutSize && len(data) != VaultSmallLayoutSize {
		return layout, fmt.Errorf("vault account(%s) data size is not valid, expected: %d or %d, actual: %d: %w",
			key, VaultBigLayoutSize, VaultSmallLayoutSize, len(data), program.ErrInvalidAccount)
	}
	if err := unpack(data, &layout); err != nil {
		return layout, fmt.Errorf("vault account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

// VaultCache hands out exactly one Vault per token.
type VaultCache struct {
	mu     sync.Mutex
	vaults map[solana.PublicKey]*Vault
}

func NewVaultCache() *VaultCache {
	return &VaultCache{
		vaults: make(map[solana.PublicKey]*Vault),
	}
}

// GetOrCreate returns the vault for token, deriving and registering it on first use.
func (c *VaultCache) GetOrCreate(token solana.PublicKey) *Vault {
	c.mu.Lock()
	defer c.mu.Unlock()
	vault, ok := c.vaults[token]
	if !ok {
		vault = NewVault(token)
		c.vaults[token] = vault
	}
	return vault
}

func (c *VaultCache) Get(token solana.PublicKey) (*Vault, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vault, ok := c.vaults[token]
	return vault, ok
}

func (c *VaultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vaults)
}

func (c *VaultCache) Vaults() []*Vault {
	c.mu.Lock()
	defer c.mu.Unlock()
	vaults := make([]*Vault, 0, len(c.vaults))
	for _, vault := range c.vaults {
		vaults = append(vaults, vault)
	}
	return vaults
}
