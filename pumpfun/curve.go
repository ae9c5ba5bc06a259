package pumpfun

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var _ program.Pool = (*BondingCurve)(nil)

const (
	// InitialVirtualTokenOffset is the virtual token reserve that never leaves the curve.
	InitialVirtualTokenOffset = uint64(279_900_000_000_000)
	// InitialVirtualSolReserves is the virtual sol a fresh curve starts with.
	InitialVirtualSolReserves = uint64(30_000_000_000)
	// SwapFee is 0.95% protocol plus 0.30% creator.
	SwapFee = uint64(12_500_000)
)

type State struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	Complete             bool
}

// BondingCurve is a Pumpfun launch curve trading the coin against SOL.
type BondingCurve struct {
	program.PoolInfo
	Creator      solana.PublicKey
	CreatorVault solana.PublicKey

	mu    sync.RWMutex
	state State
}

func ParseBondingCurve(key solana.PublicKey, data []byte) (BondingCurveLayout, error) {
	layout := BondingCurveLayout{}
	if size := binary.Size(&layout); len(data) < size {
		return layout, fmt.Errorf("bonding curve account(%s) data size is not valid, expected at least: %d, actual: %d: %w",
			key, size, len(data), program.ErrInvalidAccount)
	}
	if err := layout.unpack(data); err != nil {
		return layout, fmt.Errorf("bonding curve account(%s) data is not valid, err: %w", key, err)
	}
	return layout, nil
}

func curveState(layout BondingCurveLayout) State {
	return State{
		VirtualTokenReserves: layout.VirtualTokenReserves,
		VirtualSolReserves:   layout.VirtualSolReserves,
		Complete:             layout.Complete != 0,
	}
}

// NewBondingCurve builds the curve of mint. The curve account itself holds the sol side.
func NewBondingCurve(mint solana.PublicKey, layout BondingCurveLayout) *BondingCurve {
	curve := program.BondingCurveAddress(mint)
	return &BondingCurve{
		PoolInfo: program.PoolInfo{
			PoolAddress:  curve,
			TokenAMint:   mint,
			TokenBMint:   program.SOL,
			TokenAVault:  program.AssociatedTokenAddress(curve, mint),
			TokenBVault:  curve,
			PoolProtocol: program.ProtocolPumpBondingCurve,
		},
		Creator:      layout.Creator,
		CreatorVault: program.PumpCurveCreatorVault(layout.Creator),
		state:        curveState(layout),
	}
}

func (p *BondingCurve) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *BondingCurve) SetState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// Complete reports whether the curve has migrated and stopped trading.
func (p *BondingCurve) Complete() bool {
	return p.State().Complete
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

func (p *BondingCurve) TokenAAmount() uint64 {
	return saturatingSub(p.State().VirtualTokenReserves, InitialVirtualTokenOffset)
}

func (p *BondingCurve) TokenBAmount() uint64 {
	return saturatingSub(p.State().VirtualSolReserves, InitialVirtualSolReserves)
}

// PriceAOverB follows the virtual reserves the curve prices against.
func (p *BondingCurve) PriceAOverB() *big.Int {
	state := p.State()
	return program.Price(state.VirtualTokenReserves, state.VirtualSolReserves)
}

func (p *BondingCurve) PriceBOverA() *big.Int {
	state := p.State()
	return program.Price(state.VirtualSolReserves, state.VirtualTokenReserves)
}

func (p *BondingCurve) TotalSwapFee(program.Clock) (uint64, error) {
	return SwapFee, nil
}

func (p *BondingCurve) DirectionalFees(program.SwapDirection, program.Clock) program.Fees {
	return program.DoNotTrade
}

func (p *BondingCurve) Refresh(ctx context.Context, network program.Network) error {
	data, err := network.AccountData(ctx, p.PoolAddress)
	if err != nil {
		return fmt.Errorf("bonding curve(%s) fetch err: %w", p.PoolAddress, err)
	}
	layout, err := ParseBondingCurve(p.PoolAddress, data)
	if err != nil {
		return err
	}
	p.SetState(curveState(layout))
	return nil
}
