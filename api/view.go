package api

import (
	"math/big"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/registry"
	"github.com/shopspring/decimal"
)

type FeesView struct {
	A decimal.Decimal `json:"a"`
	B decimal.Decimal `json:"b"`
}

type PoolView struct {
	Address      string              `json:"address"`
	Protocol     string              `json:"protocol"`
	TokenA       string              `json:"token_a"`
	TokenB       string              `json:"token_b"`
	VaultA       string              `json:"vault_a"`
	VaultB       string              `json:"vault_b"`
	TokenAAmount uint64              `json:"token_a_amount"`
	TokenBAmount uint64              `json:"token_b_amount"`
	PriceAOverB  decimal.Decimal     `json:"price_a_over_b"`
	PriceBOverA  decimal.Decimal     `json:"price_b_over_a"`
	TotalSwapFee *decimal.Decimal    `json:"total_swap_fee,omitempty"`
	FeeError     string              `json:"fee_error,omitempty"`
	Fees         map[string]FeesView `json:"fees"`
}

func price(p *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(p, -9)
}

func NewPoolView(pool program.Pool, clock program.Clock) *PoolView {
	view := &PoolView{
		Address:      pool.Address().String(),
		Protocol:     pool.Protocol().String(),
		TokenA:       pool.TokenA().String(),
		TokenB:       pool.TokenB().String(),
		VaultA:       pool.VaultA().String(),
		VaultB:       pool.VaultB().String(),
		TokenAAmount: pool.TokenAAmount(),
		TokenBAmount: pool.TokenBAmount(),
		PriceAOverB:  price(pool.PriceAOverB()),
		PriceBOverA:  price(pool.PriceBOverA()),
		Fees:         make(map[string]FeesView, 2),
	}
	if fee, err := pool.TotalSwapFee(clock); err != nil {
		view.FeeError = err.Error()
	} else {
		fraction := program.FeeFraction(fee)
		view.TotalSwapFee = &fraction
	}
	for _, direction := range []program.SwapDirection{program.AToB, program.BToA} {
		fees := pool.DirectionalFees(direction, clock)
		view.Fees[direction.String()] = FeesView{A: fees.A, B: fees.B}
	}
	return view
}

type StateView struct {
	Slot      uint64         `json:"slot"`
	Blockhash string         `json:"blockhash"`
	Updated   time.Time      `json:"updated"`
	Stats     registry.Stats `json:"stats"`
}
