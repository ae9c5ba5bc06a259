package store

import (
	"math/big"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/shopspring/decimal"
)

// PriceSnapshot is one pool price observation. Rows are written for analysis only and never read back.
type PriceSnapshot struct {
	Id          uint64          `gorm:"primaryKey;autoIncrement;type:bigint(20) unsigned"`
	Slot        uint64          `gorm:"type:bigint(20) unsigned;not null;index"`
	Market      string          `gorm:"type:varchar(48);not null;index"`
	Protocol    string          `gorm:"type:varchar(24);not null"`
	TokenA      string          `gorm:"type:varchar(48);not null"`
	TokenB      string          `gorm:"type:varchar(48);not null"`
	TokenAUnits uint64          `gorm:"type:bigint(20) unsigned;not null"`
	TokenBUnits uint64          `gorm:"type:bigint(20) unsigned;not null"`
	PriceAB     decimal.Decimal `gorm:"type:decimal(65,9);not null"`
	PriceBA     decimal.Decimal `gorm:"type:decimal(65,9);not null"`
	CreatedAt   time.Time
}

// lamportPrice undoes the LamportsPerSol scaling of a pool price.
func lamportPrice(price *big.Int) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(price, -9)
}

func NewPriceSnapshot(slot uint64, update *program.MarketUpdate) *PriceSnapshot {
	return &PriceSnapshot{
		Slot:        slot,
		Market:      update.Market.String(),
		Protocol:    update.Protocol,
		TokenA:      update.TokenA.String(),
		TokenB:      update.TokenB.String(),
		TokenAUnits: update.TokenAUnits,
		TokenBUnits: update.TokenBUnits,
		PriceAB:     lamportPrice(update.PriceAB),
		PriceBA:     lamportPrice(update.PriceBA),
	}
}
