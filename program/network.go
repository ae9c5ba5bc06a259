package program

import (
	"context"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// Network is the read side of the chain the pools refresh from.
type Network interface {
	AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error)
	TokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)
	TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// Clock exposes the network time fee schedules decay against.
type Clock interface {
	Slot() uint64
	Now() time.Time
}

type FixedClock struct {
	CurrentSlot uint64
	Time        time.Time
}

func (c FixedClock) Slot() uint64 {
	return c.CurrentSlot
}

func (c FixedClock) Now() time.Time {
	return c.Time
}

// Uint128 is a little-endian u128 as laid out in account data.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

func NewUint128(v *big.Int) Uint128 {
	words := new(big.Int).Set(v)
	lo := new(big.Int).And(words, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := words.Rsh(words, 64).Uint64()
	return Uint128{Lo: lo, Hi: hi}
}

func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

func (u Uint128) Uint256() *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

func (u Uint128) Big() *big.Int {
	return u.Uint256().ToBig()
}
