package program

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

var (
	ErrFeeUnsupported  = errors.New("total swap fee is not supported for this pool")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidAccount  = errors.New("invalid account")
)

type Protocol uint8

const (
	ProtocolMeteoraAmm Protocol = iota
	ProtocolMeteoraDammV2
	ProtocolMeteoraDbc
	ProtocolRaydiumAmmV4
	ProtocolRaydiumCpmm
	ProtocolRaydiumLaunchpad
	ProtocolPumpSwap
	ProtocolPumpBondingCurve
)

var protocolNames = map[Protocol]string{
	ProtocolMeteoraAmm:       "meteora_amm",
	ProtocolMeteoraDammV2:    "meteora_dammv2",
	ProtocolMeteoraDbc:       "meteora_dbc",
	ProtocolRaydiumAmmV4:     "raydium_ammv4",
	ProtocolRaydiumCpmm:      "raydium_cpmm",
	ProtocolRaydiumLaunchpad: "raydium_launchpad",
	ProtocolPumpSwap:         "pumpswap",
	ProtocolPumpBondingCurve: "pumpfun",
}

func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return fmt.Sprintf("protocol(%d)", uint8(p))
}

// ProgramID returns the on-chain program owning pools of this protocol.
func (p Protocol) ProgramID() solana.PublicKey {
	switch p {
	case ProtocolMeteoraAmm:
		return MeteoraAmm
	case ProtocolMeteoraDammV2:
		return MeteoraDammV2
	case ProtocolMeteoraDbc:
		return MeteoraDbc
	case ProtocolRaydiumAmmV4:
		return RaydiumAmmV4
	case ProtocolRaydiumCpmm:
		return RaydiumCpmm
	case ProtocolRaydiumLaunchpad:
		return RaydiumLaunchpad
	case ProtocolPumpSwap:
		return PumpSwap
	case ProtocolPumpBondingCurve:
		return PumpBondingCurve
	}
	return solana.PublicKey{}
}

func ParseProtocol(name string) (Protocol, error) {
	for p, n := range protocolNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol: %s", name)
}

type SwapDirection uint8

const (
	AToB SwapDirection = iota
	BToA
)

func (d SwapDirection) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// PoolInfo holds the addresses every pool carries. It never changes after construction.
type PoolInfo struct {
	PoolAddress  solana.PublicKey
	TokenAMint   solana.PublicKey
	TokenBMint   solana.PublicKey
	TokenAVault  solana.PublicKey
	TokenBVault  solana.PublicKey
	PoolProtocol Protocol
}

func (i PoolInfo) Address() solana.PublicKey {
	return i.PoolAddress
}

func (i PoolInfo) TokenA() solana.PublicKey {
	return i.TokenAMint
}

func (i PoolInfo) TokenB() solana.PublicKey {
	return i.TokenBMint
}

func (i PoolInfo) VaultA() solana.PublicKey {
	return i.TokenAVault
}

func (i PoolInfo) VaultB() solana.PublicKey {
	return i.TokenBVault
}

func (i PoolInfo) Protocol() Protocol {
	return i.PoolProtocol
}

func (i PoolInfo) Info() PoolInfo {
	return i
}

// Valid reports whether the pool may enter the registry.
func (i PoolInfo) Valid() bool {
	if i.TokenAMint == i.TokenBMint {
		return false
	}
	return i.TokenAMint != System && i.TokenBMint != System
}

// DirectionFor returns the swap direction that spends inputMint.
func (i PoolInfo) DirectionFor(inputMint solana.PublicKey) (SwapDirection, error) {
	switch inputMint {
	case i.TokenAMint:
		return AToB, nil
	case i.TokenBMint:
		return BToA, nil
	}
	return AToB, fmt.Errorf("token(%s) is not traded by pool(%s)", inputMint, i.PoolAddress)
}

// Fees is the fee fraction charged on the token A and token B legs of a swap.
type Fees struct {
	A decimal.Decimal
	B decimal.Decimal
}

// FeeFraction converts a 1e9 scaled numerator to a fraction.
func FeeFraction(numerator uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(numerator), -9)
}

// InputLeg charges the fee on the token being sold.
func InputLeg(direction SwapDirection, numerator uint64) Fees {
	if direction == AToB {
		return Fees{A: FeeFraction(numerator), B: decimal.Zero}
	}
	return Fees{A: decimal.Zero, B: FeeFraction(numerator)}
}

// OutputLeg charges the fee on the token being bought.
func OutputLeg(direction SwapDirection, numerator uint64) Fees {
	if direction == AToB {
		return Fees{A: decimal.Zero, B: FeeFraction(numerator)}
	}
	return Fees{A: FeeFraction(numerator), B: decimal.Zero}
}

// DoNotTrade is returned by pools that must not be used in fee weighted execution math.
var DoNotTrade = Fees{A: decimal.NewFromInt(1), B: decimal.NewFromInt(1)}

type Pool interface {
	Address() solana.PublicKey
	TokenA() solana.PublicKey
	TokenB() solana.PublicKey
	VaultA() solana.PublicKey
	VaultB() solana.PublicKey
	Protocol() Protocol
	Info() PoolInfo
	// TokenAAmount and TokenBAmount are the tradeable reserves in token units.
	TokenAAmount() uint64
	TokenBAmount() uint64
	// PriceAOverB and PriceBOverA are scaled by LamportsPerSol.
	PriceAOverB() *big.Int
	PriceBOverA() *big.Int
	// TotalSwapFee is a numerator over FeeDenominator.
	TotalSwapFee(clock Clock) (uint64, error)
	DirectionalFees(direction SwapDirection, clock Clock) Fees
	// Refresh overwrites the mutable pool state from the network. On error the previous state is kept.
	Refresh(ctx context.Context, network Network) error
}

// Price returns numerator * LamportsPerSol / denominator, or zero when denominator is zero.
func Price(numerator, denominator uint64) *big.Int {
	if denominator == 0 {
		return new(big.Int)
	}
	price := new(big.Int).SetUint64(numerator)
	price.Mul(price, new(big.Int).SetUint64(LamportsPerSol))
	return price.Quo(price, new(big.Int).SetUint64(denominator))
}

type MarketUpdate struct {
	Market      solana.PublicKey `json:"market"`
	Protocol    string           `json:"protocol"`
	TokenA      solana.PublicKey `json:"token_a"`
	TokenB      solana.PublicKey `json:"token_b"`
	TokenAUnits uint64           `json:"token_a_units"`
	TokenBUnits uint64           `json:"token_b_units"`
	PriceAB     *big.Int         `json:"price_a_over_b"`
	PriceBA     *big.Int         `json:"price_b_over_a"`
}

func Snapshot(pool Pool) *MarketUpdate {
	return &MarketUpdate{
		Market:      pool.Address(),
		Protocol:    pool.Protocol().String(),
		TokenA:      pool.TokenA(),
		TokenB:      pool.TokenB(),
		TokenAUnits: pool.TokenAAmount(),
		TokenBUnits: pool.TokenBAmount(),
		PriceAB:     pool.PriceAOverB(),
		PriceBA:     pool.PriceBOverA(),
	}
}
