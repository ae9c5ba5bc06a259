package meteora

import (
	"bytes"
	"encoding/binary"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var (
	AmmPoolLayoutSize    = 952
	DammV2PoolLayoutSize = 1112
	VaultBigLayoutSize   = 10240
	VaultSmallLayoutSize = 1232
)

func unpack(data []byte, layout interface{}) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, layout)
}

type AmmPoolFeesLayout struct {
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	ProtocolTradeFeeNumerator   uint64
	ProtocolTradeFeeDenominator uint64
}

// AmmPoolLayout is the prefix of a classic AMM pool account; the curve section is not needed.
type AmmPoolLayout struct {
	Discriminator     [8]byte
	LpMint            solana.PublicKey
	TokenAMint        solana.PublicKey
	TokenBMint        solana.PublicKey
	AVault            solana.PublicKey
	BVault            solana.PublicKey
	AVaultLp          solana.PublicKey
	BVaultLp          solana.PublicKey
	AVaultLpBump      uint8
	Enabled           uint8
	ProtocolTokenAFee solana.PublicKey
	ProtocolTokenBFee solana.PublicKey
	FeeLastUpdatedAt  uint64
	Padding0          [24]byte
	Fees              AmmPoolFeesLayout
}

type LockedProfitTrackerLayout struct {
	LastUpdatedLockedProfit uint64
	LastReport              uint64
	LockedProfitDegradation uint64
}

// VaultLayout is the prefix shared by the big and small vault accounts.
type VaultLayout struct {
	Discriminator       [8]byte
	Enabled             uint8
	VaultBump           uint8
	TokenVaultBump      uint8
	TotalAmount         uint64
	TokenVault          solana.PublicKey
	FeeVault            solana.PublicKey
	TokenMint           solana.PublicKey
	LpMint              solana.PublicKey
	Strategies          [30]solana.PublicKey
	Base                solana.PublicKey
	Admin               solana.PublicKey
	Operator            solana.PublicKey
	LockedProfitTracker LockedProfitTrackerLayout
}

type BaseFeeLayout struct {
	CliffFeeNumerator uint64
	BaseFeeMode       uint8
	Padding0          [5]byte
	FirstFactor       uint16
	SecondFactor      uint64
	ThirdFactor       uint64
	Padding1          uint64
}

func (l BaseFeeLayout) BaseFee() BaseFee {
	return BaseFee{
		CliffFeeNumerator: l.CliffFeeNumerator,
		Mode:              BaseFeeMode(l.BaseFeeMode),
		NumberOfPeriod:    l.FirstFactor,
		PeriodFrequency:   l.SecondFactor,
		ReductionFactor:   l.ThirdFactor,
	}
}

type DynamicFeeLayout struct {
	Initialized              uint8
	Padding                  [7]byte
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
	BinStep                  uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	LastUpdateTimestamp      uint64
	BinStepU128              program.Uint128
	SqrtPriceReference       program.Uint128
	VolatilityAccumulator    program.Uint128
	VolatilityReference      program.Uint128
}

func (l DynamicFeeLayout) DynamicFee() DynamicFee {
	return DynamicFee{
		Initialized:           l.Initialized != 0,
		BinStep:               l.BinStep,
		VariableFeeControl:    l.VariableFeeControl,
		VolatilityAccumulator: l.VolatilityAccumulator,
	}
}

type DammV2PoolFeesLayout struct {
	BaseFee            BaseFeeLayout
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
	Padding0           [5]byte
	DynamicFee         DynamicFeeLayout
	Padding1           [2]uint64
}

// DammV2PoolLayout is the prefix of a DAMMv2 pool up to the version byte.
type DammV2PoolLayout struct {
	Discriminator    [8]byte
	PoolFees         DammV2PoolFeesLayout
	TokenAMint       solana.PublicKey
	TokenBMint       solana.PublicKey
	TokenAVault      solana.PublicKey
	TokenBVault      solana.PublicKey
	WhitelistedVault solana.PublicKey
	Partner          solana.PublicKey
	Liquidity        program.Uint128
	Padding          program.Uint128
	ProtocolAFee     uint64
	ProtocolBFee     uint64
	PartnerAFee      uint64
	PartnerBFee      uint64
	SqrtMinPrice     program.Uint128
	SqrtMaxPrice     program.Uint128
	SqrtPrice        program.Uint128
	ActivationPoint  uint64
	ActivationType   uint8
	PoolStatus       uint8
	TokenAFlag       uint8
	TokenBFlag       uint8
	CollectFeeMode   uint8
	PoolType         uint8
	Version          uint8
	Padding0         uint8
}

type DbcBaseFeeLayout struct {
	CliffFeeNumerator uint64
	SecondFactor      uint64
	ThirdFactor       uint64
	FirstFactor       uint16
	BaseFeeMode       uint8
	Padding0          [5]byte
}

func (l DbcBaseFeeLayout) BaseFee() BaseFee {
	return BaseFee{
		CliffFeeNumerator: l.CliffFeeNumerator,
		Mode:              BaseFeeMode(l.BaseFeeMode),
		NumberOfPeriod:    l.FirstFactor,
		PeriodFrequency:   l.SecondFactor,
		ReductionFactor:   l.ThirdFactor,
	}
}

type DbcDynamicFeeLayout struct {
	Initialized              uint8
	Padding                  [7]byte
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
	BinStep                  uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	Padding2                 [8]byte
	BinStepU128              program.Uint128
}

type DbcPoolFeesLayout struct {
	BaseFee            DbcBaseFeeLayout
	DynamicFee         DbcDynamicFeeLayout
	Padding0           [5]uint64
	Padding1           [6]byte
	ProtocolFeePercent uint8
	ReferralFeePercent uint8
}

type LiquidityDistributionLayout struct {
	SqrtPrice program.Uint128
	Liquidity program.Uint128
}

type LockedVestingLayout struct {
	AmountPerPeriod                uint64
	CliffDurationFromMigrationTime uint64
	Frequency                      uint64
	NumberOfPeriod                 uint64
	CliffUnlockAmount              uint64
	Padding                        uint64
}

type DbcConfigLayout struct {
	Discriminator                 [8]byte
	QuoteMint                     solana.PublicKey
	FeeClaimer                    solana.PublicKey
	LeftoverReceiver              solana.PublicKey
	PoolFees                      DbcPoolFeesLayout
	CollectFeeMode                uint8
	MigrationOption               uint8
	ActivationType                uint8
	TokenDecimal                  uint8
	Version                       uint8
	TokenType                     uint8
	QuoteTokenFlag                uint8
	PartnerLockedLpPercentage     uint8
	PartnerLpPercentage           uint8
	CreatorLockedLpPercentage     uint8
	CreatorLpPercentage           uint8
	MigrationFeeOption            uint8
	FixedTokenSupplyFlag          uint8
	CreatorTradingFeePercentage   uint8
	TokenUpdateAuthority          uint8
	MigrationFeePercentage        uint8
	CreatorMigrationFeePercentage uint8
	Padding1                      [7]byte
	SwapBaseAmount                uint64
	MigrationQuoteThreshold       uint64
	MigrationBaseThreshold        uint64
	MigrationSqrtPrice            program.Uint128
	LockedVesting                 LockedVestingLayout
	PreMigrationTokenSupply       uint64
	PostMigrationTokenSupply      uint64
	Padding2                      [2]program.Uint128
	SqrtStartPrice                program.Uint128
	Curve                         [20]LiquidityDistributionLayout
}

type VolatilityTrackerLayout struct {
	LastUpdateTimestamp   uint64
	Padding               [8]byte
	SqrtPriceReference    program.Uint128
	VolatilityAccumulator program.Uint128
	VolatilityReference   program.Uint128
}

// DbcVirtualPoolLayout is the prefix of a virtual pool up to its status flags.
type DbcVirtualPoolLayout struct {
	Discriminator             [8]byte
	VolatilityTracker         VolatilityTrackerLayout
	Config                    solana.PublicKey
	Creator                   solana.PublicKey
	BaseMint                  solana.PublicKey
	BaseVault                 solana.PublicKey
	QuoteVault                solana.PublicKey
	BaseReserve               uint64
	QuoteReserve              uint64
	ProtocolBaseFee           uint64
	ProtocolQuoteFee          uint64
	PartnerBaseFee            uint64
	PartnerQuoteFee           uint64
	SqrtPrice                 program.Uint128
	ActivationPoint           uint64
	PoolType                  uint8
	IsMigrated                uint8
	IsPartnerWithdrawSurplus  uint8
	IsProtocolWithdrawSurplus uint8
	MigrationProgress         uint8
	IsWithdrawLeftover        uint8
	IsCreatorWithdrawSurplus  uint8
	MigrationFeeWithdrawState uint8
}
