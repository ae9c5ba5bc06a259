package raydium

import (
	"bytes"
	"encoding/binary"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var (
	AmmV4LayoutSize             = 752
	CpmmPoolLayoutSize          = 637
	CpmmConfigLayoutSize        = 236
	LaunchpadPoolLayoutSize     = 429
	LaunchpadPlatformLayoutSize = 944
)

type FeesLayout struct {
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
}

type OutputDataLayout struct {
	BaseNeedTakePnl     uint64
	QuoteNeedTakePnl    uint64
	QuoteTotalPnl       uint64
	BaseTotalPnl        uint64
	PoolOpenTime        uint64
	PunishPcAmount      uint64
	PunishCoinAmount    uint64
	OrderbookToInitTime uint64
	SwapBaseInAmount    program.Uint128
	SwapQuoteOutAmount  program.Uint128
	SwapBase2QuoteFee   uint64
	SwapQuoteInAmount   program.Uint128
	SwapBaseOutAmount   program.Uint128
	SwapQuote2BaseFee   uint64
}

type AmmV4Layout struct {
	Status             uint64
	Nonce              uint64
	MaxOrder           uint64
	Depth              uint64
	BaseDecimal        uint64
	QuoteDecimal       uint64
	State              uint64
	ResetFlag          uint64
	MinSize            uint64
	VolMaxCutRatio     uint64
	AmountWaveRatio    uint64
	BaseLotSize        uint64
	QuoteLotSize       uint64
	MinPriceMultiplier uint64
	MaxPriceMultiplier uint64
	SystemDecimalValue uint64
	Fees               FeesLayout
	Output             OutputDataLayout
	BaseVault          solana.PublicKey
	QuoteVault         solana.PublicKey
	BaseMint           solana.PublicKey
	QuoteMint          solana.PublicKey
	LpMint             solana.PublicKey
	OpenOrders         solana.PublicKey
	MarketId           solana.PublicKey
	MarketProgramId    solana.PublicKey
	TargetOrders       solana.PublicKey
	WithdrawQueue      solana.PublicKey
	LpVault            solana.PublicKey
	Owner              solana.PublicKey
	LpReserve          uint64
	Padding            [3]uint64
}

func (l *AmmV4Layout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}

type CpmmPoolLayout struct {
	Discriminator      [8]byte
	AmmConfig          solana.PublicKey
	PoolCreator        solana.PublicKey
	Token0Vault        solana.PublicKey
	Token1Vault        solana.PublicKey
	LpMint             solana.PublicKey
	Token0Mint         solana.PublicKey
	Token1Mint         solana.PublicKey
	Token0Program      solana.PublicKey
	Token1Program      solana.PublicKey
	ObservationKey     solana.PublicKey
	AuthBump           uint8
	Status             uint8
	LpMintDecimals     uint8
	Mint0Decimals      uint8
	Mint1Decimals      uint8
	LpSupply           uint64
	ProtocolFeesToken0 uint64
	ProtocolFeesToken1 uint64
	FundFeesToken0     uint64
	FundFeesToken1     uint64
	OpenTime           uint64
	RecentEpoch        uint64
	CreatorFeeOn       uint8
	EnableCreatorFee   uint8
	Padding1           [6]byte
	CreatorFeesToken0  uint64
	CreatorFeesToken1  uint64
	Padding            [28]uint64
}

func (l *CpmmPoolLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}

// CpmmConfigLayout is the fee config shared by CPMM pools. Rates are in hundredths of a bip.
type CpmmConfigLayout struct {
	Discriminator     [8]byte
	Bump              uint8
	DisableCreatePool uint8
	Index             uint16
	TradeFeeRate      uint64
	ProtocolFeeRate   uint64
	FundFeeRate       uint64
	CreatePoolFee     uint64
	ProtocolOwner     solana.PublicKey
	FundOwner         solana.PublicKey
	Padding           [16]uint64
}

func (l *CpmmConfigLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}

type LaunchpadPoolLayout struct {
	Discriminator         [8]byte
	Epoch                 uint64
	AuthBump              uint8
	Status                uint8
	BaseDecimals          uint8
	QuoteDecimals         uint8
	MigrateType           uint8
	Supply                uint64
	TotalBaseSell         uint64
	VirtualBase           uint64
	VirtualQuote          uint64
	RealBase              uint64
	RealQuote             uint64
	TotalQuoteFundRaising uint64
	QuoteProtocolFee      uint64
	PlatformFee           uint64
	MigrateFee            uint64
	VestingSchedule       [5]uint64
	GlobalConfig          solana.PublicKey
	PlatformConfig        solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	BaseVault             solana.PublicKey
	QuoteVault            solana.PublicKey
	Creator               solana.PublicKey
	Padding               [64]byte
}

func (l *LaunchpadPoolLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}

// LaunchpadPlatformLayout is the prefix of a platform config up to its fee rate.
type LaunchpadPlatformLayout struct {
	Discriminator     [8]byte
	Epoch             uint64
	PlatformFeeWallet solana.PublicKey
	PlatformNftWallet solana.PublicKey
	PlatformScale     uint64
	CreatorScale      uint64
	BurnScale         uint64
	FeeRate           uint64
}

func (l *LaunchpadPlatformLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}
