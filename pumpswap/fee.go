package pumpswap

import "github.com/holiman/uint256"

// CanonicalBaseSupply is the base supply of every coin graduated from the bonding curve, in base units.
const CanonicalBaseSupply = uint64(1_000_000_000_000_000)

// FeeTier is the fee split of pools whose market cap is at least MarketCapSol.
type FeeTier struct {
	MarketCapSol uint64
	LpFee        uint64
	ProtocolFee  uint64
	CreatorFee   uint64
}

func (t FeeTier) Total() uint64 {
	return t.LpFee + t.ProtocolFee + t.CreatorFee
}

// FeeTiers is ordered by market cap. Lower caps pay more.
var FeeTiers = []FeeTier{
	{0, 200_000, 9_300_000, 3_000_000},
	{420, 2_000_000, 500_000, 9_500_000},
	{1_470, 2_000_000, 500_000, 9_000_000},
	{2_460, 2_000_000, 500_000, 8_500_000},
	{3_440, 2_000_000, 500_000, 8_000_000},
	{4_420, 2_000_000, 500_000, 7_500_000},
	{9_820, 2_000_000, 500_000, 7_000_000},
	{14_740, 2_000_000, 500_000, 6_500_000},
	{19_650, 2_000_000, 500_000, 6_000_000},
	{24_560, 2_000_000, 500_000, 5_500_000},
	{29_470, 2_000_000, 500_000, 5_000_000},
	{34_380, 2_000_000, 500_000, 4_500_000},
	{39_300, 2_000_000, 500_000, 4_000_000},
	{44_210, 2_000_000, 500_000, 3_500_000},
	{49_120, 2_000_000, 500_000, 3_000_000},
	{54_030, 2_000_000, 500_000, 2_750_000},
	{58_940, 2_000_000, 500_000, 2_500_000},
	{63_860, 2_000_000, 500_000, 2_250_000},
	{68_770, 2_000_000, 500_000, 2_000_000},
	{73_680, 2_000_000, 500_000, 1_750_000},
	{78_590, 2_000_000, 500_000, 1_500_000},
	{83_500, 2_000_000, 500_000, 1_250_000},
	{98_240, 2_000_000, 500_000, 500_000},
}

// NonCanonicalFee applies to pools not created by a bonding curve migration.
var NonCanonicalFee = FeeTier{LpFee: 2_500_000, ProtocolFee: 500_000}

// MarketCap is quoteReserve * baseSupply / baseReserve, ok is false when it cannot be computed.
func MarketCap(baseReserve, quoteReserve, baseSupply uint64) (uint64, bool) {
	if baseReserve == 0 {
		return 0, false
	}
	mcap := new(uint256.Int).Mul(uint256.NewInt(quoteReserve), uint256.NewInt(baseSupply))
	mcap.Div(mcap, uint256.NewInt(baseReserve))
	if !mcap.IsUint64() {
		return ^uint64(0), true
	}
	return mcap.Uint64(), true
}

// TierFor returns the highest tier whose threshold the market cap, in lamports, reaches.
func TierFor(marketCap uint64) FeeTier {
	tier := FeeTiers[0]
	for _, t := range FeeTiers[1:] {
		if marketCap/1_000_000_000 < t.MarketCapSol {
			break
		}
		tier = t
	}
	return tier
}
