package meteora

import (
	"math"
	"math/big"

	"github.com/egaotan/solana-registry/program"
)

type BaseFeeMode uint8

const (
	FeeSchedulerLinear BaseFeeMode = iota
	FeeSchedulerExponential
	RateLimiter
)

const (
	BasisPointMax = 10_000
	// DynamicFeeScalingDenominator scales (volatility * bin step)^2 * control down to a fee numerator.
	DynamicFeeScalingDenominator = 100_000_000_000
	MaxFeeNumeratorV0            = uint64(500_000_000)
	MaxFeeNumeratorV1            = uint64(990_000_000)
)

type ActivationType uint8

const (
	ActivationBySlot ActivationType = iota
	ActivationByTimestamp
)

// CurrentPoint is the slot or unix second the fee schedule measures against.
func CurrentPoint(activationType ActivationType, clock program.Clock) uint64 {
	if activationType == ActivationBySlot {
		return clock.Slot()
	}
	now := clock.Now().Unix()
	if now < 0 {
		return 0
	}
	return uint64(now)
}

// BaseFee is the decaying fee schedule starting at the activation point.
type BaseFee struct {
	CliffFeeNumerator uint64
	Mode              BaseFeeMode
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
}

func (f BaseFee) PeriodsPassed(currentPoint, activationPoint uint64) uint64 {
	if f.PeriodFrequency == 0 || currentPoint < activationPoint {
		return 0
	}
	periods := (currentPoint - activationPoint) / f.PeriodFrequency
	if periods > uint64(f.NumberOfPeriod) {
		periods = uint64(f.NumberOfPeriod)
	}
	return periods
}

func (f BaseFee) Numerator(currentPoint, activationPoint uint64) uint64 {
	if f.PeriodFrequency == 0 || currentPoint < activationPoint {
		return f.CliffFeeNumerator
	}
	periods := f.PeriodsPassed(currentPoint, activationPoint)
	switch f.Mode {
	case FeeSchedulerLinear:
		return linearFee(f.CliffFeeNumerator, f.ReductionFactor, periods)
	case FeeSchedulerExponential:
		return exponentialFee(f.CliffFeeNumerator, f.ReductionFactor, periods)
	default:
		return f.CliffFeeNumerator
	}
}

func linearFee(cliff, reduction, periods uint64) uint64 {
	if periods == 0 {
		return cliff
	}
	if reduction > cliff/periods {
		return 0
	}
	return cliff - periods*reduction
}

var q64 = new(big.Int).Lsh(big.NewInt(1), 64)

// exponentialFee computes cliff * (1 - reduction/10000)^periods in Q64.64 fixed point.
func exponentialFee(cliff, reduction, periods uint64) uint64 {
	if periods == 0 {
		return cliff
	}
	if reduction >= BasisPointMax {
		return 0
	}
	base := new(big.Int).Mul(q64, big.NewInt(int64(BasisPointMax-reduction)))
	base.Quo(base, big.NewInt(BasisPointMax))
	result := new(big.Int).Set(q64)
	for periods > 0 {
		if periods&1 == 1 {
			result.Mul(result, base).Rsh(result, 64)
		}
		base.Mul(base, base).Rsh(base, 64)
		periods >>= 1
	}
	result.Mul(result, new(big.Int).SetUint64(cliff)).Rsh(result, 64)
	return clampUint64(result)
}

// DynamicFee is the volatility based surcharge.
type DynamicFee struct {
	Initialized           bool
	BinStep               uint16
	VariableFeeControl    uint32
	VolatilityAccumulator program.Uint128
}

func (f DynamicFee) Numerator() uint64 {
	if !f.Initialized || f.VariableFeeControl == 0 {
		return 0
	}
	square := new(big.Int).Mul(f.VolatilityAccumulator.Big(), big.NewInt(int64(f.BinStep)))
	square.Mul(square, square)
	square.Mul(square, big.NewInt(int64(f.VariableFeeControl)))
	square.Add(square, big.NewInt(DynamicFeeScalingDenominator-1))
	square.Quo(square, big.NewInt(DynamicFeeScalingDenominator))
	return clampUint64(square)
}

// TotalFee adds the base and dynamic numerators and caps the sum.
func TotalFee(base, dynamic, max uint64) uint64 {
	total := base + dynamic
	if total < base {
		total = math.MaxUint64
	}
	if total > max {
		return max
	}
	return total
}

func clampUint64(v *big.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
