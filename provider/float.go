package fdp

import (
	"math"
	"unsafe"
)

// Float is the set of floating-point kinds the consume operations can
// produce.
type Float interface {
	~float32 | ~float64
}

// ConsumeProbability returns a value in the closed interval [0, 1],
// built by consuming an unsigned integer matched to F's bit width from
// the back of the buffer and dividing by that integer kind's maximum.
// A float32 probability therefore costs 4 bytes and a float64
// probability 8; an exhausted buffer yields 0.
func ConsumeProbability[F Float](p *Provider) F {
	if unsafe.Sizeof(F(0)) == 4 {
		v := ConsumeIntegral[uint32](p)
		return F(float32(v) / float32(math.MaxUint32))
	}
	v := ConsumeIntegral[uint64](p)
	return F(float64(v) / float64(math.MaxUint64))
}

// ConsumeFloatingPoint returns a value spanning F's entire finite
// range, from its most negative to its most positive finite value. An
// exhausted buffer yields the most negative finite value.
func ConsumeFloatingPoint[F Float](p *Provider) F {
	limit := floatingPointMax[F]()
	return ConsumeFloatingPointInRange(p, -limit, limit)
}

// ConsumeFloatingPointInRange returns a value in [min, max] by linear
// interpolation with a consumed probability. A single-valued range
// returns min and consumes nothing. When the span max-min would
// overflow F's finite magnitude, the range is split at its midpoint
// and one consumed boolean selects the half to interpolate within, so
// probabilities 0 and 1 still land exactly on min and max. The result
// is clamped to [min, max] against boundary rounding. min > max is a
// caller error and panics.
func ConsumeFloatingPointInRange[F Float](p *Provider, min, max F) F {
	if min > max {
		panic("fdp: ConsumeFloatingPointInRange: min > max")
	}
	if min == max {
		return min
	}
	result := min
	var width F
	if max > 0 && min < 0 && max > min+floatingPointMax[F]() {
		width = max/2 - min/2
		if p.ConsumeBool() {
			result += width
		}
	} else {
		width = max - min
	}
	result += width * ConsumeProbability[F](p)
	if result < min {
		result = min
	}
	if result > max {
		result = max
	}
	return result
}

// floatingPointMax returns F's largest finite value.
func floatingPointMax[F Float]() F {
	if unsafe.Sizeof(F(0)) == 4 {
		v := float32(math.MaxFloat32)
		return F(v)
	}
	v := float64(math.MaxFloat64)
	return F(v)
}
