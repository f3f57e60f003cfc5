package fdp

import (
	"math"
	"unsafe"
)

const maxUint8 = math.MaxUint8

// Integral is the set of integer kinds the consume operations can
// produce. Named kinds with an integer underlying type are included.
type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// consumeUint64InRange is the core selection primitive: it consumes
// just enough bytes from the back of the remaining buffer to cover
// [0, width] and maps them into that interval.
//
// A byte is consumed per 8 bits of width, so a zero width consumes
// nothing. Bytes come off the tail of the buffer, last byte first,
// shifting into the high-order end of the accumulator; when the buffer
// runs out mid-way the missing high-order bytes are zero. The
// accumulator is reduced modulo width+1 unless the width spans the
// whole uint64 domain, where the reduction would be a no-op anyway and
// width+1 is not representable.
func (p *Provider) consumeUint64InRange(width uint64) uint64 {
	var result uint64
	for offset := uint(0); offset < 64 && width>>offset > 0; offset += 8 {
		if len(p.data) == 0 {
			break
		}
		last := len(p.data) - 1
		result = result<<8 | uint64(p.data[last])
		p.data = p.data[:last]
	}
	if width != math.MaxUint64 {
		result %= width + 1
	}
	return result
}

// ConsumeIntegralInRange consumes bytes from the back of the buffer
// and returns a value in [min, max], approximately uniform given
// enough buffer entropy. A single-valued range returns min and
// consumes nothing. On an exhausted buffer the result degrades toward
// min. min > max is a caller error and panics.
//
// Reading bounded scalars from the tail keeps them decorrelated from
// front-consumed payload bytes: appending data to a corpus entry does
// not shift the bytes earlier selections were decoded from.
func ConsumeIntegralInRange[T Integral](p *Provider, min, max T) T {
	if min > max {
		panic("fdp: ConsumeIntegralInRange: min > max")
	}
	// The unsigned difference is exact for every Integral kind, even
	// when [min, max] spans the full signed domain: conversion to
	// uint64 sign-extends and the subtraction wraps to the true width.
	width := uint64(max) - uint64(min)
	return T(uint64(min) + p.consumeUint64InRange(width))
}

// ConsumeIntegral returns a value spanning the entire domain of T. It
// is ConsumeIntegralInRange over [minOf(T), maxOf(T)]; an exhausted
// buffer yields T's minimum value.
func ConsumeIntegral[T Integral](p *Provider) T {
	lo, hi := integralLimits[T]()
	return ConsumeIntegralInRange(p, lo, hi)
}

// integralLimits returns the lowest and highest values of T.
func integralLimits[T Integral]() (lo, hi T) {
	if isSigned[T]() {
		bits := 8 * unsafe.Sizeof(lo)
		lo = T(uint64(1) << (bits - 1))
		hi = lo - 1
		return lo, hi
	}
	return 0, ^T(0)
}

// isSigned reports whether T is a signed kind.
func isSigned[T Integral]() bool {
	return ^T(0) < T(0)
}
