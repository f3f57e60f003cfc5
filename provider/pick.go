package fdp

// PickValueInArray selects one element of values, consuming bytes from
// the back of the buffer per ConsumeIntegralInRange over the index
// domain. A single-element slice consumes nothing; an exhausted buffer
// yields the first element. An empty slice is a caller error and
// panics.
func PickValueInArray[T any](p *Provider, values []T) T {
	if len(values) == 0 {
		panic("fdp: PickValueInArray: empty values")
	}
	return values[ConsumeIntegralInRange(p, 0, len(values)-1)]
}

// ConsumeEnum selects an enumerator in [0, last], where last is the
// highest ordinal of the enumeration. Every bit pattern maps to some
// in-range enumerator; an exhausted buffer yields ordinal zero.
func ConsumeEnum[E Integral](p *Provider, last E) E {
	return ConsumeIntegralInRange(p, E(0), last)
}
