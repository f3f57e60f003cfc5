// Package fdp turns an arbitrary byte buffer into a deterministic
// sequence of typed values. It is intended for fuzz targets that need
// structured inputs: the fuzzing engine supplies raw bytes, and a
// Provider decodes integers, floats, booleans, strings, and selections
// from them without any real randomness. The same buffer and the same
// call sequence always yield the same values.
//
// The package defines two "families" of operations:
//   - (*Provider).ConsumeXxxx() methods for bytes, strings, and bools.
//   - ConsumeXxxx[T](p) generic functions for numeric and selection
//     operations parameterized over the result type.
//
// Bulk operations (bytes, strings) consume from the front of the
// buffer; bounded scalar selections (integral ranges, picks, enums)
// consume from the back. Keeping size and selector bytes at the tail
// means appending payload to an existing corpus entry does not disturb
// values decoded earlier, which preserves corpus usefulness across
// structural changes to a fuzz target.
//
// Running out of buffer is never an error: every operation degrades to
// a well-defined default (zero, false, the range minimum, an empty
// sequence). The only panics are caller contract violations, such as
// an inverted range.
package fdp

import "io"

// Provider decodes typed values from an in-memory buffer. It borrows
// the slice passed to NewProvider and never mutates or copies the
// underlying bytes; all returned slices and strings are fresh copies.
//
// A Provider is not safe for concurrent use. Every consume operation
// mutates cursor state, so concurrent decoders must each own a
// Provider over their own buffer.
type Provider struct {
	data []byte
}

// NewProvider constructs a Provider over the given buffer. The caller
// must not modify the buffer while the Provider is in use.
func NewProvider(data []byte) *Provider { return &Provider{data: data} }

// RemainingBytes returns the number of unconsumed bytes. It has no
// side effect.
func (p *Provider) RemainingBytes() int { return len(p.data) }

// ConsumeBytes returns up to n bytes from the front of the buffer as a
// freshly allocated slice. If fewer than n bytes remain, the remainder
// is returned; the result may be empty but is never nil.
func (p *Provider) ConsumeBytes(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > len(p.data) {
		n = len(p.data)
	}
	out := make([]byte, n)
	copy(out, p.data[:n])
	p.data = p.data[n:]
	return out
}

// ConsumeBytesWithTerminator returns a sequence of at most n bytes
// whose final element is term: max(n-1, 0) bytes are consumed from the
// front and term is appended. The terminator slot is reserved up
// front, so callers building sentinel-terminated data never receive
// more than n elements.
func (p *Provider) ConsumeBytesWithTerminator(n int, term byte) []byte {
	if n < 1 {
		n = 1
	}
	out := p.consumeBytesExtraCap(n-1, 1)
	return append(out, term)
}

// consumeBytesExtraCap consumes up to n front bytes into a slice with
// room for extra additional bytes, avoiding a second allocation when a
// terminator is appended.
func (p *Provider) consumeBytesExtraCap(n, extra int) []byte {
	if n > len(p.data) {
		n = len(p.data)
	}
	out := make([]byte, n, n+extra)
	copy(out, p.data[:n])
	p.data = p.data[n:]
	return out
}

// ConsumeBytesAsString returns up to n front bytes reinterpreted as a
// string. No encoding validation is performed; the bytes pass through
// opaquely, embedded NULs included.
func (p *Provider) ConsumeBytesAsString(n int) string {
	if n < 0 {
		n = 0
	}
	if n > len(p.data) {
		n = len(p.data)
	}
	s := string(p.data[:n])
	p.data = p.data[n:]
	return s
}

// ConsumeRemainingBytes returns everything left in the buffer and
// leaves it empty. Calling it again returns an empty slice.
func (p *Provider) ConsumeRemainingBytes() []byte {
	return p.ConsumeBytes(len(p.data))
}

// ConsumeRemainingBytesAsString returns everything left in the buffer
// as a string and leaves the buffer empty.
func (p *Provider) ConsumeRemainingBytesAsString() string {
	return p.ConsumeBytesAsString(len(p.data))
}

// ConsumeData copies min(len(dst), remaining) bytes into dst from the
// front of the buffer and returns the count copied. Bytes of dst
// beyond the returned count are left untouched.
func (p *Provider) ConsumeData(dst []byte) int {
	n := copy(dst, p.data)
	p.data = p.data[n:]
	return n
}

// Read implements io.Reader over the front cursor, so a Provider can
// feed any reader-driven decoder. It returns io.EOF once the buffer is
// exhausted and never returns any other error.
func (p *Provider) Read(dst []byte) (int, error) {
	if len(p.data) == 0 && len(dst) > 0 {
		return 0, io.EOF
	}
	return p.ConsumeData(dst), nil
}

// ConsumeBool consumes one byte from the back of the buffer and
// reports whether its least-significant bit is set. On an exhausted
// buffer it returns false.
func (p *Provider) ConsumeBool() bool {
	return p.consumeUint64InRange(maxUint8)&1 == 1
}
