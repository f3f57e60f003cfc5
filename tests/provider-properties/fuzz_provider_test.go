package tests

import (
	"bytes"
	"fmt"
	"testing"

	fdp "github.com/fuzzkit/fdp.go/provider"
)

// decodeAll runs a fixed mixed sequence of consume operations and
// renders every decoded value into a single comparable transcript.
func decodeAll(data []byte) string {
	p := fdp.NewProvider(data)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "b=%v;", p.ConsumeBool())
	fmt.Fprintf(&buf, "i8=%d;", fdp.ConsumeIntegral[int8](p))
	fmt.Fprintf(&buf, "u64=%d;", fdp.ConsumeIntegral[uint64](p))
	fmt.Fprintf(&buf, "r=%d;", fdp.ConsumeIntegralInRange(p, int32(-1000), int32(1000)))
	fmt.Fprintf(&buf, "s=%q;", p.ConsumeRandomLengthString(16))
	fmt.Fprintf(&buf, "p32=%v;", fdp.ConsumeProbability[float32](p))
	fmt.Fprintf(&buf, "f=%v;", fdp.ConsumeFloatingPointInRange(p, -13.37, 31.337))
	fmt.Fprintf(&buf, "pick=%d;", fdp.PickValueInArray(p, []int{10, 20, 30}))
	fmt.Fprintf(&buf, "bytes=%x;", p.ConsumeBytes(8))
	fmt.Fprintf(&buf, "rest=%x;", p.ConsumeRemainingBytes())
	fmt.Fprintf(&buf, "rem=%d", p.RemainingBytes())
	return buf.String()
}

// FuzzProviderDeterminism checks that decoding is a pure function of
// buffer content and call order, never panics, and never reports a
// negative remaining length.
func FuzzProviderDeterminism(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x5C})
	f.Add([]byte{0x5C, 0x5C, 0x41, 0xFF})
	f.Add([]byte{0x8A, 0x19, 0x0D, 0x44, 0x37, 0x0D, 0x38, 0x5E, 0x9B, 0xAA, 0xF3, 0xDA})
	f.Add(bytes.Repeat([]byte{0xFF}, 64))

	f.Fuzz(func(t *testing.T, data []byte) {
		first := decodeAll(data)
		second := decodeAll(data)
		if first != second {
			t.Fatalf("decode not deterministic:\n%s\n%s", first, second)
		}
	})
}

// FuzzRemainingNeverGrows drives a data-dependent op sequence and
// checks the shrinking-interval invariant after every operation.
func FuzzRemainingNeverGrows(f *testing.F) {
	f.Add([]byte{}, uint8(0))
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8}, uint8(0xA5))
	f.Add(bytes.Repeat([]byte{0x5C}, 32), uint8(0x3C))

	f.Fuzz(func(t *testing.T, data []byte, selector uint8) {
		p := fdp.NewProvider(data)
		prev := p.RemainingBytes()
		if prev != len(data) {
			t.Fatalf("initial remaining = %d, want %d", prev, len(data))
		}
		for i := 0; i < 64; i++ {
			switch (int(selector) + i) % 6 {
			case 0:
				p.ConsumeBytes(i)
			case 1:
				fdp.ConsumeIntegralInRange(p, 0, i)
			case 2:
				p.ConsumeBool()
			case 3:
				p.ConsumeRandomLengthString(i)
			case 4:
				fdp.ConsumeProbability[float64](p)
			case 5:
				p.ConsumeBytesWithTerminator(i, 0)
			}
			cur := p.RemainingBytes()
			if cur < 0 || cur > prev {
				t.Fatalf("remaining went from %d to %d at step %d", prev, cur, i)
			}
			prev = cur
		}
	})
}

// FuzzRandomLengthStringReconstructs checks that the escape scan only
// ever consumes from the front and that its output length is bounded
// by both the max length and the bytes consumed.
func FuzzRandomLengthStringReconstructs(f *testing.F) {
	f.Add([]byte("plain"), 16)
	f.Add([]byte(`with\\doubled`), 16)
	f.Add([]byte("term\\Xtail"), 16)
	f.Add([]byte{0x5C}, 1)

	f.Fuzz(func(t *testing.T, data []byte, max int) {
		p := fdp.NewProvider(data)
		before := p.RemainingBytes()
		got := p.ConsumeRandomLengthString(max)
		consumed := before - p.RemainingBytes()
		if max < 0 {
			max = 0
		}
		if len(got) > max {
			t.Fatalf("output %d bytes exceeds max %d", len(got), max)
		}
		if len(got) > consumed {
			t.Fatalf("output %d bytes but only %d consumed", len(got), consumed)
		}
		if consumed > len(data) {
			t.Fatalf("consumed %d of %d bytes", consumed, len(data))
		}
	})
}
