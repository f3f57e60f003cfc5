package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	msgp "github.com/tinylib/msgp/msgp"

	fdp "github.com/fuzzkit/fdp.go/provider"
)

// TraceOptions configures a trace run.
type TraceOptions struct {
	CorpusPath string
	Script     string
	Format     string // json, cbor, or msgpack
	OutputPath string // empty means stdout
	Verbose    bool
}

// Entry is one decoded value in a trace. Value holds one of: int64,
// uint64, float32, float64, bool, string, or []byte, depending on the
// operation.
type Entry struct {
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Trace is the full result of decoding a corpus file against a script.
type Trace struct {
	Entries   []Entry `json:"trace"`
	Remaining int     `json:"remaining"`
}

// RunTrace decodes the corpus file step by step per the op script and
// writes the value trace in the requested format.
func RunTrace(opts TraceOptions) error {
	ops, err := ParseScript(opts.Script)
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}
	data, err := os.ReadFile(opts.CorpusPath)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "fdpgen: tracing %d ops over %d corpus bytes\n", len(ops), len(data))
	}

	trace := ExecuteScript(ops, data)

	out, err := EncodeTrace(trace, opts.Format)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(opts.OutputPath, out, 0o644)
}

// ExecuteScript runs every op against a fresh Provider over data and
// records the decoded values in order. Decoding is total: exhausting
// the buffer mid-script simply yields the per-type defaults for the
// remaining ops.
func ExecuteScript(ops []Op, data []byte) Trace {
	p := fdp.NewProvider(data)
	entries := make([]Entry, 0, len(ops))
	for _, op := range ops {
		entries = append(entries, Entry{Op: op.Src, Value: applyOp(p, op)})
	}
	return Trace{Entries: entries, Remaining: p.RemainingBytes()}
}

// EncodeTrace serializes a trace as json, cbor, or msgpack.
func EncodeTrace(trace Trace, format string) ([]byte, error) {
	switch format {
	case "json", "":
		out, err := json.MarshalIndent(trace, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode trace: %w", err)
		}
		return append(out, '\n'), nil
	case "cbor":
		out, err := cbor.Marshal(trace)
		if err != nil {
			return nil, fmt.Errorf("encode trace: %w", err)
		}
		return out, nil
	case "msgpack":
		return appendTraceMsgpack(nil, trace), nil
	}
	return nil, fmt.Errorf("unknown trace format %q", format)
}

// appendTraceMsgpack encodes the trace with the msgp append runtime.
func appendTraceMsgpack(b []byte, trace Trace) []byte {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "trace")
	b = msgp.AppendArrayHeader(b, uint32(len(trace.Entries)))
	for _, e := range trace.Entries {
		b = msgp.AppendMapHeader(b, 2)
		b = msgp.AppendString(b, "op")
		b = msgp.AppendString(b, e.Op)
		b = msgp.AppendString(b, "value")
		b = appendValueMsgpack(b, e.Value)
	}
	b = msgp.AppendString(b, "remaining")
	b = msgp.AppendInt(b, trace.Remaining)
	return b
}

func appendValueMsgpack(b []byte, v any) []byte {
	switch v := v.(type) {
	case int64:
		return msgp.AppendInt64(b, v)
	case uint64:
		return msgp.AppendUint64(b, v)
	case float32:
		return msgp.AppendFloat32(b, v)
	case float64:
		return msgp.AppendFloat64(b, v)
	case bool:
		return msgp.AppendBool(b, v)
	case string:
		return msgp.AppendString(b, v)
	case []byte:
		return msgp.AppendBytes(b, v)
	}
	return msgp.AppendNil(b)
}

// applyOp performs one decode operation and returns its normalized
// value: signed integrals widen to int64, unsigned to uint64.
func applyOp(p *fdp.Provider, op Op) any {
	switch op.Kind {
	case OpBool:
		return p.ConsumeBool()
	case OpIntegral:
		return applyIntegral(p, op.Scalar)
	case OpIntegralRange:
		return applyIntegralRange(p, op)
	case OpFloat:
		if op.Scalar == KindF32 {
			return fdp.ConsumeFloatingPoint[float32](p)
		}
		return fdp.ConsumeFloatingPoint[float64](p)
	case OpFloatRange:
		if op.Scalar == KindF32 {
			return fdp.ConsumeFloatingPointInRange(p, float32(op.FLo), float32(op.FHi))
		}
		return fdp.ConsumeFloatingPointInRange(p, op.FLo, op.FHi)
	case OpProbability:
		if op.Scalar == KindF32 {
			return fdp.ConsumeProbability[float32](p)
		}
		return fdp.ConsumeProbability[float64](p)
	case OpBytes:
		return p.ConsumeBytes(op.N)
	case OpString:
		return p.ConsumeBytesAsString(op.N)
	case OpRandomString:
		if op.HasN {
			return p.ConsumeRandomLengthString(op.N)
		}
		return p.ConsumeRemainingAsRandomLengthString()
	case OpPick:
		return int64(fdp.ConsumeIntegralInRange(p, 0, int64(op.N)-1))
	case OpEnum:
		return uint64(fdp.ConsumeEnum(p, uint64(op.N)))
	case OpRest:
		return p.ConsumeRemainingBytes()
	}
	return nil
}

func applyIntegral(p *fdp.Provider, kind ScalarKind) any {
	switch kind {
	case KindU8:
		return uint64(fdp.ConsumeIntegral[uint8](p))
	case KindU16:
		return uint64(fdp.ConsumeIntegral[uint16](p))
	case KindU32:
		return uint64(fdp.ConsumeIntegral[uint32](p))
	case KindU64:
		return fdp.ConsumeIntegral[uint64](p)
	case KindI8:
		return int64(fdp.ConsumeIntegral[int8](p))
	case KindI16:
		return int64(fdp.ConsumeIntegral[int16](p))
	case KindI32:
		return int64(fdp.ConsumeIntegral[int32](p))
	default:
		return fdp.ConsumeIntegral[int64](p)
	}
}

func applyIntegralRange(p *fdp.Provider, op Op) any {
	switch op.Scalar {
	case KindU8:
		return uint64(fdp.ConsumeIntegralInRange(p, uint8(op.ULo), uint8(op.UHi)))
	case KindU16:
		return uint64(fdp.ConsumeIntegralInRange(p, uint16(op.ULo), uint16(op.UHi)))
	case KindU32:
		return uint64(fdp.ConsumeIntegralInRange(p, uint32(op.ULo), uint32(op.UHi)))
	case KindU64:
		return fdp.ConsumeIntegralInRange(p, op.ULo, op.UHi)
	case KindI8:
		return int64(fdp.ConsumeIntegralInRange(p, int8(op.Lo), int8(op.Hi)))
	case KindI16:
		return int64(fdp.ConsumeIntegralInRange(p, int16(op.Lo), int16(op.Hi)))
	case KindI32:
		return int64(fdp.ConsumeIntegralInRange(p, int32(op.Lo), int32(op.Hi)))
	default:
		return fdp.ConsumeIntegralInRange(p, op.Lo, op.Hi)
	}
}
