package core

import (
	"fmt"
	"strconv"
	"strings"
)

// The op-script language is a flat list of decode operations separated
// by whitespace or commas. Each token is an op name with colon-joined
// arguments:
//
//	u8 u16 u32 u64 i8 i16 i32 i64   full-domain integral
//	range:<kind>:<lo>:<hi>          bounded integral, e.g. range:i32:10:30
//	bool                            one boolean
//	f32 f64                         full-range floating point
//	frange:<kind>:<lo>:<hi>         bounded float, e.g. frange:f64:-1:1
//	prob32 prob64                   probability in [0,1]
//	bytes:<n>                       n raw bytes
//	str:<n>                         n bytes as text
//	rls[:<n>]                       random-length string, optional max
//	pick:<k>                        index selection over k choices
//	enum:<last>                     ordinal selection over [0,last]
//	rest                            all remaining bytes
type Op struct {
	Kind   OpKind
	Scalar ScalarKind

	// Integral bounds. Signed kinds use Lo/Hi, u64 spans need ULo/UHi.
	Lo, Hi   int64
	ULo, UHi uint64

	// Float bounds.
	FLo, FHi float64

	// Length, choice count, or last ordinal.
	N    int
	HasN bool

	// Src is the original token, used for trace labels and errors.
	Src string
}

// OpKind identifies a decode operation.
type OpKind uint8

const (
	OpIntegral OpKind = iota
	OpIntegralRange
	OpBool
	OpFloat
	OpFloatRange
	OpProbability
	OpBytes
	OpString
	OpRandomString
	OpPick
	OpEnum
	OpRest
)

// ScalarKind identifies the numeric kind an op decodes.
type ScalarKind uint8

const (
	KindU8 ScalarKind = iota
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
)

// GoType returns the Go type name for the scalar kind.
func (k ScalarKind) GoType() string {
	switch k {
	case KindU8:
		return "uint8"
	case KindU16:
		return "uint16"
	case KindU32:
		return "uint32"
	case KindU64:
		return "uint64"
	case KindI8:
		return "int8"
	case KindI16:
		return "int16"
	case KindI32:
		return "int32"
	case KindI64:
		return "int64"
	case KindF32:
		return "float32"
	case KindF64:
		return "float64"
	}
	return "uint64"
}

// bitSize returns the width used when parsing bounds for the kind.
func (k ScalarKind) bitSize() int {
	switch k {
	case KindU8, KindI8:
		return 8
	case KindU16, KindI16:
		return 16
	case KindU32, KindI32, KindF32:
		return 32
	default:
		return 64
	}
}

func (k ScalarKind) signed() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64:
		return true
	}
	return false
}

var integralKinds = map[string]ScalarKind{
	"u8": KindU8, "u16": KindU16, "u32": KindU32, "u64": KindU64,
	"i8": KindI8, "i16": KindI16, "i32": KindI32, "i64": KindI64,
}

var floatKinds = map[string]ScalarKind{
	"f32": KindF32, "f64": KindF64,
}

// ParseScript parses an op script into its operation sequence.
func ParseScript(script string) ([]Op, error) {
	fields := strings.FieldsFunc(script, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty op script")
	}
	ops := make([]Op, 0, len(fields))
	for _, tok := range fields {
		op, err := parseOp(tok)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOp(tok string) (Op, error) {
	op := Op{Src: tok}
	name, rest, _ := strings.Cut(tok, ":")

	if kind, ok := integralKinds[name]; ok && rest == "" {
		op.Kind = OpIntegral
		op.Scalar = kind
		return op, nil
	}
	if kind, ok := floatKinds[name]; ok && rest == "" {
		op.Kind = OpFloat
		op.Scalar = kind
		return op, nil
	}

	switch name {
	case "bool":
		op.Kind = OpBool
		return op, expectNoArgs(tok, rest)
	case "rest":
		op.Kind = OpRest
		return op, expectNoArgs(tok, rest)
	case "prob32":
		op.Kind = OpProbability
		op.Scalar = KindF32
		return op, expectNoArgs(tok, rest)
	case "prob64":
		op.Kind = OpProbability
		op.Scalar = KindF64
		return op, expectNoArgs(tok, rest)
	case "range":
		return parseRangeOp(op, rest)
	case "frange":
		return parseFloatRangeOp(op, rest)
	case "bytes", "str", "pick", "enum":
		n, err := parseCount(tok, rest)
		if err != nil {
			return op, err
		}
		op.N = n
		op.HasN = true
		switch name {
		case "bytes":
			op.Kind = OpBytes
		case "str":
			op.Kind = OpString
		case "pick":
			op.Kind = OpPick
			if n < 1 {
				return op, fmt.Errorf("op %q: pick needs at least one choice", tok)
			}
		case "enum":
			op.Kind = OpEnum
		}
		return op, nil
	case "rls":
		op.Kind = OpRandomString
		if rest == "" {
			return op, nil
		}
		n, err := parseCount(tok, rest)
		if err != nil {
			return op, err
		}
		op.N = n
		op.HasN = true
		return op, nil
	}
	return op, fmt.Errorf("unknown op %q", tok)
}

func expectNoArgs(tok, rest string) error {
	if rest != "" {
		return fmt.Errorf("op %q takes no arguments", tok)
	}
	return nil
}

func parseCount(tok, rest string) (int, error) {
	if rest == "" {
		return 0, fmt.Errorf("op %q: missing argument", tok)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("op %q: bad count %q", tok, rest)
	}
	return n, nil
}

// parseRangeOp parses "range:<kind>:<lo>:<hi>".
func parseRangeOp(op Op, rest string) (Op, error) {
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return op, fmt.Errorf("op %q: want range:<kind>:<lo>:<hi>", op.Src)
	}
	kind, ok := integralKinds[parts[0]]
	if !ok {
		return op, fmt.Errorf("op %q: unknown integral kind %q", op.Src, parts[0])
	}
	op.Kind = OpIntegralRange
	op.Scalar = kind
	if kind.signed() {
		lo, err := strconv.ParseInt(parts[1], 10, kind.bitSize())
		if err != nil {
			return op, fmt.Errorf("op %q: bad lower bound: %w", op.Src, err)
		}
		hi, err := strconv.ParseInt(parts[2], 10, kind.bitSize())
		if err != nil {
			return op, fmt.Errorf("op %q: bad upper bound: %w", op.Src, err)
		}
		if lo > hi {
			return op, fmt.Errorf("op %q: lower bound above upper bound", op.Src)
		}
		op.Lo, op.Hi = lo, hi
		return op, nil
	}
	lo, err := strconv.ParseUint(parts[1], 10, kind.bitSize())
	if err != nil {
		return op, fmt.Errorf("op %q: bad lower bound: %w", op.Src, err)
	}
	hi, err := strconv.ParseUint(parts[2], 10, kind.bitSize())
	if err != nil {
		return op, fmt.Errorf("op %q: bad upper bound: %w", op.Src, err)
	}
	if lo > hi {
		return op, fmt.Errorf("op %q: lower bound above upper bound", op.Src)
	}
	op.ULo, op.UHi = lo, hi
	return op, nil
}

// parseFloatRangeOp parses "frange:<kind>:<lo>:<hi>". Bounds use the
// Go float syntax accepted by strconv.ParseFloat.
func parseFloatRangeOp(op Op, rest string) (Op, error) {
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return op, fmt.Errorf("op %q: want frange:<kind>:<lo>:<hi>", op.Src)
	}
	kind, ok := floatKinds[parts[0]]
	if !ok {
		return op, fmt.Errorf("op %q: unknown float kind %q", op.Src, parts[0])
	}
	lo, err := strconv.ParseFloat(parts[1], kind.bitSize())
	if err != nil {
		return op, fmt.Errorf("op %q: bad lower bound: %w", op.Src, err)
	}
	hi, err := strconv.ParseFloat(parts[2], kind.bitSize())
	if err != nil {
		return op, fmt.Errorf("op %q: bad upper bound: %w", op.Src, err)
	}
	if lo > hi {
		return op, fmt.Errorf("op %q: lower bound above upper bound", op.Src)
	}
	op.Kind = OpFloatRange
	op.Scalar = kind
	op.FLo, op.FHi = lo, hi
	return op, nil
}
