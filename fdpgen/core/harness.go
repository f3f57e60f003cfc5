package core

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"strconv"
	"text/template"

	"golang.org/x/tools/imports"

	tmplfs "github.com/fuzzkit/fdp.go/fdpgen/templates"
)

// HarnessOptions configures fuzz-target generation.
type HarnessOptions struct {
	Script     string
	FuncName   string
	Package    string
	OutputPath string // empty means stdout
	Verbose    bool
}

// harnessTemplate drives fuzz-target generation.
//
// ParseFS returns templates named by their filenames; we parse the
// single harness template and execute it by name.
var harnessTemplate = template.Must(template.New("harness.go.tpl").ParseFS(tmplfs.FS, "harness.go.tpl"))

// RunHarness generates a Go fuzz target that decodes its input with
// the same op sequence the trace subcommand executes, formatted with
// goimports so unused imports in the skeleton are pruned.
func RunHarness(opts HarnessOptions) error {
	ops, err := ParseScript(opts.Script)
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}
	funcName := opts.FuncName
	if funcName == "" {
		funcName = "FuzzDecode"
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = "fuzz"
	}

	src, err := GenerateHarness(ops, pkg, funcName, opts.OutputPath)
	if err != nil {
		return err
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "fdpgen: generated %s with %d decode steps\n", funcName, len(ops))
	}
	if opts.OutputPath == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	return os.WriteFile(opts.OutputPath, src, 0o644)
}

// GenerateHarness renders the harness template for the op sequence and
// formats the result. outputPath only influences goimports' resolution
// and may be empty.
func GenerateHarness(ops []Op, pkg, funcName, outputPath string) ([]byte, error) {
	steps := make([]string, len(ops))
	for i, op := range ops {
		steps[i] = harnessStep(op)
	}

	data := struct {
		Package string
		Func    string
		Steps   []string
	}{
		Package: pkg,
		Func:    funcName,
		Steps:   steps,
	}

	var buf bytes.Buffer
	if err := harnessTemplate.ExecuteTemplate(&buf, "harness.go.tpl", data); err != nil {
		return nil, err
	}

	if outputPath == "" {
		outputPath = funcName + "_test.go"
	}
	src, err := imports.Process(outputPath, buf.Bytes(), nil)
	if err != nil {
		// Fall back to go/format if goimports fails.
		if formatted, ferr := format.Source(buf.Bytes()); ferr == nil {
			src = formatted
		} else {
			src = buf.Bytes()
		}
	}
	return src, nil
}

// harnessStep renders one decode statement for an op.
func harnessStep(op Op) string {
	t := op.Scalar.GoType()
	switch op.Kind {
	case OpBool:
		return "_ = p.ConsumeBool()"
	case OpIntegral:
		return fmt.Sprintf("_ = fdp.ConsumeIntegral[%s](p)", t)
	case OpIntegralRange:
		if op.Scalar.signed() {
			return fmt.Sprintf("_ = fdp.ConsumeIntegralInRange(p, %s(%d), %s(%d))", t, op.Lo, t, op.Hi)
		}
		return fmt.Sprintf("_ = fdp.ConsumeIntegralInRange(p, %s(%d), %s(%d))", t, op.ULo, t, op.UHi)
	case OpFloat:
		return fmt.Sprintf("_ = fdp.ConsumeFloatingPoint[%s](p)", t)
	case OpFloatRange:
		return fmt.Sprintf("_ = fdp.ConsumeFloatingPointInRange(p, %s(%s), %s(%s))",
			t, formatFloatBound(op.FLo), t, formatFloatBound(op.FHi))
	case OpProbability:
		return fmt.Sprintf("_ = fdp.ConsumeProbability[%s](p)", t)
	case OpBytes:
		return fmt.Sprintf("_ = p.ConsumeBytes(%d)", op.N)
	case OpString:
		return fmt.Sprintf("_ = p.ConsumeBytesAsString(%d)", op.N)
	case OpRandomString:
		if op.HasN {
			return fmt.Sprintf("_ = p.ConsumeRandomLengthString(%d)", op.N)
		}
		return "_ = p.ConsumeRemainingAsRandomLengthString()"
	case OpPick:
		return fmt.Sprintf("_ = fdp.ConsumeIntegralInRange(p, int64(0), int64(%d))", op.N-1)
	case OpEnum:
		return fmt.Sprintf("_ = fdp.ConsumeEnum(p, uint64(%d))", op.N)
	case OpRest:
		return "_ = p.ConsumeRemainingBytes()"
	}
	return "_ = p"
}

func formatFloatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
