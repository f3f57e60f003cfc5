package main

import (
	"github.com/alecthomas/kong"

	"github.com/fuzzkit/fdp.go/fdpgen/core"
)

// CLI defines the fdpgen command-line interface.
//
// Two subcommands share one op-script language:
//   - trace: decode a corpus file step by step and dump every decoded
//     value, for inspecting what a fuzz target will see.
//   - harness: emit a Go fuzz target performing the same decode
//     sequence, so the script can be replayed under `go test -fuzz`.
type CLI struct {
	Trace   TraceCmd   `cmd:"" help:"Decode a corpus file against an op script and dump the value trace."`
	Harness HarnessCmd `cmd:"" help:"Generate a Go fuzz target source file from an op script."`

	Verbose bool `short:"v" help:"Enable verbose diagnostics"`
}

// TraceCmd decodes a corpus file and prints the decoded values.
type TraceCmd struct {
	Corpus string `arg:"" help:"Corpus file to decode." type:"existingfile"`
	Script string `short:"s" required:"" help:"Op script, e.g. \"u32 bool str:16 range:i32:10:30\"."`
	Format string `short:"f" default:"json" enum:"json,cbor,msgpack" help:"Trace output format."`
	Output string `short:"o" help:"Output file (defaults to stdout)."`
}

// HarnessCmd generates a fuzz target source file.
type HarnessCmd struct {
	Script  string `short:"s" required:"" help:"Op script describing the decode sequence."`
	Func    string `default:"FuzzDecode" help:"Name of the generated fuzz function."`
	Package string `default:"fuzz" help:"Package name of the generated file."`
	Output  string `short:"o" help:"Output .go file (defaults to stdout)."`
}

func (c *TraceCmd) Run(cli *CLI) error {
	return core.RunTrace(core.TraceOptions{
		CorpusPath: c.Corpus,
		Script:     c.Script,
		Format:     c.Format,
		OutputPath: c.Output,
		Verbose:    cli.Verbose,
	})
}

func (c *HarnessCmd) Run(cli *CLI) error {
	return core.RunHarness(core.HarnessOptions{
		Script:     c.Script,
		FuncName:   c.Func,
		Package:    c.Package,
		OutputPath: c.Output,
		Verbose:    cli.Verbose,
	})
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fdpgen"),
		kong.Description("Inspect and scaffold deterministic fuzz-input decoding."),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
