package templates

import "embed"

// FS exposes the codegen templates used by fdpgen
// for fuzz-target scaffolding.
//
//go:embed *.go.tpl
var FS embed.FS
