package dispatch

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// shaderSource is the build-time WGSL asset compiled into the binary.
//
//go:embed main.wgsl
var shaderSource string

// resolveEntryPoint validates WGSL source with naga and returns the name of
// its sole entry point. The wgpu bindings need an explicit entry-point name,
// so the defaulting rule (a shader with exactly one compute entry point needs
// none) is applied here instead.
func resolveEntryPoint(source string) (string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return "", fmt.Errorf("dispatch: shader parse failed: %w", err)
	}

	mod, err := naga.Lower(ast)
	if err != nil {
		return "", fmt.Errorf("dispatch: shader validation failed: %w", err)
	}

	if n := len(mod.EntryPoints); n != 1 {
		return "", fmt.Errorf("dispatch: shader must declare exactly one compute entry point, found %d", n)
	}
	return mod.EntryPoints[0].Name, nil
}
