package tasmc

import (
	"github.com/vybium/tasmc/internal/tasmc/codegen"
	"github.com/vybium/tasmc/internal/tasmc/linker"
	"github.com/vybium/tasmc/internal/tasmc/target"
)

// Compile emits file's complete target-assembly text for opts.Target,
// wiring the Stack Manager, Codegen Emitter, and Monomorphizer
// (internal/tasmc/stack, codegen, mono) into the single pass spec.md
// §4 describes.
func Compile(file *File, opts CompileOptions) (*CompileResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	backend, err := target.New(opts.Target)
	if err != nil {
		return nil, &CompileError{Code: ErrUnknownTarget, Message: "resolving backend", Cause: err}
	}

	e := codegen.New(backend).
		WithModuleAliases(opts.ModuleAliases).
		WithConstants(opts.Constants).
		WithCallResolutions(opts.CallResolutions).
		WithStrictMode(opts.StrictMode)
	if opts.CfgFlags != nil {
		e.WithCfgFlags(opts.CfgFlags)
	}

	asm := e.EmitFile(file)
	diags := e.Diagnostics()

	if opts.StrictMode && len(diags) > 0 {
		return nil, &CompileError{Code: ErrCompilerBug, Message: diags[0]}
	}

	return &CompileResult{
		Assembly:    asm,
		Target:      backend.Config().Name,
		Diagnostics: diags,
	}, nil
}

// LinkResult is the output of linking several already-compiled module
// listings into one program.
type LinkResult struct {
	// Assembly is the complete stitched program text.
	Assembly string
}

// Link stitches listings (module name -> its compiled assembly text)
// behind a single entry wrapper calling entryLabel, per spec.md §4.5.
// When opts.EmitModuleDigest is set, a trailing SHA3-256 fingerprint
// comment is appended.
func Link(entryLabel string, listings map[string]string, opts CompileOptions) LinkResult {
	if opts.EmitModuleDigest {
		return LinkResult{Assembly: linker.StitchWithDigest(entryLabel, listings)}
	}
	return LinkResult{Assembly: linker.Stitch(entryLabel, listings)}
}
