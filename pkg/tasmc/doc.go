// Package tasmc provides the public API of the compiler core: turning a
// type-checked program into assembly for a stack-based zero-knowledge
// proving VM.
//
// # Architecture
//
// - pkg/tasmc/: Public API (this package)
// - internal/tasmc/: Private implementation (not importable)
//
// The core pipeline is three stages, each a package under internal/tasmc:
//
//   - stack: an LRU-tracked operand-stack model that decides when a named
//     value must spill to RAM and reloads it on next access.
//   - mono: resolves each call to a size-generic function to one concrete
//     instance and assigns it a stable mangled label.
//   - codegen: walks the checked AST and emits target instruction text,
//     addressing the operand stack only through the stack model and
//     spelling every instruction only through a target.Backend.
//
// # Quick Start
//
//	opts := tasmc.DefaultCompileOptions().WithTarget("triton")
//	out, err := tasmc.Compile(file, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Assembly)
//
// # Scope
//
// Lexing, parsing, type checking, conditional-compilation filtering, and
// recursion detection happen upstream of this package; Compile consumes
// an already-checked *ast.File.
package tasmc
