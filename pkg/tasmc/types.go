package tasmc

import (
	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/internal/tasmc/mono"
)

// File is a single compilation unit; see ast.File for its full shape.
type File = ast.File

// ModuleInstance identifies one concrete specialization of a
// size-generic function a caller may want to pre-seed, e.g. when
// linking against a module compiled in a separate Compile call.
type ModuleInstance = mono.Instance

// CompileOptions configures a single Compile call.
type CompileOptions struct {
	// Target names the backend to emit for: "triton", "miden", or
	// "openvm".
	Target string

	// ModuleAliases maps a short import alias to the fully-qualified
	// module path it denotes, for cross-module call resolution.
	ModuleAliases map[string]string

	// Constants seeds named constant values a compiled file's
	// qualified references may resolve against.
	Constants map[string]uint64

	// CfgFlags controls which #[cfg(name)]-gated items are included.
	CfgFlags map[string]bool

	// CallResolutions supplies, in call-site order, the size
	// arguments for generic calls that omit explicit generic
	// arguments and aren't inside an already-monomorphized body.
	CallResolutions []ModuleInstance

	// EmitModuleDigest appends a SHA3-256 fingerprint comment to the
	// linked output when Link is used instead of a single Compile.
	EmitModuleDigest bool

	// StrictMode turns an emission-time compiler-bug signal (an
	// unresolved field, an unreachable variable, or an unknown
	// intrinsic) into a returned error, in addition to the inline
	// `// BUG:`/`// ERROR:` comment the Emitter always produces.
	StrictMode bool
}

// DefaultCompileOptions returns the options for a standalone program
// compiled for the primary backend with no cross-module wiring.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Target:        "triton",
		ModuleAliases: map[string]string{},
		Constants:     map[string]uint64{},
		CfgFlags:      map[string]bool{"debug": true},
	}
}

func (o CompileOptions) WithTarget(name string) CompileOptions {
	o.Target = name
	return o
}

func (o CompileOptions) WithModuleAliases(aliases map[string]string) CompileOptions {
	o.ModuleAliases = aliases
	return o
}

func (o CompileOptions) WithConstants(consts map[string]uint64) CompileOptions {
	o.Constants = consts
	return o
}

func (o CompileOptions) WithCfgFlags(flags map[string]bool) CompileOptions {
	o.CfgFlags = flags
	return o
}

func (o CompileOptions) WithCallResolutions(res []ModuleInstance) CompileOptions {
	o.CallResolutions = res
	return o
}

func (o CompileOptions) WithModuleDigest(on bool) CompileOptions {
	o.EmitModuleDigest = on
	return o
}

func (o CompileOptions) WithStrictMode(on bool) CompileOptions {
	o.StrictMode = on
	return o
}

// Validate reports an option set that could never produce correct
// assembly.
func (o CompileOptions) Validate() error {
	switch o.Target {
	case "triton", "miden", "openvm":
		return nil
	default:
		return &CompileError{Code: ErrUnknownTarget, Message: "unknown target " + o.Target}
	}
}

// CompileResult is the output of a single Compile call.
type CompileResult struct {
	// Assembly is the complete target-assembly text for the file.
	Assembly string

	// Target is the resolved backend name, echoing CompileOptions.Target.
	Target string

	// MonoInstances is not filled in by Compile and is always nil; the
	// monomorphized instances a file required are not reported here.
	MonoInstances []ModuleInstance

	// Diagnostics lists every emission-time compiler-bug signal
	// recorded while compiling the file, regardless of StrictMode.
	Diagnostics []string
}
