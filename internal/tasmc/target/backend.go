package target

import "fmt"

// Backend is the narrow polymorphic interface over the capability set
// spec.md §4.1 names. Every method returns the exact instruction text;
// the Emitter never inlines a spelling — everything flows through here.
type Backend interface {
	Config() *Config

	InstPush(v uint64) string
	InstPop(n uint32) string
	InstDup(d uint32) string
	InstSwap(d uint32) string
	InstAdd() string
	InstMul() string
	InstEq() string
	InstLt() string
	InstAnd() string
	InstXor() string
	InstDivMod() string
	InstXbMul() string
	InstInvert() string
	InstXInvert() string
	InstSplit() string
	InstLog2() string
	InstPow() string
	InstPopCount() string
	InstHash() string
	InstSpongeInit() string
	InstSpongeAbsorb() string
	InstSpongeSqueeze() string
	InstSpongeAbsorbMem() string
	InstMerkleStep() string
	InstMerkleStepMem() string
	InstPushNegOne() string
	InstAssert() string
	InstAssertVector() string
	InstSkiz() string
	InstCall(label string) string
	InstReturn() string
	InstRecurse() string
	InstHalt() string
	InstReadIO(n uint32) string
	InstWriteIO(n uint32) string
	InstDivine(n uint32) string
	InstReadMem(n uint32) string
	InstWriteMem(n uint32) string
	InstXXDotStep() string
	InstXBDotStep() string
}

// New resolves a backend by target name. CairoBackend and SP1Backend are
// intentionally not implemented — see DESIGN.md for why.
func New(name string) (Backend, error) {
	switch name {
	case "triton":
		return NewTritonBackend(), nil
	case "miden":
		return NewMidenBackend(), nil
	case "openvm":
		return NewOpenVMBackend(), nil
	default:
		return nil, fmt.Errorf("target: unknown backend %q", name)
	}
}
