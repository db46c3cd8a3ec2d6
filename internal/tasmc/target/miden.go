package target

import (
	"fmt"
	"strings"
)

// MidenBackend targets Miden VM: dot-separated operands (`push.5`,
// `dup.3`), `drop` in place of `pop 1` (so a batched pop of n becomes n
// repeated `drop`s), `exec.L` for call, and `end` in place of `return`.
type MidenBackend struct {
	cfg *Config
}

func NewMidenBackend() *MidenBackend {
	return &MidenBackend{cfg: DefaultMidenConfig()}
}

func (b *MidenBackend) Config() *Config { return b.cfg }

func (b *MidenBackend) InstPush(v uint64) string {
	return fmt.Sprintf("push.%d", b.cfg.NormalizeLiteral(v))
}

func (b *MidenBackend) InstPop(n uint32) string {
	drops := make([]string, n)
	for i := range drops {
		drops[i] = "drop"
	}
	return strings.Join(drops, "\n    ")
}
func (b *MidenBackend) InstDup(d uint32) string      { return fmt.Sprintf("dup.%d", d) }
func (b *MidenBackend) InstSwap(d uint32) string     { return fmt.Sprintf("swap.%d", d) }
func (b *MidenBackend) InstAdd() string              { return "add" }
func (b *MidenBackend) InstMul() string              { return "mul" }
func (b *MidenBackend) InstEq() string                { return "eq" }
func (b *MidenBackend) InstLt() string                { return "lt" }
func (b *MidenBackend) InstAnd() string               { return "and" }
func (b *MidenBackend) InstXor() string               { return "xor" }
func (b *MidenBackend) InstDivMod() string            { return "u32divmod" }
func (b *MidenBackend) InstXbMul() string             { return "ext2mul" }
func (b *MidenBackend) InstInvert() string            { return "inv" }
func (b *MidenBackend) InstXInvert() string           { return "ext2inv" }
func (b *MidenBackend) InstSplit() string             { return "u32split" }
func (b *MidenBackend) InstLog2() string              { return "ilog2" }
func (b *MidenBackend) InstPow() string               { return "exp" }
func (b *MidenBackend) InstPopCount() string          { return "u32popcnt" }
func (b *MidenBackend) InstHash() string              { return "hperm" }
func (b *MidenBackend) InstSpongeInit() string        { return "hinit" }
func (b *MidenBackend) InstSpongeAbsorb() string      { return "habsorb" }
func (b *MidenBackend) InstSpongeSqueeze() string     { return "hsqueeze" }
func (b *MidenBackend) InstSpongeAbsorbMem() string   { return "habsorb.mem" }
func (b *MidenBackend) InstMerkleStep() string        { return "mtree_get" }
func (b *MidenBackend) InstMerkleStepMem() string     { return "mtree_get.mem" }
func (b *MidenBackend) InstPushNegOne() string        { return "push.-1" }
func (b *MidenBackend) InstAssert() string            { return "assert" }
func (b *MidenBackend) InstAssertVector() string      { return "assert_eqw" }
func (b *MidenBackend) InstSkiz() string              { return "skiz" }
func (b *MidenBackend) InstCall(label string) string  { return fmt.Sprintf("exec.%s", label) }
func (b *MidenBackend) InstReturn() string            { return "end" }
func (b *MidenBackend) InstRecurse() string           { return "recurse" }
func (b *MidenBackend) InstHalt() string              { return "end" }
func (b *MidenBackend) InstReadIO(n uint32) string    { return fmt.Sprintf("adv_push.%d", n) }
func (b *MidenBackend) InstWriteIO(n uint32) string   { return fmt.Sprintf("push_out.%d", n) }
func (b *MidenBackend) InstDivine(n uint32) string    { return fmt.Sprintf("adv_push.%d", n) }
func (b *MidenBackend) InstReadMem(n uint32) string   { return fmt.Sprintf("mem_load.%d", n) }
func (b *MidenBackend) InstWriteMem(n uint32) string  { return fmt.Sprintf("mem_store.%d", n) }
func (b *MidenBackend) InstXXDotStep() string         { return "ext2dot" }
func (b *MidenBackend) InstXBDotStep() string          { return "ext2bdot" }
