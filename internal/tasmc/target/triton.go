package target

import "fmt"

// TritonBackend targets Triton VM: space-separated operands, `pop n`,
// `call L`/`return`/`recurse`, and a five-element Tip5 digest. This is
// the primary back-end; every invariant in spec.md §8 is exercised
// against it first.
type TritonBackend struct {
	cfg *Config
}

func NewTritonBackend() *TritonBackend {
	return &TritonBackend{cfg: DefaultTritonConfig()}
}

func (b *TritonBackend) Config() *Config { return b.cfg }

func (b *TritonBackend) InstPush(v uint64) string {
	return fmt.Sprintf("push %d", b.cfg.NormalizeLiteral(v))
}
func (b *TritonBackend) InstPop(n uint32) string      { return fmt.Sprintf("pop %d", n) }
func (b *TritonBackend) InstDup(d uint32) string      { return fmt.Sprintf("dup %d", d) }
func (b *TritonBackend) InstSwap(d uint32) string     { return fmt.Sprintf("swap %d", d) }
func (b *TritonBackend) InstAdd() string              { return "add" }
func (b *TritonBackend) InstMul() string              { return "mul" }
func (b *TritonBackend) InstEq() string               { return "eq" }
func (b *TritonBackend) InstLt() string               { return "lt" }
func (b *TritonBackend) InstAnd() string              { return "and" }
func (b *TritonBackend) InstXor() string              { return "xor" }
func (b *TritonBackend) InstDivMod() string           { return "div_mod" }
func (b *TritonBackend) InstXbMul() string            { return "xb_mul" }
func (b *TritonBackend) InstInvert() string           { return "invert" }
func (b *TritonBackend) InstXInvert() string          { return "x_invert" }
func (b *TritonBackend) InstSplit() string            { return "split" }
func (b *TritonBackend) InstLog2() string             { return "log_2_floor" }
func (b *TritonBackend) InstPow() string              { return "pow" }
func (b *TritonBackend) InstPopCount() string         { return "pop_count" }
func (b *TritonBackend) InstHash() string             { return "hash" }
func (b *TritonBackend) InstSpongeInit() string       { return "sponge_init" }
func (b *TritonBackend) InstSpongeAbsorb() string     { return "sponge_absorb" }
func (b *TritonBackend) InstSpongeSqueeze() string    { return "sponge_squeeze" }
func (b *TritonBackend) InstSpongeAbsorbMem() string  { return "sponge_absorb_mem" }
func (b *TritonBackend) InstMerkleStep() string       { return "merkle_step" }
func (b *TritonBackend) InstMerkleStepMem() string    { return "merkle_step_mem" }
func (b *TritonBackend) InstPushNegOne() string       { return "push -1" }
func (b *TritonBackend) InstAssert() string           { return "assert" }
func (b *TritonBackend) InstAssertVector() string     { return "assert_vector" }
func (b *TritonBackend) InstSkiz() string             { return "skiz" }
func (b *TritonBackend) InstCall(label string) string { return fmt.Sprintf("call %s", label) }
func (b *TritonBackend) InstReturn() string           { return "return" }
func (b *TritonBackend) InstRecurse() string          { return "recurse" }
func (b *TritonBackend) InstHalt() string             { return "halt" }
func (b *TritonBackend) InstReadIO(n uint32) string   { return fmt.Sprintf("read_io %d", n) }
func (b *TritonBackend) InstWriteIO(n uint32) string  { return fmt.Sprintf("write_io %d", n) }
func (b *TritonBackend) InstDivine(n uint32) string   { return fmt.Sprintf("divine %d", n) }
func (b *TritonBackend) InstReadMem(n uint32) string  { return fmt.Sprintf("read_mem %d", n) }
func (b *TritonBackend) InstWriteMem(n uint32) string { return fmt.Sprintf("write_mem %d", n) }
func (b *TritonBackend) InstXXDotStep() string        { return "xx_dot_step" }
func (b *TritonBackend) InstXBDotStep() string         { return "xb_dot_step" }
