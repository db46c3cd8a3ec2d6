// Package target names the stack-based VMs the compiler core can emit
// for: the digest width, hash rate, extension-field width, the number of
// u32 limbs a field element decomposes into, the direct-access stack
// depth, and the RAM base address the Stack Manager's spill region starts
// from. It also supplies the Backend capability interface (spec.md §4.1)
// so the Emitter never hard-codes an instruction spelling.
package target

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Config is the immutable, per-compilation target configuration
// (spec.md §3, "Target configuration").
type Config struct {
	// Name is the symbolic target name (e.g. "triton", "miden", "openvm").
	Name string

	// Extension is the output file extension, dot included (e.g. ".tasm").
	Extension string

	// DigestWidth is the number of field elements per digest.
	DigestWidth uint32

	// XFieldWidth is the extension-field degree (0 if the target has
	// none).
	XFieldWidth uint32

	// HashRate is the number of field elements one hash invocation
	// consumes.
	HashRate uint32

	// FieldLimbs is the number of u32 limbs one field element
	// decomposes into via `split`.
	FieldLimbs uint32

	// StackDepth is the maximum depth directly reachable by dup/swap.
	StackDepth uint32

	// SpillRAMBase is the first RAM address the Stack Manager's spill
	// allocator may use.
	SpillRAMBase uint64

	// FieldModulus is the prime the target's base field is defined
	// over; literal operands are normalized mod this value before
	// being formatted (see Backend.InstPush).
	FieldModulus uint64
}

// Validate reports a configuration that could never produce correct
// assembly: zero-width digests, a stack depth of zero, and similar.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("target: name must not be empty")
	}
	if c.DigestWidth == 0 {
		return fmt.Errorf("target %s: digest width must be positive", c.Name)
	}
	if c.HashRate == 0 {
		return fmt.Errorf("target %s: hash rate must be positive", c.Name)
	}
	if c.FieldLimbs == 0 {
		return fmt.Errorf("target %s: field limbs must be positive", c.Name)
	}
	if c.StackDepth == 0 {
		return fmt.Errorf("target %s: stack depth must be positive", c.Name)
	}
	if c.FieldModulus < 2 {
		return fmt.Errorf("target %s: field modulus must exceed 1", c.Name)
	}
	return nil
}

// WithSpillRAMBase returns a copy of the config with a different spill
// base address, for tests that want a deterministic small address space.
func (c Config) WithSpillRAMBase(addr uint64) *Config {
	c.SpillRAMBase = addr
	return &c
}

// NormalizeLiteral reduces v modulo the target's field modulus using the
// teacher's own field-element type, so that a constant folded at compile
// time (e.g. a `seal` zero-padding, or a module-qualified constant) is
// always pushed as a canonical residue rather than a raw source integer.
func (c *Config) NormalizeLiteral(v uint64) uint64 {
	return field.New(v).Value() % c.FieldModulus
}

// DefaultTritonConfig is the primary backend's configuration, matching
// Triton VM's real parameters.
func DefaultTritonConfig() *Config {
	return &Config{
		Name:         "triton",
		Extension:    ".tasm",
		DigestWidth:  5,
		XFieldWidth:  3,
		HashRate:     10,
		FieldLimbs:   2,
		StackDepth:   16,
		SpillRAMBase: 1 << 30,
		FieldModulus: 18446744069414584321, // Goldilocks: 2^64 - 2^32 + 1
	}
}

// DefaultMidenConfig is the Miden VM alternate backend's configuration.
func DefaultMidenConfig() *Config {
	return &Config{
		Name:         "miden",
		Extension:    ".masm",
		DigestWidth:  4,
		XFieldWidth:  0,
		HashRate:     8,
		FieldLimbs:   2,
		StackDepth:   16,
		SpillRAMBase: 1 << 30,
		FieldModulus: 18446744069414584321,
	}
}

// DefaultOpenVMConfig is the OpenVM alternate backend's configuration.
func DefaultOpenVMConfig() *Config {
	return &Config{
		Name:         "openvm",
		Extension:    ".ovm",
		DigestWidth:  8,
		XFieldWidth:  0,
		HashRate:     17,
		FieldLimbs:   1,
		StackDepth:   16,
		SpillRAMBase: 1 << 30,
		FieldModulus: 2013265921, // BabyBear
	}
}
