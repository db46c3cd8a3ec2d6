// Package stack implements the LRU-tracked operand-stack model described
// in spec.md §4.2: it lets the Emitter pretend the physical stack has
// unlimited depth, transparently spilling evicted named variables to a
// RAM region and reloading them on demand so that direct-access
// instructions (dup, swap) never address beyond the target's reachable
// window.
package stack

// Entry is one logical value living on the operand stack (spec.md §3,
// "Stack entry"). An empty Name marks an anonymous intermediate — anonymous
// entries are never spilled (spec.md §4.2, spill policy step 1): if one
// ends up out of reach it is already below the live computation window
// and will never be referenced again.
type Entry struct {
	Name       string // "" for anonymous temporaries
	Width      uint32
	ElemWidth  uint32 // 0 when the entry isn't an array
	HasElem    bool
	LastAccess uint64
	SpillAddr  uint64
	Spilled    bool

	// spillCursor counts down from Width while a multi-word entry is
	// being written out word by word; reset to 0 once reloaded.
	spillCursor uint32
}

func (e *Entry) named() bool { return e.Name != "" }
