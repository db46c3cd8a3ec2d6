package stack

import (
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/target"
)

// Manager is the operand-stack model described in spec.md §4.2. The
// Emitter never addresses the target's physical stack directly: every
// push, pop, and variable lookup goes through a Manager, which keeps
// the reachable window within backend.Config().StackDepth by spilling
// the least-recently-accessed named entry to a RAM region that starts
// at backend.Config().SpillRAMBase and grows upward.
//
// Anonymous entries (Name == "") are never spill candidates: by the
// time ensure_space runs they are either still needed at a shallow
// depth or already dead, and a dead value is never looked up again.
type Manager struct {
	entries []Entry
	clock   uint64
	backend target.Backend
	nextRAM uint64
	pending []string
}

// State is an opaque snapshot produced by SaveState, used by the
// Emitter to isolate a loop body's stack context and restore the
// enclosing layout once the body has been emitted.
type State struct {
	entries []Entry
	clock   uint64
	nextRAM uint64
}

func NewManager(backend target.Backend) *Manager {
	return &Manager{
		backend: backend,
		nextRAM: uint64(backend.Config().SpillRAMBase),
	}
}

func (m *Manager) Clear() {
	m.entries = m.entries[:0]
	m.clock = 0
}

func (m *Manager) Len() int { return len(m.entries) }

// PhysicalDepth is the number of field elements actually resident on
// the target's operand stack right now — spilled entries contribute
// zero. Invariant P1 (spec.md §8) requires this never exceed
// backend.Config().StackDepth.
func (m *Manager) PhysicalDepth() uint32 {
	var d uint32
	for i := range m.entries {
		if !m.entries[i].Spilled {
			d += m.entries[i].Width
		}
	}
	return d
}

func (m *Manager) tick() uint64 {
	m.clock++
	return m.clock
}

func (m *Manager) PushNamed(name string, width uint32) {
	m.entries = append(m.entries, Entry{Name: name, Width: width, LastAccess: m.tick()})
}

func (m *Manager) PushNamedArray(name string, width, elemWidth uint32) {
	m.entries = append(m.entries, Entry{Name: name, Width: width, ElemWidth: elemWidth, HasElem: true, LastAccess: m.tick()})
}

func (m *Manager) PushTemp(width uint32) {
	m.entries = append(m.entries, Entry{Width: width, LastAccess: m.tick()})
}

// Pop removes and returns the topmost entry, reloading it first if it
// had been spilled.
func (m *Manager) Pop() Entry {
	i := len(m.entries) - 1
	if m.entries[i].Spilled {
		m.reload(i)
	}
	e := m.entries[i]
	m.entries = m.entries[:i]
	return e
}

func (m *Manager) Top() *Entry {
	if len(m.entries) == 0 {
		return nil
	}
	return &m.entries[len(m.entries)-1]
}

// depthOfTop returns the depth (0 = top of the physical stack) at
// which entry i's own topmost word currently sits, counting only
// entries that are physically resident.
func (m *Manager) depthOfTop(i int) uint32 {
	var d uint32
	for j := i + 1; j < len(m.entries); j++ {
		if !m.entries[j].Spilled {
			d += m.entries[j].Width
		}
	}
	return d
}

// EnsureSpace spills named entries, oldest-accessed first, until w
// more field elements fit below backend.Config().StackDepth (spec.md
// §4.2, spill policy). It is a no-op once there is room, and gives up
// silently if no spillable entry remains — a well-typed program never
// asks for more headroom than its live named variables can yield.
func (m *Manager) EnsureSpace(w uint32) {
	depth := m.backend.Config().StackDepth
	for m.PhysicalDepth()+w > depth {
		victim := -1
		for i := range m.entries {
			e := &m.entries[i]
			if e.Name == "" || e.Spilled {
				continue
			}
			if victim == -1 || e.LastAccess < m.entries[victim].LastAccess {
				victim = i
			}
		}
		if victim == -1 {
			return
		}
		m.spill(victim)
	}
}

// spill writes entry i's words out to RAM one at a time, most
// significant (topmost) word first, and marks it Spilled. Each word is
// brought to the physical top with a single swap before the
// push/swap/write_mem/pop sequence spec.md §4.2 prescribes.
func (m *Manager) spill(i int) {
	e := &m.entries[i]
	e.SpillAddr = m.nextRAM
	m.nextRAM += uint64(e.Width)

	for range make([]struct{}, e.Width) {
		d := m.depthOfTop(i)
		if d > 0 {
			m.emit(m.backend.InstSwap(d))
		}
		word := m.nextWordAddr(e)
		m.emit(m.backend.InstPush(word))
		m.emit(m.backend.InstSwap(1))
		m.emit(m.backend.InstWriteMem(1))
		m.emit(m.backend.InstPop(1))
	}
	e.Spilled = true
}

// nextWordAddr returns, then retires, the address for the next word of
// entry e to be written during spill — topmost word goes to
// SpillAddr+Width-1 down to SpillAddr for the bottom word, so reload
// can push them back in the order that restores the original layout.
func (m *Manager) nextWordAddr(e *Entry) uint64 {
	if e.spillCursor == 0 {
		e.spillCursor = e.Width
	}
	e.spillCursor--
	return e.SpillAddr + uint64(e.spillCursor)
}

// reload pushes entry i's words back from RAM, bottom word first so
// the top word lands on top, and clears Spilled.
func (m *Manager) reload(i int) {
	e := &m.entries[i]
	for k := uint32(0); k < e.Width; k++ {
		addr := e.SpillAddr + uint64(k)
		m.emit(m.backend.InstPush(addr))
		m.emit(m.backend.InstReadMem(1))
		m.emit(m.backend.InstPop(1))
	}
	e.Spilled = false
	e.spillCursor = 0
}

// AccessVar marks name as just-used, reloading it first if it had been
// spilled, and returns its current depth.
func (m *Manager) AccessVar(name string) (uint32, bool) {
	i := m.findIndex(name)
	if i == -1 {
		return 0, false
	}
	if m.entries[i].Spilled {
		m.reload(i)
	}
	m.entries[i].LastAccess = m.tick()
	return m.depthOfTop(i), true
}

func (m *Manager) findIndex(name string) int {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Name == name {
			return i
		}
	}
	return -1
}

// FindVarDepth reports name's current depth without touching its
// LRU recency. Callers use this after AccessVar has already guaranteed
// the variable is resident.
func (m *Manager) FindVarDepth(name string) (uint32, bool) {
	i := m.findIndex(name)
	if i == -1 {
		return 0, false
	}
	return m.depthOfTop(i), true
}

func (m *Manager) FindVarDepthAndWidth(name string) (uint32, uint32, bool) {
	i := m.findIndex(name)
	if i == -1 {
		return 0, 0, false
	}
	return m.depthOfTop(i), m.entries[i].Width, true
}

// SpillAllNamed forces every still-resident named entry to RAM. The
// Emitter calls this before emitting an inline asm block, so the asm
// text sees a stack holding no named variables.
func (m *Manager) SpillAllNamed() {
	for i := range m.entries {
		if m.entries[i].Name != "" && !m.entries[i].Spilled {
			m.spill(i)
		}
	}
}

func (m *Manager) SaveState() State {
	cp := make([]Entry, len(m.entries))
	copy(cp, m.entries)
	return State{entries: cp, clock: m.clock, nextRAM: m.nextRAM}
}

func (m *Manager) RestoreState(s State) {
	cp := make([]Entry, len(s.entries))
	copy(cp, s.entries)
	m.entries = cp
	m.clock = s.clock
	m.nextRAM = s.nextRAM
}

// DrainSideEffects empties and returns the spill/reload instructions
// queued since the last drain, in emission order.
func (m *Manager) DrainSideEffects() []string {
	out := m.pending
	m.pending = nil
	return out
}

func (m *Manager) emit(s string) {
	m.pending = append(m.pending, s)
}

// Describe is a debugging aid used by tests to assert on the modeled
// layout without reaching into unexported fields from another package.
func (m *Manager) Describe() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		status := "live"
		if e.Spilled {
			status = "spilled"
		}
		name := e.Name
		if name == "" {
			name = "<anon>"
		}
		out[i] = fmt.Sprintf("%s:%d:%s", name, e.Width, status)
	}
	return out
}
