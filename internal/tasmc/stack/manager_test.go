package stack

import (
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/target"
)

func newTestManager(t *testing.T, stackDepth uint32) *Manager {
	t.Helper()
	b, err := target.New("triton")
	if err != nil {
		t.Fatalf("target.New: %v", err)
	}
	b.Config().StackDepth = stackDepth
	return NewManager(b)
}

func TestPhysicalDepthTracksPushesAndPops(t *testing.T) {
	m := newTestManager(t, 16)
	m.PushNamed("a", 1)
	m.PushTemp(2)
	if got := m.PhysicalDepth(); got != 3 {
		t.Fatalf("PhysicalDepth = %d, want 3", got)
	}
	m.Pop()
	if got := m.PhysicalDepth(); got != 1 {
		t.Fatalf("PhysicalDepth after pop = %d, want 1", got)
	}
}

func TestFindVarDepthReflectsPushOrder(t *testing.T) {
	m := newTestManager(t, 16)
	m.PushNamed("a", 1)
	m.PushNamed("b", 2)
	d, ok := m.FindVarDepth("b")
	if !ok || d != 0 {
		t.Fatalf("FindVarDepth(b) = %d,%v want 0,true", d, ok)
	}
	d, ok = m.FindVarDepth("a")
	if !ok || d != 2 {
		t.Fatalf("FindVarDepth(a) = %d,%v want 2,true", d, ok)
	}
}

// TestEnsureSpaceSpillsOldestNamedFirst checks invariant P1 (spec.md
// §8): physical depth never exceeds the backend's stack_depth once
// EnsureSpace has run, and the least-recently-accessed named entry is
// the one evicted.
func TestEnsureSpaceSpillsOldestNamedFirst(t *testing.T) {
	m := newTestManager(t, 4)
	m.PushNamed("old", 1)
	m.PushNamed("mid", 1)
	m.AccessVar("mid")
	m.PushNamed("new", 1)

	m.EnsureSpace(2)

	if got := m.PhysicalDepth(); got > 4 {
		t.Fatalf("PhysicalDepth = %d, exceeds stack_depth 4", got)
	}
	i := m.findIndex("old")
	if !m.entries[i].Spilled {
		t.Fatalf("expected the least-recently-accessed entry %q to be spilled", "old")
	}
	if m.entries[m.findIndex("mid")].Spilled {
		t.Fatalf("more recently accessed entry %q should not have been spilled", "mid")
	}
}

func TestAccessVarReloadsSpilledEntry(t *testing.T) {
	m := newTestManager(t, 2)
	m.PushNamed("a", 1)
	m.PushNamed("b", 1)
	m.EnsureSpace(1) // forces "a" to spill to make room

	if !m.entries[m.findIndex("a")].Spilled {
		t.Fatalf("expected a to be spilled before access")
	}
	m.DrainSideEffects()

	if _, ok := m.AccessVar("a"); !ok {
		t.Fatalf("AccessVar(a) should find the entry")
	}
	if m.entries[m.findIndex("a")].Spilled {
		t.Fatalf("AccessVar should have reloaded a")
	}
	if len(m.DrainSideEffects()) == 0 {
		t.Fatalf("expected reload instructions to be queued")
	}
}

func TestSpillAllNamedLeavesNoLiveNamedEntry(t *testing.T) {
	m := newTestManager(t, 16)
	m.PushNamed("a", 1)
	m.PushNamed("b", 3)
	m.PushTemp(1)

	m.SpillAllNamed()

	for _, e := range m.entries {
		if e.Name != "" && !e.Spilled {
			t.Fatalf("named entry %q still live after SpillAllNamed", e.Name)
		}
	}
}

func TestSaveRestoreStateRoundTrips(t *testing.T) {
	m := newTestManager(t, 16)
	m.PushNamed("a", 1)
	snap := m.SaveState()

	m.PushNamed("b", 2)
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries before restore, got %d", m.Len())
	}

	m.RestoreState(snap)
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry after restore, got %d", m.Len())
	}
	if _, ok := m.FindVarDepth("b"); ok {
		t.Fatalf("b should not exist after restoring the pre-push snapshot")
	}
}

func TestAnonymousEntriesAreNeverSpillCandidates(t *testing.T) {
	m := newTestManager(t, 2)
	m.PushTemp(1)
	m.PushNamed("only", 1)

	m.EnsureSpace(1)

	if m.entries[0].Spilled {
		t.Fatalf("anonymous entry must never be spilled")
	}
}
