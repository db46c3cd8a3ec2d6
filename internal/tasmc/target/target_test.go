package target

import "testing"

func TestNewResolvesAllPublishedBackends(t *testing.T) {
	t.Run("triton", func(t *testing.T) {
		b, err := New("triton")
		if err != nil {
			t.Fatalf("New(triton) failed: %v", err)
		}
		if got := b.InstPush(5); got != "push 5" {
			t.Errorf("InstPush(5) = %q, want %q", got, "push 5")
		}
		if got := b.InstCall("__main"); got != "call __main" {
			t.Errorf("InstCall = %q", got)
		}
	})

	t.Run("miden", func(t *testing.T) {
		b, err := New("miden")
		if err != nil {
			t.Fatalf("New(miden) failed: %v", err)
		}
		if got := b.InstPush(5); got != "push.5" {
			t.Errorf("InstPush(5) = %q, want %q", got, "push.5")
		}
		if got := b.InstPop(3); got != "drop\n    drop\n    drop" {
			t.Errorf("InstPop(3) = %q", got)
		}
	})

	t.Run("openvm", func(t *testing.T) {
		b, err := New("openvm")
		if err != nil {
			t.Fatalf("New(openvm) failed: %v", err)
		}
		if got := b.InstReturn(); got != "RET" {
			t.Errorf("InstReturn = %q", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := New("cairo"); err == nil {
			t.Fatalf("expected an error for an unimplemented backend")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultTritonConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default triton config should validate: %v", err)
	}

	broken := *cfg
	broken.StackDepth = 0
	if err := broken.Validate(); err == nil {
		t.Fatalf("expected a validation error for zero stack depth")
	}
}

func TestNormalizeLiteralReducesModField(t *testing.T) {
	cfg := DefaultTritonConfig()
	over := cfg.FieldModulus + 41
	if got := cfg.NormalizeLiteral(over); got != 41 {
		t.Errorf("NormalizeLiteral(%d) = %d, want 41", over, got)
	}
}
