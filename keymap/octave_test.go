package keymap

import "testing"

func TestOctaveClamp(t *testing.T) {
	o := NewOctave(0, 0, 8)
	if o.ShiftDown() {
		t.Fatal("shift down at minimum should report false")
	}
	if o.Value() != 0 {
		t.Fatalf("octave moved below minimum: %d", o.Value())
	}

	for i := 0; i < 8; i++ {
		if !o.ShiftUp() {
			t.Fatalf("shift up %d failed", i)
		}
	}
	if o.ShiftUp() {
		t.Fatal("shift up at maximum should report false")
	}
	if o.Value() != 8 {
		t.Fatalf("octave = %d, want 8", o.Value())
	}
}

func TestOctaveSetClamps(t *testing.T) {
	o := NewOctave(20, -1, 9)
	if o.Value() != 9 {
		t.Fatalf("start clamped to %d, want 9", o.Value())
	}
	o.Set(-5)
	if o.Value() != -1 {
		t.Fatalf("Set(-5) = %d, want -1", o.Value())
	}
}

func TestOctaveSwappedBounds(t *testing.T) {
	o := NewOctave(4, 8, 0)
	if o.Min() != 0 || o.Max() != 8 {
		t.Fatalf("bounds = [%d,%d], want [0,8]", o.Min(), o.Max())
	}
	if o.Value() != 4 {
		t.Fatalf("value = %d, want 4", o.Value())
	}
}
