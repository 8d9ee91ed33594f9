package synth

import (
	"reflect"
	"testing"

	"jonika/input"
	"jonika/keymap"
)

func newTestKeyboard(start int, opts ...KeyboardOption) (*input.Listener, *Engine, *Keyboard) {
	l := input.NewListener()
	e := NewEngine()
	oct := keymap.NewOctave(start, keymap.DefaultMinOctave, keymap.DefaultMaxOctave)
	return l, e, NewKeyboard(l, e, oct, opts...)
}

func TestKeyboardPlaysNotes(t *testing.T) {
	l, e, _ := newTestKeyboard(4)

	l.KeyDown("a")
	l.KeyDown("a")
	l.KeyDown("k")
	if got := e.Active(); !reflect.DeepEqual(got, []int{48, 60}) {
		t.Fatalf("Active() = %v, want [48 60]", got)
	}
	v, _ := e.Voice(48)
	if v.Velocity != DefaultVelocity {
		t.Fatalf("velocity = %d", v.Velocity)
	}

	l.KeyUp("a")
	if got := e.Active(); !reflect.DeepEqual(got, []int{60}) {
		t.Fatalf("Active() = %v, want [60]", got)
	}
}

func TestKeyboardIgnoresUnmappedKeys(t *testing.T) {
	l, e, _ := newTestKeyboard(4)
	l.KeyDown("q")
	l.KeyUp("q")
	l.KeyUp("a")
	if len(e.Active()) != 0 {
		t.Fatalf("Active() = %v", e.Active())
	}
}

func TestKeyboardOctaveClamp(t *testing.T) {
	l, _, kb := newTestKeyboard(keymap.DefaultMinOctave)

	l.KeyDown("z")
	l.KeyUp("z")
	if kb.Octave() != keymap.DefaultMinOctave {
		t.Fatalf("octave went below minimum: %d", kb.Octave())
	}

	kb.ShiftOctave(100)
	l.KeyDown("x")
	l.KeyUp("x")
	if kb.Octave() != keymap.DefaultMaxOctave {
		t.Fatalf("octave went above maximum: %d", kb.Octave())
	}
}

func TestKeyboardOctaveShiftWhileHolding(t *testing.T) {
	l, e, kb := newTestKeyboard(4)

	l.KeyDown("a")
	l.KeyDown("x")
	if kb.Octave() != 5 {
		t.Fatalf("octave = %d, want 5", kb.Octave())
	}
	if !e.IsActive(48) {
		t.Fatal("held note changed by octave shift")
	}

	l.KeyUp("a")
	if len(e.Active()) != 0 {
		t.Fatalf("note stranded after shift: %v", e.Active())
	}

	l.KeyDown("a")
	if !e.IsActive(60) {
		t.Fatalf("Active() = %v, want [60]", e.Active())
	}
}

func TestKeyboardCustomKeys(t *testing.T) {
	l, e, kb := newTestKeyboard(4, WithOctaveKeys("-", "="), WithVelocity(64))
	l.KeyDown("=")
	if kb.Octave() != 5 {
		t.Fatalf("octave = %d, want 5", kb.Octave())
	}
	l.KeyDown("z")
	if len(e.Active()) != 0 {
		t.Fatal("z should be unmapped when not an octave key")
	}
	l.KeyDown("s")
	v, ok := e.Voice(62)
	if !ok || v.Velocity != 64 {
		t.Fatalf("Voice(62) = %+v, %v", v, ok)
	}
}

func TestKeyboardClose(t *testing.T) {
	l, e, kb := newTestKeyboard(4)
	kb.Close()
	kb.Close()
	l.KeyDown("a")
	if len(e.Active()) != 0 {
		t.Fatal("closed keyboard still plays")
	}
}
