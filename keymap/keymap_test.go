package keymap

import "testing"

func TestKeyToNote(t *testing.T) {
	tests := []struct {
		key    string
		octave int
		want   int
		ok     bool
	}{
		{"a", 0, 0, true},
		{"p", 0, 15, true},
		{"k", 0, 12, true},
		{"a", 4, 48, true},
		{"h", 5, 69, true},
		{"a", -1, -12, true},
		{"q", 0, 0, false},
		{"z", 3, 0, false},
		{"", 0, 0, false},
		{"A", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := KeyToNote(tt.key, tt.octave)
		if ok != tt.ok || got != tt.want {
			t.Errorf("KeyToNote(%q, %d) = %d, %v; want %d, %v", tt.key, tt.octave, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKeysInPitchOrder(t *testing.T) {
	keys := Keys()
	if len(keys) != 16 {
		t.Fatalf("expected 16 keys, got %d", len(keys))
	}
	for i, k := range keys {
		n, ok := KeyToNote(k, 0)
		if !ok || n != i {
			t.Errorf("Keys()[%d] = %q maps to %d", i, k, n)
		}
	}
}

func TestIsWhiteKeyPeriodic(t *testing.T) {
	for n := -60; n < 128; n++ {
		if IsWhiteKey(n) != IsWhiteKey(n+12) {
			t.Fatalf("IsWhiteKey(%d) != IsWhiteKey(%d)", n, n+12)
		}
	}
}

func TestIsWhiteKeyCounts(t *testing.T) {
	white := 0
	for pc := 0; pc < 12; pc++ {
		if IsWhiteKey(pc) {
			white++
		}
	}
	if white != 7 {
		t.Fatalf("expected 7 white keys per octave, got %d", white)
	}
}

func TestIsWhiteKeyNegative(t *testing.T) {
	// -1 is B, -2 is A#, -12 is C
	if !IsWhiteKey(-1) {
		t.Error("-1 should be white (B)")
	}
	if IsWhiteKey(-2) {
		t.Error("-2 should be black (A#)")
	}
	if !IsWhiteKey(-12) {
		t.Error("-12 should be white (C)")
	}
	if IsWhiteKey(-11) {
		t.Error("-11 should be black (C#)")
	}
}

func TestPitchClassAndOctave(t *testing.T) {
	tests := []struct {
		note, pc, octave int
	}{
		{0, 0, 0},
		{11, 11, 0},
		{12, 0, 1},
		{-1, 11, -1},
		{-12, 0, -1},
		{-13, 11, -2},
		{127, 7, 10},
	}
	for _, tt := range tests {
		if got := PitchClass(tt.note); got != tt.pc {
			t.Errorf("PitchClass(%d) = %d, want %d", tt.note, got, tt.pc)
		}
		if got := OctaveOf(tt.note); got != tt.octave {
			t.Errorf("OctaveOf(%d) = %d, want %d", tt.note, got, tt.octave)
		}
	}
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{
		60:  "C4",
		69:  "A4",
		61:  "C#4",
		0:   "C-1",
		127: "G9",
		-1:  "B-2",
	}
	for n, want := range tests {
		if got := NoteName(n); got != want {
			t.Errorf("NoteName(%d) = %q, want %q", n, got, want)
		}
	}
}
