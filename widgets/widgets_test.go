package widgets

import (
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"jonika/keymap"
	"jonika/theme"
)

type fakeProjection map[int]bool

func (f fakeProjection) IsActive(note int) bool { return f[note] }

func (f fakeProjection) Active() []int {
	var out []int
	for n := range f {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func TestPianoGeometry(t *testing.T) {
	p := NewPiano(4, 1)
	if p.Low != 48 || p.High() != 60 {
		t.Fatalf("range = %d..%d", p.Low, p.High())
	}
	// 7 white keys plus the top C
	if p.Width() != 8*4 || p.Height() != 4 {
		t.Fatalf("size = %dx%d", p.Width(), p.Height())
	}
}

func TestPianoNoteAt(t *testing.T) {
	p := NewPiano(4, 1)
	tests := []struct {
		x, y int
		note int
		ok   bool
	}{
		{0, 3, 48, true},  // C, white row
		{0, 0, 48, true},  // C, black row left of C#
		{3, 0, 49, true},  // C# straddles C and D
		{4, 1, 49, true},  // C# right half
		{4, 2, 50, true},  // D below C#
		{15, 0, 54, true}, // F#
		{19, 1, 56, true}, // G#
		{28, 3, 60, true}, // top C
		{32, 0, 0, false},
		{-1, 0, 0, false},
		{0, 4, 0, false},
	}
	for _, tt := range tests {
		note, ok := p.NoteAt(tt.x, tt.y)
		if ok != tt.ok || (ok && note != tt.note) {
			t.Errorf("NoteAt(%d, %d) = %d, %v, want %d, %v", tt.x, tt.y, note, ok, tt.note, tt.ok)
		}
	}
}

func TestPianoFollow(t *testing.T) {
	p := NewPiano(3, 3)
	p.Follow(4)
	if p.Low != 36 {
		t.Fatalf("scrolled when octave already visible: Low = %d", p.Low)
	}
	p.Follow(5) // needs 60..75
	if p.Low != 48 {
		t.Fatalf("Low = %d, want 48", p.Low)
	}
	p.Follow(0)
	if p.Low != 0 {
		t.Fatalf("Low = %d, want 0", p.Low)
	}
}

func TestPianoFollowSingleOctave(t *testing.T) {
	// One octave cannot hold all 16 keys; the root stays on screen
	p := NewPiano(2, 1)
	p.Follow(4)
	if p.Low != 48 {
		t.Fatalf("Low = %d, want 48", p.Low)
	}
	if note, ok := p.NoteAt(0, p.Height()-1); !ok || note != 48 {
		t.Fatalf("first white key = %d, %v, want 48", note, ok)
	}
	p.Follow(4)
	if p.Low != 48 {
		t.Fatalf("Low moved to %d on a second Follow", p.Low)
	}
}

func TestPianoView(t *testing.T) {
	p := NewPiano(4, 1)
	th := theme.New(nil)
	out := p.View(th, fakeProjection{48: true}, 4)

	lines := strings.Split(out, "\n")
	if len(lines) != p.Height() {
		t.Fatalf("rendered %d lines, want %d", len(lines), p.Height())
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != p.Width() {
			t.Errorf("line %d width %d, want %d", i, w, p.Width())
		}
	}
	// Octave labels
	if !strings.Contains(lines[3], "C3") || !strings.Contains(lines[3], "C4") {
		t.Errorf("missing C labels: %q", lines[3])
	}
	// Computer key hints: naturals under the black keys, accidentals on them
	if !strings.Contains(lines[2], "a") || !strings.Contains(lines[2], "k") {
		t.Errorf("missing white key hints: %q", lines[2])
	}
	if !strings.Contains(lines[1], "w") {
		t.Errorf("missing black key hint: %q", lines[1])
	}

	if strings.Contains(p.View(th, fakeProjection{}, -1), "a") {
		t.Error("hints drawn with octave -1")
	}
}

func TestNoteKeySections(t *testing.T) {
	secs := NoteKeySections(4)
	if len(secs) != 2 {
		t.Fatalf("got %d sections", len(secs))
	}
	if len(secs[0].Keys)+len(secs[1].Keys) != len(keymap.Keys()) {
		t.Fatal("not every key listed")
	}
	if secs[0].Keys[0].Key != "a" || secs[0].Keys[0].Desc != "C3" {
		t.Fatalf("first natural = %+v", secs[0].Keys[0])
	}
	out := RenderKeyHelp(secs)
	if !strings.Contains(out, "Accidentals") || !strings.Contains(out, "C#3") {
		t.Fatalf("help = %q", out)
	}
}
