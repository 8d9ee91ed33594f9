package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jonika/keymap"
)

// RenderSwatch renders a single colored block
func RenderSwatch(color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render("■")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color lipgloss.Color, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderSwatch(color), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// NoteKeySections lists which note each computer key plays at octave,
// naturals and accidentals separately
func NoteKeySections(octave int) []KeySection {
	white := KeySection{Title: fmt.Sprintf("Naturals (octave %d)", octave)}
	black := KeySection{Title: "Accidentals"}
	for _, k := range keymap.Keys() {
		n, _ := keymap.KeyToNote(k, octave)
		b := KeyBinding{Key: k, Desc: keymap.NoteName(n)}
		if keymap.IsWhiteKey(n) {
			white.Keys = append(white.Keys, b)
		} else {
			black.Keys = append(black.Keys, b)
		}
	}
	return []KeySection{white, black}
}
