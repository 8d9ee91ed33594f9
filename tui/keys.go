package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the control bindings. Musical keys are not bindings; anything
// unbound goes to the keyboard.
type keyMap struct {
	Quit       key.Binding
	Panic      key.Binding
	Audio      key.Binding
	Help       key.Binding
	Wave       key.Binding
	VolumeDown key.Binding
	VolumeUp   key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
}

func bind(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

// newKeyMap builds the bindings. Octave keys act on every press, shifted or not.
func newKeyMap(octaveDown, octaveUp string) keyMap {
	return keyMap{
		Quit:       bind("quit", "esc", "ctrl+c"),
		Panic:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "all notes off")),
		Audio:      bind("audio on/off", "tab"),
		Help:       bind("key map", "?"),
		Wave:       bind("waveform", "ctrl+w"),
		VolumeDown: bind("volume down", "-"),
		VolumeUp:   bind("volume up", "=", "+"),
		OctaveDown: bind("octave down", octaveDown, strings.ToUpper(octaveDown)),
		OctaveUp:   bind("octave up", octaveUp, strings.ToUpper(octaveUp)),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OctaveDown, k.OctaveUp, k.Panic, k.Audio, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OctaveDown, k.OctaveUp},
		{k.Panic, k.Audio},
		{k.Wave, k.VolumeDown, k.VolumeUp},
		{k.Help, k.Quit},
	}
}
