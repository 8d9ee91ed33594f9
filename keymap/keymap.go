package keymap

import "fmt"

// charToOffset maps the two qwerty rows to semitones above the octave root.
// Home row plays naturals, the row above plays accidentals.
var charToOffset = map[string]int{
	"a": 0,
	"w": 1,
	"s": 2,
	"e": 3,
	"d": 4,
	"f": 5,
	"t": 6,
	"g": 7,
	"y": 8,
	"h": 9,
	"u": 10,
	"j": 11,
	"k": 12,
	"o": 13,
	"l": 14,
	"p": 15,
}

// Span is how far above the octave root the highest key plays
const Span = 15

// TopOctave is the highest octave whose keys all stay within MIDI note 127
const TopOctave = (127 - Span) / 12

// whitePitchClasses are the pitch classes of the natural notes
var whitePitchClasses = [12]bool{
	0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true,
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// KeyToNote returns the note number for a keyboard key at the given octave.
// ok is false when the key is not musical.
func KeyToNote(key string, octave int) (note int, ok bool) {
	offset, ok := charToOffset[key]
	if !ok {
		return 0, false
	}
	return offset + octave*12, true
}

// Keys returns the mapped keys in pitch order
func Keys() []string {
	keys := make([]string, len(charToOffset))
	for k, off := range charToOffset {
		keys[off] = k
	}
	return keys
}

// PitchClass is the note modulo 12, always in [0,11]
func PitchClass(note int) int {
	pc := note % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// OctaveOf is the floor of note/12
func OctaveOf(note int) int {
	if note < 0 {
		return (note - 11) / 12
	}
	return note / 12
}

// IsWhiteKey reports whether the note is a natural.
func IsWhiteKey(note int) bool {
	return whitePitchClasses[PitchClass(note)]
}

// NoteName formats a note as scientific pitch, 60 = C4.
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", noteNames[PitchClass(note)], OctaveOf(note)-1)
}
