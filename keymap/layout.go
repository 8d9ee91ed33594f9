package keymap

// Layout holds piano key geometry in whatever unit the renderer uses.
type Layout struct {
	WhiteWidth int
	BlackWidth int
}

// PixelLayout is the pixel geometry of a graphical keyboard
var PixelLayout = Layout{WhiteWidth: 30, BlackWidth: 18}

// blackKeySlots is the number of white keys to the left of each black key's centre line
var blackKeySlots = map[int]int{
	1:  1,
	3:  2,
	6:  4,
	8:  5,
	10: 6,
}

// BlackKeyOffset returns the lateral offset of a black key within its octave,
// measured from the left edge of the octave's C. Only pitch classes 1, 3, 6, 8
// and 10 have one.
func BlackKeyOffset(pitchClass int) (int, bool) {
	return PixelLayout.BlackKeyOffset(pitchClass)
}

// BlackKeyOffset returns the offset of a black key for this layout.
func (l Layout) BlackKeyOffset(pitchClass int) (int, bool) {
	slot, ok := blackKeySlots[pitchClass]
	if !ok {
		return 0, false
	}
	return l.WhiteWidth*slot - l.BlackWidth/2, true
}

// WhiteIndex is the position of a white key counted in white keys from note 0.
// Black keys return the index of the white key below them.
func WhiteIndex(note int) int {
	idx := OctaveOf(note) * 7
	for pc := 0; pc < PitchClass(note); pc++ {
		if whitePitchClasses[pc] {
			idx++
		}
	}
	if IsWhiteKey(note) {
		return idx
	}
	return idx - 1
}

// KeyPosition returns the absolute x position of a key's left edge
func (l Layout) KeyPosition(note int) int {
	octaveX := OctaveOf(note) * 7 * l.WhiteWidth
	if off, ok := l.BlackKeyOffset(PitchClass(note)); ok {
		return octaveX + off
	}
	return WhiteIndex(note) * l.WhiteWidth
}

var whiteOrder = [7]int{0, 2, 4, 5, 7, 9, 11}

// WhiteNote is the inverse of WhiteIndex for white keys
func WhiteNote(index int) int {
	octave := index / 7
	if index < 0 && index%7 != 0 {
		octave--
	}
	return octave*12 + whiteOrder[index-octave*7]
}
