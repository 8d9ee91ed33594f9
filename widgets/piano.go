package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jonika/keymap"
	"jonika/synth"
	"jonika/theme"
)

// CellLayout is piano key geometry in terminal cells
var CellLayout = keymap.Layout{WhiteWidth: 4, BlackWidth: 2}

// Piano draws a keyboard from a C to the C Octaves above it.
// Black keys fill the top BlackRows rows; white keys show below them.
type Piano struct {
	Low       int // first note, a C
	Octaves   int
	Layout    keymap.Layout
	BlackRows int
	WhiteRows int
}

func NewPiano(lowOctave, octaves int) *Piano {
	return &Piano{
		Low:       lowOctave * 12,
		Octaves:   max(1, octaves),
		Layout:    CellLayout,
		BlackRows: 2,
		WhiteRows: 2,
	}
}

// High is the last note drawn, the top C
func (p *Piano) High() int {
	return p.Low + p.Octaves*12
}

// Follow scrolls the range so octave's playable keys are on screen
func (p *Piano) Follow(octave int) {
	// keymap reaches 15 semitones above the octave root
	lo, hi := octave*12, octave*12+keymap.Span
	for lo < p.Low {
		p.Low -= 12
	}
	for hi > p.High() && p.Low < lo {
		p.Low += 12
	}
}

func (p *Piano) whiteKeys() int {
	return keymap.WhiteIndex(p.High()) - keymap.WhiteIndex(p.Low) + 1
}

func (p *Piano) Width() int {
	return p.whiteKeys() * p.Layout.WhiteWidth
}

func (p *Piano) Height() int {
	return p.BlackRows + p.WhiteRows
}

// x is a key's left edge relative to the piano
func (p *Piano) x(note int) int {
	return p.Layout.KeyPosition(note) - p.Layout.KeyPosition(p.Low)
}

func (p *Piano) whiteAt(x int) int {
	return keymap.WhiteNote(keymap.WhiteIndex(p.Low) + x/p.Layout.WhiteWidth)
}

// NoteAt returns the key under cell (x, y) relative to the top left corner
func (p *Piano) NoteAt(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= p.Width() || y >= p.Height() {
		return 0, false
	}
	if y < p.BlackRows {
		for n := p.Low; n < p.High(); n++ {
			if keymap.IsWhiteKey(n) {
				continue
			}
			if bx := p.x(n); x >= bx && x < bx+p.Layout.BlackWidth {
				return n, true
			}
		}
	}
	return p.whiteAt(x), true
}

type cellKind int

const (
	whiteIdle cellKind = iota
	whiteActive
	blackIdle
	blackActive
)

type cell struct {
	r    rune
	kind cellKind
}

// View renders the keyboard. Notes active in proj are highlighted. When
// octave is not negative, keys reachable from the computer keyboard at that
// octave are labelled with their key.
func (p *Piano) View(th *theme.Theme, proj synth.Projection, octave int) string {
	w, h := p.Width(), p.Height()
	ww := p.Layout.WhiteWidth

	grid := make([][]cell, h)
	for y := range grid {
		row := make([]cell, w)
		for x := range row {
			kind := whiteIdle
			if proj.IsActive(p.whiteAt(x)) {
				kind = whiteActive
			}
			r := ' '
			if x%ww == ww-1 {
				r = '▕'
			}
			row[x] = cell{r, kind}
		}
		grid[y] = row
	}

	for n := p.Low; n < p.High(); n++ {
		if keymap.IsWhiteKey(n) {
			continue
		}
		kind := blackIdle
		if proj.IsActive(n) {
			kind = blackActive
		}
		bx := p.x(n)
		for y := 0; y < p.BlackRows; y++ {
			for x := bx; x < bx+p.Layout.BlackWidth && x < w; x++ {
				grid[y][x] = cell{' ', kind}
			}
		}
	}

	put := func(x, y int, s string) {
		for i, r := range []rune(s) {
			if x+i < w && y >= 0 && y < h {
				grid[y][x+i].r = r
			}
		}
	}

	if octave >= 0 {
		for _, k := range keymap.Keys() {
			n, _ := keymap.KeyToNote(k, octave)
			if n < p.Low || n > p.High() {
				continue
			}
			if keymap.IsWhiteKey(n) {
				put(p.x(n)+1, p.BlackRows, k)
			} else {
				put(p.x(n), p.BlackRows-1, k)
			}
		}
	}
	for n := p.Low; n <= p.High(); n += 12 {
		put(p.x(n), h-1, keymap.NoteName(n))
	}

	styles := map[cellKind]lipgloss.Style{
		whiteIdle:   lipgloss.NewStyle().Foreground(th.BG()).Background(th.FG()),
		whiteActive: lipgloss.NewStyle().Foreground(th.FG()).Background(th.Active()),
		blackIdle:   lipgloss.NewStyle().Foreground(th.FG()).Background(th.BG()),
		blackActive: lipgloss.NewStyle().Foreground(th.FG()).Background(th.Active()),
	}

	var out strings.Builder
	for y, row := range grid {
		if y > 0 {
			out.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].kind == row[start].kind {
				continue
			}
			runes := make([]rune, 0, x-start)
			for _, c := range row[start:x] {
				runes = append(runes, c.r)
			}
			out.WriteString(styles[row[start].kind].Render(string(runes)))
			start = x
		}
	}
	return out.String()
}
