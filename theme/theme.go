package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Piano
	WhiteKey rune // █ idle white key
	BlackKey rune // ▀ idle black key, top half cell
	Pressed  rune // ▓ sounding key

	// Status
	On  rune // ● connected/running
	Off rune // ○ disconnected/stopped
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = Builtin()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			WhiteKey: '█',
			BlackKey: '█',
			Pressed:  '▓',

			On:  '●',
			Off: '○',
		},
	}
}

// Color roles mapped to palette positions (0-1). On the builtin
// palette each role lands on one of its six colours.
const (
	RoleBG      = 0.0 // raisin black
	RoleSurface = 0.2 // dark purple
	RoleMuted   = 0.4 // english violet
	RoleAccent  = 0.6 // marigold
	RoleActive  = 0.8 // flame
	RoleFG      = 1.0 // gainsboro
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Title is the header style
func (t *Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Active())
}

// Label is the style for secondary text
func (t *Theme) Label() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted())
}

// Value is the style for highlighted values in the header
func (t *Theme) Value() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent())
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
