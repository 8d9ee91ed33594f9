package keymap

// Default octave clamp and starting octave
const (
	DefaultMinOctave = 0
	DefaultMaxOctave = 8
	DefaultOctave    = 4
)

// Octave is a transposition setting clamped to [Min, Max].
// It only changes what future key lookups produce.
type Octave struct {
	value    int
	min, max int
}

// NewOctave creates an octave clamped to [min, max]. If min > max they are swapped.
func NewOctave(start, min, max int) *Octave {
	if min > max {
		min, max = max, min
	}
	o := &Octave{min: min, max: max}
	o.Set(start)
	return o
}

func (o *Octave) Value() int { return o.value }
func (o *Octave) Min() int   { return o.min }
func (o *Octave) Max() int   { return o.max }

// Set moves to v, clamped
func (o *Octave) Set(v int) {
	o.value = max(o.min, min(o.max, v))
}

// ShiftDown lowers the octave by one. Returns false if already at the minimum.
func (o *Octave) ShiftDown() bool {
	if o.value <= o.min {
		return false
	}
	o.value--
	return true
}

// ShiftUp raises the octave by one. Returns false if already at the maximum.
func (o *Octave) ShiftUp() bool {
	if o.value >= o.max {
		return false
	}
	o.value++
	return true
}
