package synth

import (
	"sync"

	"jonika/input"
	"jonika/keymap"
)

// DefaultVelocity is the velocity used for computer keyboard notes
const DefaultVelocity uint8 = 100

// Default octave keys
const (
	DefaultOctaveDownKey = "z"
	DefaultOctaveUpKey   = "x"
)

// Keyboard plays the engine from a key listener. The note for a key is fixed
// when it goes down, so shifting octave while holding never strands a note.
type Keyboard struct {
	engine   *Engine
	octave   *keymap.Octave
	downKey  string
	upKey    string
	velocity uint8

	mu      sync.Mutex
	pressed map[string]int // key -> note played on down

	unsubDown func()
	unsubUp   func()
}

// KeyboardOption configures a Keyboard
type KeyboardOption func(*Keyboard)

// WithOctaveKeys overrides the octave shift keys
func WithOctaveKeys(down, up string) KeyboardOption {
	return func(k *Keyboard) {
		if down != "" {
			k.downKey = down
		}
		if up != "" {
			k.upKey = up
		}
	}
}

// WithVelocity overrides the note-on velocity
func WithVelocity(v uint8) KeyboardOption {
	return func(k *Keyboard) { k.velocity = v }
}

// NewKeyboard subscribes to l and drives e
func NewKeyboard(l *input.Listener, e *Engine, octave *keymap.Octave, opts ...KeyboardOption) *Keyboard {
	k := &Keyboard{
		engine:   e,
		octave:   octave,
		downKey:  DefaultOctaveDownKey,
		upKey:    DefaultOctaveUpKey,
		velocity: DefaultVelocity,
		pressed:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.unsubDown = l.OnKeyDown(k.keyDown)
	k.unsubUp = l.OnKeyUp(k.keyUp)
	return k
}

func (k *Keyboard) keyDown(key string) {
	k.mu.Lock()
	switch key {
	case k.downKey:
		k.octave.ShiftDown()
		k.mu.Unlock()
		return
	case k.upKey:
		k.octave.ShiftUp()
		k.mu.Unlock()
		return
	}
	note, ok := keymap.KeyToNote(key, k.octave.Value())
	if !ok {
		k.mu.Unlock()
		return
	}
	k.pressed[key] = note
	k.mu.Unlock()

	k.engine.NoteOn(note, k.velocity)
}

func (k *Keyboard) keyUp(key string) {
	k.mu.Lock()
	note, ok := k.pressed[key]
	delete(k.pressed, key)
	k.mu.Unlock()

	if ok {
		k.engine.NoteOff(note)
	}
}

// Octave returns the current octave
func (k *Keyboard) Octave() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.octave.Value()
}

// ShiftOctave moves the octave by delta (negative for down), clamped
func (k *Keyboard) ShiftOctave(delta int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.octave.Set(k.octave.Value() + delta)
}

// OctaveKeys returns the down and up shift keys
func (k *Keyboard) OctaveKeys() (down, up string) {
	return k.downKey, k.upKey
}

// Close unsubscribes from the listener. Notes still held are left to the engine.
func (k *Keyboard) Close() {
	k.unsubDown()
	k.unsubUp()
}
