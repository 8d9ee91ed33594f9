package synth

import (
	"math"
	"sort"
	"sync"
	"time"

	"jonika/midi"

	"go.uber.org/zap"
)

const (
	// releaseFloor is the ramp target. Exponential ramps cannot reach zero.
	releaseFloor = 0.0001
	fullGain     = 1.0

	DefaultRelease = 30 * time.Millisecond
	stopPad        = 10 * time.Millisecond
)

// Frequency converts a note number to Hz (A4 = note 69 = 440Hz)
func Frequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Voice is one sounding note
type Voice struct {
	Note      int
	Velocity  uint8
	Frequency float64
	Node      VoiceNode // nil when no output was attached at note-on
	Started   float64

	out Output
}

// Engine tracks the active note set and turns note events into voices.
// Safe for concurrent use: keyboard input and MIDI input arrive on
// different goroutines.
type Engine struct {
	mu      sync.Mutex
	active  map[int]*Voice
	out     Output
	release time.Duration
	log     *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithOutput attaches an audio output at construction
func WithOutput(out Output) Option {
	return func(e *Engine) { e.out = out }
}

// WithLogger sets the engine logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithRelease sets the release ramp length. Non-positive values are ignored.
func WithRelease(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.release = d
		}
	}
}

// NewEngine creates an engine with an empty active note set.
// Without an output it runs quiescent: state is tracked but nothing sounds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		active:  make(map[int]*Voice),
		release: DefaultRelease,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetOutput attaches or (with nil) detaches the audio output. Voices already
// sounding stay on the output they were created on.
func (e *Engine) SetOutput(out Output) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out = out
}

// NoteOn starts a voice for note. No-op if the note is already active.
func (e *Engine) NoteOn(note int, velocity uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.active[note]; ok {
		return
	}

	v := &Voice{
		Note:      note,
		Velocity:  velocity,
		Frequency: Frequency(note),
	}
	if e.out != nil {
		now := e.out.CurrentTime()
		node := e.out.NewVoice(v.Frequency)
		node.SetGainAt(fullGain, now)
		node.Start()
		v.Node = node
		v.Started = now
		v.out = e.out
	}
	e.active[note] = v
	e.log.Debug("note on",
		zap.Int("note", note),
		zap.Uint8("velocity", velocity),
		zap.Float64("hz", v.Frequency),
		zap.Bool("audible", v.Node != nil))
}

// NoteOff releases note. No-op if it is not active. The note leaves the
// active set immediately while its voice fades out.
func (e *Engine) NoteOff(note int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.active[note]
	if !ok {
		return
	}
	e.releaseVoice(v)
	delete(e.active, note)
	e.log.Debug("note off", zap.Int("note", note))
}

// StopAll releases every active note
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAllLocked()
}

func (e *Engine) stopAllLocked() {
	if len(e.active) == 0 {
		return
	}
	for _, v := range e.active {
		e.releaseVoice(v)
	}
	e.log.Debug("stop all", zap.Int("voices", len(e.active)))
	e.active = make(map[int]*Voice)
}

// releaseVoice schedules the fade and stop on the output the voice was created on
func (e *Engine) releaseVoice(v *Voice) {
	if v.Node == nil {
		return
	}
	now := v.out.CurrentTime()
	end := now + e.release.Seconds()
	v.Node.SetGainAt(fullGain, now)
	v.Node.ExponentialRampTo(releaseFloor, end)
	v.Node.Stop(end + stopPad.Seconds())
}

// HandleMIDI applies a decoded MIDI message. Unknown messages are ignored.
func (e *Engine) HandleMIDI(msg midi.Message) {
	switch msg.Type {
	case midi.TypeNoteOn:
		e.NoteOn(int(msg.Note), msg.Velocity)
	case midi.TypeNoteOff:
		e.NoteOff(int(msg.Note))
	case midi.TypeStop:
		e.StopAll()
	}
}

// IsActive reports whether note is in the active set. Any int is accepted.
func (e *Engine) IsActive(note int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.active[note]
	return ok
}

// Active returns the active notes in ascending order. The slice is a copy.
func (e *Engine) Active() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	notes := make([]int, 0, len(e.active))
	for n := range e.active {
		notes = append(notes, n)
	}
	sort.Ints(notes)
	return notes
}

// Voice returns a copy of the voice for note, if active
func (e *Engine) Voice(note int) (Voice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.active[note]
	if !ok {
		return Voice{}, false
	}
	return *v, true
}

// Close releases everything and detaches the output
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAllLocked()
	e.out = nil
}
