// Package audio plays synth voices through the system audio device using beep.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"jonika/synth"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

var ErrUnknownWaveform = errors.New("unknown waveform")

// Defaults
const (
	DefaultSampleRate = 44100
	DefaultBuffer     = 50 * time.Millisecond
	DefaultGain       = 0.2
)

// Options configures a Context
type Options struct {
	SampleRate int
	Buffer     time.Duration
	Waveform   Waveform
	Gain       float64 // master gain applied after mixing
	Logger     *zap.Logger
}

// Context is the shared destination every voice is mixed into. It is itself
// a beep.Streamer; its clock counts samples streamed.
type Context struct {
	rate   beep.SampleRate
	buffer time.Duration
	wave   Waveform
	log    *zap.Logger

	mu      sync.Mutex
	mixer   *beep.Mixer
	pos     int64
	gain    float64
	playing bool
}

// New creates a context. Nothing is audible until Start.
func New(opts Options) *Context {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Gain < 0 {
		opts.Gain = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Context{
		rate:   beep.SampleRate(opts.SampleRate),
		buffer: opts.Buffer,
		wave:   opts.Waveform,
		log:    opts.Logger,
		mixer:  &beep.Mixer{},
		gain:   opts.Gain,
	}
}

// Start opens the audio device and begins playback
func (c *Context) Start() error {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := speaker.Init(c.rate, c.rate.N(c.buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(c)

	c.mu.Lock()
	c.playing = true
	c.mu.Unlock()
	c.log.Info("audio started",
		zap.Int("sample_rate", int(c.rate)),
		zap.Duration("buffer", c.buffer),
		zap.Stringer("waveform", c.wave))
	return nil
}

// Close stops playback and drops every voice. The context can be started again.
func (c *Context) Close() error {
	c.mu.Lock()
	playing := c.playing
	c.playing = false
	c.mixer.Clear()
	c.mu.Unlock()

	if !playing {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	c.log.Info("audio stopped")
	return nil
}

// Playing reports whether the device is open
func (c *Context) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// CurrentTime is the context clock in seconds
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.pos) / float64(c.rate)
}

// NewVoice creates an unstarted voice at frequency
func (c *Context) NewVoice(frequency float64) synth.VoiceNode {
	c.mu.Lock()
	wave := c.wave
	c.mu.Unlock()
	return newVoice(c, wave, frequency)
}

// SetWaveform changes the shape of voices created from now on
func (c *Context) SetWaveform(w Waveform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wave = w
}

// Waveform returns the current voice shape
func (c *Context) Waveform() Waveform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wave
}

// Gain returns the master gain
func (c *Context) Gain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gain
}

// SetGain sets the master gain
func (c *Context) SetGain(g float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gain = max(0, g)
}

// Voices is the number of voices in the mix, including ones still fading
func (c *Context) Voices() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mixer.Len()
}

func (c *Context) add(v *voice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v.mu.Lock()
	v.pos = c.pos
	v.mu.Unlock()
	c.mixer.Add(v)
}

// Stream implements beep.Streamer. It never runs dry: silence fills gaps.
func (c *Context) Stream(samples [][2]float64) (n int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, _ = c.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	for i := range samples {
		samples[i][0] *= c.gain
		samples[i][1] *= c.gain
	}
	c.pos += int64(len(samples))
	return len(samples), true
}

// Err implements beep.Streamer
func (c *Context) Err() error {
	return nil
}

var _ synth.Output = (*Context)(nil)
