package audio

import (
	"math"
	"sync"
)

// voice is one oscillator with its own gain automation. It streams into the
// context mixer from Start until its stop time.
type voice struct {
	ctx  *Context
	wave Waveform
	freq float64
	rate float64
	step float64 // phase increment per sample

	mu      sync.Mutex
	phase   float64
	pos     int64 // context sample index of the next sample
	gain    automation
	stopAt  float64
	started bool
	done    bool
}

func newVoice(ctx *Context, wave Waveform, freq float64) *voice {
	rate := float64(ctx.rate)
	return &voice{
		ctx:    ctx,
		wave:   wave,
		freq:   freq,
		rate:   rate,
		step:   freq / rate,
		gain:   automation{initial: 1},
		stopAt: math.Inf(1),
	}
}

// Start adds the voice to the mix. Later calls are ignored.
func (v *voice) Start() {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	v.mu.Unlock()

	v.ctx.add(v)
}

func (v *voice) SetGainAt(value, at float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain.setAt(value, at)
}

func (v *voice) ExponentialRampTo(value, at float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain.rampTo(value, at)
}

// Stop ends the voice at time at. The earliest stop wins.
func (v *voice) Stop(at float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopAt = math.Min(v.stopAt, at)
}

// Stream implements beep.Streamer
func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.done {
		return 0, false
	}
	for i := range samples {
		t := float64(v.pos) / v.rate
		if t >= v.stopAt {
			v.done = true
			return i, false
		}
		s := v.wave.sample(v.phase) * v.gain.valueAt(t)
		samples[i][0] = s
		samples[i][1] = s

		v.phase += v.step
		if v.phase >= 1 {
			v.phase -= math.Floor(v.phase)
		}
		v.pos++
	}
	v.gain.prune(float64(v.pos) / v.rate)
	return len(samples), true
}

// Err implements beep.Streamer
func (v *voice) Err() error {
	return nil
}
