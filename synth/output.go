// Package synth is the note engine: it owns the set of sounding notes and
// drives voices on an audio output.
package synth

// Output is the audio capability the engine plays through. Times are seconds
// on the output's own clock.
type Output interface {
	CurrentTime() float64
	// NewVoice returns an oscillator at frequency already routed through its
	// own gain stage to the shared destination. It is silent until Start.
	NewVoice(frequency float64) VoiceNode
}

// VoiceNode is one oscillator+gain pair
type VoiceNode interface {
	Start()
	SetGainAt(value, at float64)
	ExponentialRampTo(value, at float64)
	Stop(at float64)
}

// Projection is the read-only view rendering depends on
type Projection interface {
	IsActive(note int) bool
	Active() []int
}
