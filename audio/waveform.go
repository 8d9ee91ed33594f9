package audio

import (
	"fmt"
	"math"
	"strings"
)

// Waveform is an oscillator shape
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var waveformNames = map[Waveform]string{
	Sine:     "sine",
	Square:   "square",
	Sawtooth: "sawtooth",
	Triangle: "triangle",
}

func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

// Next returns the following shape, wrapping back to Sine
func (w Waveform) Next() Waveform {
	return (w + 1) % Waveform(len(waveformNames))
}

// ParseWaveform parses a waveform name, case-insensitively. "saw" is accepted for sawtooth.
func ParseWaveform(s string) (Waveform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "saw" {
		return Sawtooth, nil
	}
	for w, n := range waveformNames {
		if n == name {
			return w, nil
		}
	}
	return Sine, fmt.Errorf("%w: %q", ErrUnknownWaveform, s)
}

// sample returns the waveform at phase p in [0, 1), in [-1, 1]
func (w Waveform) sample(p float64) float64 {
	switch w {
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*p - 1
	case Triangle:
		return 4*math.Abs(p-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
