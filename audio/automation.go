package audio

import (
	"math"
	"sort"
)

type gainEvent struct {
	at    float64
	value float64
	ramp  bool // exponential ramp ending at `at`, otherwise a step
}

// automation is a scheduled gain curve. Values follow the Web Audio
// AudioParam rules for setValueAtTime and exponentialRampToValueAtTime.
type automation struct {
	initial float64
	events  []gainEvent
}

func (a *automation) insert(ev gainEvent) {
	// Events at the same time keep insertion order
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].at > ev.at })
	a.events = append(a.events, gainEvent{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = ev
}

func (a *automation) setAt(value, at float64) {
	a.insert(gainEvent{at: at, value: value})
}

func (a *automation) rampTo(value, at float64) {
	a.insert(gainEvent{at: at, value: value, ramp: true})
}

func (a *automation) valueAt(t float64) float64 {
	prevT, prevV := 0.0, a.initial
	for _, ev := range a.events {
		if ev.at > t {
			if ev.ramp {
				return expRamp(prevV, ev.value, prevT, ev.at, t)
			}
			return prevV
		}
		prevT, prevV = ev.at, ev.value
	}
	return prevV
}

// prune drops events that can no longer affect values at or after t
func (a *automation) prune(t float64) {
	last := -1
	for i, ev := range a.events {
		if ev.at > t {
			break
		}
		last = i
	}
	if last > 0 {
		a.events = append(a.events[:0], a.events[last:]...)
	}
}

func expRamp(v0, v1, t0, t1, t float64) float64 {
	if v0 <= 0 || v1 <= 0 || t1 <= t0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}
