package input

import (
	"sort"
	"time"
)

// DefaultReleaseTimeout is how long a key may go unseen before it counts as
// released. Terminal auto-repeat usually starts within 500ms.
const DefaultReleaseTimeout = 600 * time.Millisecond

// Sink receives physical key signals
type Sink interface {
	KeyDown(key string)
	KeyUp(key string)
}

// RepeatGate adapts press-only input (terminals report presses and
// auto-repeats, never releases) into down/up signals. A key is released once
// it has not been seen for the timeout. Not safe for concurrent use; drive it
// from one event loop.
type RepeatGate struct {
	sink     Sink
	timeout  time.Duration
	lastSeen map[string]time.Time
}

// NewRepeatGate creates a gate feeding sink. A non-positive timeout uses the default.
func NewRepeatGate(sink Sink, timeout time.Duration) *RepeatGate {
	if timeout <= 0 {
		timeout = DefaultReleaseTimeout
	}
	return &RepeatGate{
		sink:     sink,
		timeout:  timeout,
		lastSeen: make(map[string]time.Time),
	}
}

// Press records a press or auto-repeat of key at now
func (g *RepeatGate) Press(key string, now time.Time) {
	g.lastSeen[key] = now
	g.sink.KeyDown(key)
}

// Expire releases every key not seen within the timeout and returns them in key order
func (g *RepeatGate) Expire(now time.Time) []string {
	var expired []string
	for k, seen := range g.lastSeen {
		if now.Sub(seen) >= g.timeout {
			expired = append(expired, k)
		}
	}
	sort.Strings(expired)
	for _, k := range expired {
		delete(g.lastSeen, k)
		g.sink.KeyUp(k)
	}
	return expired
}

// ReleaseAll releases every tracked key immediately
func (g *RepeatGate) ReleaseAll() {
	keys := make([]string, 0, len(g.lastSeen))
	for k := range g.lastSeen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		delete(g.lastSeen, k)
		g.sink.KeyUp(k)
	}
}

// Pending is the number of keys considered held
func (g *RepeatGate) Pending() int {
	return len(g.lastSeen)
}

// Timeout returns the release timeout
func (g *RepeatGate) Timeout() time.Duration {
	return g.timeout
}
