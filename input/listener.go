// Package input turns raw physical key signals into clean down/up transitions.
// It knows nothing about notes, octaves or audio.
package input

import (
	"sort"
	"sync"
)

// Handler receives a key identifier
type Handler func(key string)

type subscription struct {
	fn Handler
}

// Listener debounces key repeat. A key produces exactly one down transition
// per physical press and one up transition per release.
type Listener struct {
	mu     sync.Mutex
	held   map[string]bool
	down   []*subscription
	up     []*subscription
	closed bool
}

// NewListener creates a listener with no handlers
func NewListener() *Listener {
	return &Listener{held: make(map[string]bool)}
}

// KeyDown reports a physical down signal. Repeats while held are swallowed.
func (l *Listener) KeyDown(key string) {
	l.mu.Lock()
	if l.closed || l.held[key] {
		l.mu.Unlock()
		return
	}
	l.held[key] = true
	handlers := snapshot(l.down)
	l.mu.Unlock()

	for _, h := range handlers {
		h(key)
	}
}

// KeyUp reports a physical up signal. Up handlers always run, even for keys
// that were never seen going down.
func (l *Listener) KeyUp(key string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	delete(l.held, key)
	handlers := snapshot(l.up)
	l.mu.Unlock()

	for _, h := range handlers {
		h(key)
	}
}

// ReleaseAll sends an up transition for every held key, in key order
func (l *Listener) ReleaseAll() {
	for _, k := range l.HeldKeys() {
		l.KeyUp(k)
	}
}

// OnKeyDown registers a down handler. Handlers run in registration order.
func (l *Listener) OnKeyDown(fn Handler) (unsubscribe func()) {
	return l.subscribe(&l.down, fn)
}

// OnKeyUp registers an up handler. Handlers run in registration order.
func (l *Listener) OnKeyUp(fn Handler) (unsubscribe func()) {
	return l.subscribe(&l.up, fn)
}

func (l *Listener) subscribe(list *[]*subscription, fn Handler) func() {
	sub := &subscription{fn: fn}

	l.mu.Lock()
	if !l.closed {
		*list = append(*list, sub)
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			*list = remove(*list, sub)
		})
	}
}

// Held reports whether a key is currently down
func (l *Listener) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// HeldKeys returns the keys currently down, sorted
func (l *Listener) HeldKeys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.held))
	for k := range l.held {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops the listener. Later signals are ignored and handlers dropped.
// Safe to call more than once.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.held = make(map[string]bool)
	l.down = nil
	l.up = nil
}

// snapshot copies the handler list so dispatch is unaffected by unsubscribes
func snapshot(subs []*subscription) []Handler {
	out := make([]Handler, len(subs))
	for i, s := range subs {
		out[i] = s.fn
	}
	return out
}

func remove(subs []*subscription, target *subscription) []*subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
