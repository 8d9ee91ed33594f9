package midi

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/zap"
)

// ErrScanTimeout is returned when the MIDI driver does not answer a port scan in time
var ErrScanTimeout = errors.New("MIDI port scan timed out")

// scanTimeout bounds how long a port listing may take (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// inPort is an input port as seen by a scan
type inPort struct {
	name string
	in   drivers.In
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	preferred   []string
	excluded    []string
	log         *zap.Logger

	// swapped in tests
	listPorts func() ([]inPort, error)
	open      func(id string, in drivers.In) (Controller, error)
}

// ManagerOption configures a DeviceManager
type ManagerOption func(*DeviceManager)

// WithPollRate sets how often ports are rescanned
func WithPollRate(d time.Duration) ManagerOption {
	return func(dm *DeviceManager) {
		if d > 0 {
			dm.pollRate = d
		}
	}
}

// WithPreferred sets name fragments of devices to connect first
func WithPreferred(patterns []string) ManagerOption {
	return func(dm *DeviceManager) { dm.preferred = patterns }
}

// WithExcluded sets name fragments of ports that are never connected (virtual/system ports)
func WithExcluded(patterns []string) ManagerOption {
	return func(dm *DeviceManager) { dm.excluded = patterns }
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) ManagerOption {
	return func(dm *DeviceManager) {
		if l != nil {
			dm.log = l
		}
	}
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts ...ManagerOption) *DeviceManager {
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		excluded:    []string{"Midi Through", "Through Port", "Dummy"},
		log:         zap.NewNop(),
		listPorts:   listInPorts,
	}
	for _, opt := range opts {
		opt(dm)
	}
	dm.open = func(id string, in drivers.In) (Controller, error) {
		return NewKeyboardController(id, in, dm.log)
	}
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Names returns the IDs of connected controllers, sorted
func (dm *DeviceManager) Names() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	names := make([]string, 0, len(dm.controllers))
	for id := range dm.controllers {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ports, err := dm.listPorts()
	if err != nil {
		// skip this scan, try again next tick
		dm.log.Warn("midi port scan failed", zap.Error(err))
		return
	}

	ports = dm.filter(ports)
	seenIDs := make(map[string]bool, len(ports))
	var pending []DeviceEvent

	for _, p := range ports {
		seenIDs[p.name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[p.name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		ctrl, err := dm.open(p.name, p.in)
		if err != nil {
			dm.log.Error("midi connect failed", zap.String("device", p.name), zap.Error(err))
			continue
		}

		dm.mu.Lock()
		dm.controllers[p.name] = ctrl
		dm.mu.Unlock()

		dm.log.Info("midi device connected", zap.String("device", p.name))
		pending = append(pending, DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: p.name})
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toRemove)
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		dm.log.Info("midi device disconnected", zap.String("device", id))
		pending = append(pending, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()

	// Deliver outside the lock so a slow reader can't block Controllers()
	for _, ev := range pending {
		select {
		case dm.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// filter drops excluded ports and moves preferred ones to the front
func (dm *DeviceManager) filter(ports []inPort) []inPort {
	var out []inPort
	for _, p := range ports {
		if matchesAny(p.name, dm.excluded) {
			dm.log.Debug("midi input excluded", zap.String("device", p.name))
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return preferRank(out[i].name, dm.preferred) < preferRank(out[j].name, dm.preferred)
	})
	return out
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// preferRank is the index of the first matching preferred pattern, or len(patterns)
func preferRank(name string, patterns []string) int {
	for i, pat := range patterns {
		if containsCI(name, pat) {
			return i
		}
	}
	return len(patterns)
}

func matchesAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// listInPorts gets current MIDI input ports with a timeout
func listInPorts() ([]inPort, error) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		ports := make([]inPort, len(ins))
		for i, in := range ins {
			ports[i] = inPort{name: in.String(), in: in}
		}
		return ports, nil
	case <-time.After(scanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrScanTimeout
	}
}

// ListInputs returns the names of all MIDI input ports
func ListInputs() ([]string, error) {
	ports, err := listInPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.name
	}
	return names, nil
}
