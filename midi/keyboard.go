package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// messageBuffer is how many decoded messages a controller holds before dropping
const messageBuffer = 64

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	log      *zap.Logger

	mu      sync.Mutex
	closed  bool
	msgChan chan Message
	dropped uint64
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In, log *zap.Logger) (*KeyboardController, error) {
	if log == nil {
		log = zap.NewNop()
	}
	kb := &KeyboardController{
		id:      id,
		inPort:  inPort,
		log:     log.With(zap.String("device", id)),
		msgChan: make(chan Message, messageBuffer),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handleRaw(msg.Bytes())
		}, gomidi.HandleError(func(err error) {
			kb.log.Warn("midi listener error", zap.Error(err))
		}))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// handleRaw decodes one raw message and forwards it without blocking the driver
func (kb *KeyboardController) handleRaw(data []byte) {
	msg := Decode(data)
	if msg.Type == TypeUnknown {
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.msgChan <- msg:
	default:
		kb.dropped++
		kb.log.Warn("message buffer full; dropping MIDI message",
			zap.Stringer("msg", msg), zap.Uint64("dropped", kb.dropped))
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Messages() <-chan Message {
	return kb.msgChan
}

func (kb *KeyboardController) Close() error {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return nil
	}
	kb.closed = true
	close(kb.msgChan)
	kb.mu.Unlock()

	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	if kb.inPort != nil {
		return kb.inPort.Close()
	}
	return nil
}
