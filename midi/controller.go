package midi

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string

	// Decoded note and stop messages from the device. Unknown messages are
	// never delivered. Closed when the controller is closed.
	Messages() <-chan Message

	// Lifecycle
	Close() error
}
