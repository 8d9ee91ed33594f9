package midi

import "fmt"

// Status bytes
const (
	NoteOff uint8 = 0x80
	NoteOn  uint8 = 0x90
	Stop    uint8 = 0xFC
)

// MessageType is the canonical kind of a decoded message
type MessageType int

const (
	TypeUnknown MessageType = iota
	TypeNoteOn
	TypeNoteOff
	TypeStop
)

func (t MessageType) String() string {
	switch t {
	case TypeNoteOn:
		return "note_on"
	case TypeNoteOff:
		return "note_off"
	case TypeStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Message is a decoded MIDI message. Note, Velocity and Channel are only
// meaningful for note messages.
type Message struct {
	Type     MessageType
	Channel  uint8 // 0-15
	Note     uint8
	Velocity uint8
}

func (m Message) String() string {
	switch m.Type {
	case TypeNoteOn, TypeNoteOff:
		return fmt.Sprintf("%s ch=%d note=%d vel=%d", m.Type, m.Channel, m.Note, m.Velocity)
	default:
		return m.Type.String()
	}
}

// Decode parses a raw MIDI message. It never fails: anything it does not
// understand (clock, active sense, CC, truncated note messages) is TypeUnknown.
// A note-on with velocity 0 stays a note-on.
func Decode(data []byte) Message {
	if len(data) == 0 {
		return Message{Type: TypeUnknown}
	}

	status := data[0]
	if status == Stop {
		return Message{Type: TypeStop}
	}

	var typ MessageType
	var channel uint8
	switch {
	case status >= NoteOn && status <= NoteOn+15:
		typ = TypeNoteOn
		channel = status - NoteOn
	case status >= NoteOff && status <= NoteOff+15:
		typ = TypeNoteOff
		channel = status - NoteOff
	default:
		return Message{Type: TypeUnknown}
	}

	// No note byte, nothing to act on
	if len(data) < 2 {
		return Message{Type: TypeUnknown}
	}

	var velocity uint8
	if len(data) > 2 {
		velocity = data[2]
	}

	return Message{
		Type:     typ,
		Channel:  channel,
		Note:     data[1],
		Velocity: velocity,
	}
}
