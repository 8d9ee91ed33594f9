package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jonika/audio"
	"jonika/debug"
	"jonika/input"
	"jonika/keymap"
	"jonika/midi"
	"jonika/synth"
	"jonika/theme"
	"jonika/widgets"
)

// tickRate is how often held keys are checked for release
const tickRate = 30 * time.Millisecond

// gainStep is the master gain change per volume key press
const gainStep = 0.05

// AudioDevice is the output the model can switch on and off and reshape
type AudioDevice interface {
	synth.Output
	Start() error
	Close() error
	Playing() bool
	Waveform() audio.Waveform
	SetWaveform(audio.Waveform)
	Gain() float64
	SetGain(float64)
}

// Options wires a Model
type Options struct {
	Engine         *synth.Engine
	Listener       *input.Listener
	Keyboard       *synth.Keyboard
	Audio          AudioDevice         // may be nil
	DeviceMgr      *midi.DeviceManager // may be nil when MIDI is off
	Theme          *theme.Theme
	ReleaseTimeout time.Duration
	LowOctave      int
	Octaves        int
	Waveform       string
}

// layoutBounds holds cached layout info
type layoutBounds struct {
	pianoTop int
}

type Model struct {
	engine    *synth.Engine
	listener  *input.Listener
	keyboard  *synth.Keyboard
	gate      *input.RepeatGate
	audio     AudioDevice
	deviceMgr *midi.DeviceManager
	theme     *theme.Theme
	piano     *widgets.Piano
	keys      keyMap
	help      help.Model
	waveform  string
	bounds    *layoutBounds

	showKeyMap bool
	quitting   bool
	mouseNote  int
	mouseDown  bool
	tooltip    string
	lastMIDI   string
	status     string
}

type tickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

// MIDIMsg is a decoded message from a controller
type MIDIMsg struct {
	Controller midi.Controller
	Message    midi.Message
}

func NewModel(opts Options) Model {
	down, up := opts.Keyboard.OctaveKeys()
	piano := widgets.NewPiano(opts.LowOctave, opts.Octaves)
	piano.Follow(opts.Keyboard.Octave())
	th := opts.Theme
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		engine:    opts.Engine,
		listener:  opts.Listener,
		keyboard:  opts.Keyboard,
		gate:      input.NewRepeatGate(opts.Listener, opts.ReleaseTimeout),
		audio:     opts.Audio,
		deviceMgr: opts.DeviceMgr,
		theme:     th,
		piano:     piano,
		keys:      newKeyMap(down, up),
		help:      help.New(),
		waveform:  opts.Waveform,
		bounds:    &layoutBounds{},
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

// ListenForMessages waits for the next message from ctrl. It returns nil
// once the controller is closed.
func ListenForMessages(ctrl midi.Controller) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ctrl.Messages()
		if !ok {
			return nil
		}
		return MIDIMsg{Controller: ctrl, Message: msg}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.deviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.deviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.gate.ReleaseAll()
			m.engine.StopAll()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Panic):
			m.gate.ReleaseAll()
			m.engine.StopAll()

		case key.Matches(msg, m.keys.Audio):
			m.toggleAudio()

		case key.Matches(msg, m.keys.Help):
			m.showKeyMap = !m.showKeyMap
			m.help.ShowAll = m.showKeyMap

		case key.Matches(msg, m.keys.OctaveDown):
			m.keyboard.ShiftOctave(-1)
			m.piano.Follow(m.keyboard.Octave())

		case key.Matches(msg, m.keys.OctaveUp):
			m.keyboard.ShiftOctave(1)
			m.piano.Follow(m.keyboard.Octave())

		case key.Matches(msg, m.keys.Wave):
			m.cycleWaveform()

		case key.Matches(msg, m.keys.VolumeDown):
			m.nudgeGain(-gainStep)

		case key.Matches(msg, m.keys.VolumeUp):
			m.nudgeGain(gainStep)

		default:
			if k := keyName(msg); k != "" {
				m.gate.Press(k, time.Now())
			}
		}

	case tickMsg:
		if released := m.gate.Expire(time.Time(msg)); len(released) > 0 {
			debug.LogEvery(10, "keys", "released %v", released)
		}
		return m, tick()

	case tea.MouseMsg:
		m.handleMouse(msg)

	case MIDIMsg:
		m.engine.HandleMIDI(msg.Message)
		m.lastMIDI = fmt.Sprintf("%s: %s", msg.Controller.ID(), msg.Message)
		return m, ListenForMessages(msg.Controller)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		m.status = fmt.Sprintf("%s %s", event.ID, event.Type)
		var cmd tea.Cmd
		if event.Type == midi.DeviceConnected && event.Controller != nil {
			cmd = ListenForMessages(event.Controller)
		}
		return m, tea.Batch(cmd, ListenForDevices(m.deviceMgr))
	}

	return m, nil
}

// keyName returns the key identifier fed to the keyboard, or "" for keys
// that can never be musical
func keyName(msg tea.KeyMsg) string {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Alt {
		return ""
	}
	return strings.ToLower(string(msg.Runes))
}

func (m *Model) toggleAudio() {
	if m.audio == nil {
		m.status = "no audio device"
		return
	}
	if m.audio.Playing() {
		m.engine.SetOutput(nil)
		if err := m.audio.Close(); err != nil {
			m.status = fmt.Sprintf("audio: %v", err)
		}
		return
	}
	if err := m.audio.Start(); err != nil {
		m.status = fmt.Sprintf("audio: %v", err)
		debug.Log("audio", "start failed: %v", err)
		return
	}
	m.engine.SetOutput(m.audio)
	m.status = ""
}

// cycleWaveform moves voices started from now on to the next shape
func (m *Model) cycleWaveform() {
	if m.audio == nil {
		m.status = "no audio device"
		return
	}
	w := m.audio.Waveform().Next()
	m.audio.SetWaveform(w)
	m.waveform = w.String()
}

func (m *Model) nudgeGain(delta float64) {
	if m.audio == nil {
		m.status = "no audio device"
		return
	}
	g := max(0, min(1, m.audio.Gain()+delta))
	m.audio.SetGain(g)
	m.status = fmt.Sprintf("volume %.0f%%", g*100)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	note, onKey := m.piano.NoteAt(msg.X, msg.Y-m.bounds.pianoTop)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !onKey {
			return
		}
		m.mouseNote, m.mouseDown = note, true
		m.engine.NoteOn(note, synth.DefaultVelocity)

	case tea.MouseActionRelease:
		if m.mouseDown {
			m.engine.NoteOff(m.mouseNote)
			m.mouseDown = false
		}

	case tea.MouseActionMotion:
		m.tooltip = ""
		if onKey {
			m.tooltip = fmt.Sprintf("%s  %.2f Hz", keymap.NoteName(note), synth.Frequency(note))
		}
		// Dragging across keys plays them like a glissando
		if m.mouseDown && onKey && note != m.mouseNote {
			m.engine.NoteOff(m.mouseNote)
			m.mouseNote = note
			m.engine.NoteOn(note, synth.DefaultVelocity)
		}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := m.theme.Title()
	labelStyle := m.theme.Label()
	valueStyle := m.theme.Value()
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.theme.FG()).
		Background(m.theme.Muted()).
		Padding(0, 1)

	// Header
	audioState := "off (tab to start)"
	if m.audio != nil && m.audio.Playing() {
		audioState = "on"
	}
	header := titleStyle.Render("jonika") + "  " +
		labelStyle.Render("octave ") + valueStyle.Render(fmt.Sprint(m.keyboard.Octave())) + "  " +
		labelStyle.Render("audio ") + valueStyle.Render(audioState) + "  " +
		labelStyle.Render("wave ") + valueStyle.Render(m.waveform)

	// MIDI devices
	devices := labelStyle.Render(fmt.Sprintf("%c MIDI off", m.theme.Symbols.Off))
	if m.deviceMgr != nil {
		names := m.deviceMgr.Names()
		if len(names) == 0 {
			devices = labelStyle.Render(fmt.Sprintf("%c no MIDI devices", m.theme.Symbols.Off))
		} else {
			devices = valueStyle.Render(fmt.Sprintf("%c %s", m.theme.Symbols.On, strings.Join(names, ", ")))
		}
	}

	pianoView := m.piano.View(m.theme, m.engine, m.keyboard.Octave())

	// Sounding notes
	var playing []string
	for _, n := range m.engine.Active() {
		playing = append(playing, keymap.NoteName(n))
	}
	notes := labelStyle.Render("playing ") + valueStyle.Render(strings.Join(playing, " "))

	// Layout: blank line, header, devices, blank line, then the piano
	m.bounds.pianoTop = 1 + lipgloss.Height(header) + lipgloss.Height(devices) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(devices)
	out.WriteString("\n\n")
	out.WriteString(pianoView)
	out.WriteString("\n\n")
	out.WriteString(notes)
	if m.lastMIDI != "" {
		out.WriteString("\n")
		out.WriteString(labelStyle.Render("midi " + m.lastMIDI))
	}
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(labelStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))

	if m.showKeyMap {
		out.WriteString("\n\n")
		out.WriteString(widgets.RenderKeyHelp(widgets.NoteKeySections(m.keyboard.Octave())))
		out.WriteString("\n")
		out.WriteString(widgets.RenderLegendItem(m.theme.Active(), "lit", "sounding"))
	}

	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}

	return out.String()
}
