package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jonika/keymap"
)

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration stored as a string like "30ms"
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// KeyboardConfig controls the computer keyboard
type KeyboardConfig struct {
	StartOctave    int      `json:"startOctave"`
	MinOctave      int      `json:"minOctave"`
	MaxOctave      int      `json:"maxOctave"`
	OctaveDownKey  string   `json:"octaveDownKey"`
	OctaveUpKey    string   `json:"octaveUpKey"`
	Velocity       int      `json:"velocity"`
	ReleaseTimeout Duration `json:"releaseTimeout"` // key considered up after this long without a repeat
}

// SynthConfig controls the sound
type SynthConfig struct {
	Waveform   string   `json:"waveform"`
	Gain       float64  `json:"gain"`
	Release    Duration `json:"release"`
	SampleRate int      `json:"sampleRate"`
	Buffer     Duration `json:"buffer"`
	AutoStart  bool     `json:"autoStart,omitempty"` // open the audio device on launch
}

// MIDIConfig controls hardware input
type MIDIConfig struct {
	Enabled      bool     `json:"enabled"`
	Preferred    []string `json:"preferred,omitempty"` // port name substrings, connected first
	Excluded     []string `json:"excluded,omitempty"`
	PollInterval Duration `json:"pollInterval"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty"` // path to a GIMP .gpl palette
	LowOctave int    `json:"lowOctave"`         // first octave drawn
	Octaves   int    `json:"octaves"`           // octaves drawn
}

// Config is the main configuration structure
type Config struct {
	Keyboard KeyboardConfig `json:"keyboard"`
	Synth    SynthConfig    `json:"synth"`
	MIDI     MIDIConfig     `json:"midi"`
	UI       UIConfig       `json:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Keyboard: KeyboardConfig{
			StartOctave:    4,
			MinOctave:      0,
			MaxOctave:      8,
			OctaveDownKey:  "z",
			OctaveUpKey:    "x",
			Velocity:       100,
			ReleaseTimeout: Duration(600 * time.Millisecond),
		},
		Synth: SynthConfig{
			Waveform:   "sine",
			Gain:       0.2,
			Release:    Duration(30 * time.Millisecond),
			SampleRate: 44100,
			Buffer:     Duration(50 * time.Millisecond),
		},
		MIDI: MIDIConfig{
			Enabled:      true,
			Excluded:     []string{"Midi Through", "Through Port", "Dummy"},
			PollInterval: Duration(time.Second),
		},
		UI: UIConfig{
			LowOctave: 3,
			Octaves:   3,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jonika"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults;
// a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports settings that cannot work. Octave bounds given in
// reverse are swapped and the start octave is clamped into range.
func (c *Config) Validate() error {
	k := &c.Keyboard
	if k.MinOctave > k.MaxOctave {
		k.MinOctave, k.MaxOctave = k.MaxOctave, k.MinOctave
	}
	k.StartOctave = max(k.MinOctave, min(k.MaxOctave, k.StartOctave))

	var problems []string
	if k.OctaveDownKey == "" || k.OctaveUpKey == "" {
		problems = append(problems, "octave keys must be set")
	} else if k.OctaveDownKey == k.OctaveUpKey {
		problems = append(problems, "octave keys must differ")
	}
	for _, key := range []string{k.OctaveDownKey, k.OctaveUpKey} {
		if _, ok := keymap.KeyToNote(key, 0); ok {
			problems = append(problems, fmt.Sprintf("octave key %q is a note key", key))
		}
	}
	if k.MinOctave < 0 {
		problems = append(problems, fmt.Sprintf("minOctave %d below 0", k.MinOctave))
	}
	if k.MaxOctave > keymap.TopOctave {
		problems = append(problems, fmt.Sprintf("maxOctave %d above %d", k.MaxOctave, keymap.TopOctave))
	}
	if k.Velocity < 1 || k.Velocity > 127 {
		problems = append(problems, fmt.Sprintf("velocity %d out of range 1-127", k.Velocity))
	}
	if k.ReleaseTimeout <= 0 {
		problems = append(problems, "releaseTimeout must be positive")
	}

	s := c.Synth
	if s.Gain < 0 || s.Gain > 1 {
		problems = append(problems, fmt.Sprintf("gain %g out of range 0-1", s.Gain))
	}
	if s.Release <= 0 {
		problems = append(problems, "release must be positive")
	}
	if s.SampleRate < 8000 {
		problems = append(problems, fmt.Sprintf("sampleRate %d too low", s.SampleRate))
	}
	if s.Buffer <= 0 {
		problems = append(problems, "buffer must be positive")
	}

	if c.MIDI.PollInterval <= 0 {
		problems = append(problems, "pollInterval must be positive")
	}
	if c.UI.Octaves < 1 {
		problems = append(problems, "ui.octaves must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
