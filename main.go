package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jonika/audio"
	"jonika/config"
	"jonika/debug"
	"jonika/input"
	"jonika/keymap"
	"jonika/midi"
	"jonika/synth"
	"jonika/theme"
	"jonika/tui"
)

// Command-line overrides
var flags struct {
	configPath string
	debug      bool
	debugPath  string
	octave     int
	waveform   string
	noMIDI     bool
	audio      bool
	saveConfig bool
}

var rootCmd = &cobra.Command{
	Use:   "jonika",
	Short: "A terminal synthesizer keyboard",
	Long: `jonika turns the computer keyboard into a piano.

The home row (a s d f g h j k l) plays naturals, the row above
(w e t y u o p) plays accidentals, z and x shift the octave.
Hardware MIDI keyboards are picked up as they are plugged in.`,
	SilenceUsage: true,
	RunE:         run,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := midi.ListInputs()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no MIDI inputs")
		}
		for i, n := range names {
			fmt.Printf("  [%d] %s\n", i, n)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"Config file (default ~/.config/jonika/config.json)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false,
		"Write debug logs to ~/.config/jonika/debug.log")
	rootCmd.PersistentFlags().StringVar(&flags.debugPath, "debug-file", "",
		"Write debug logs to this file instead (implies --debug)")
	rootCmd.Flags().IntVarP(&flags.octave, "octave", "o", -1,
		"Starting octave (overrides config)")
	rootCmd.Flags().StringVarP(&flags.waveform, "waveform", "w", "",
		"Oscillator: sine, square, sawtooth or triangle (overrides config)")
	rootCmd.Flags().BoolVar(&flags.noMIDI, "no-midi", false,
		"Do not listen for MIDI controllers")
	rootCmd.Flags().BoolVarP(&flags.audio, "audio", "a", false,
		"Open the audio device on launch instead of waiting for tab")
	rootCmd.Flags().BoolVar(&flags.saveConfig, "save-config", false,
		"Write the effective config to the config file and exit")

	rootCmd.AddCommand(portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("octave") {
		cfg.Keyboard.StartOctave = flags.octave
	}
	if flags.waveform != "" {
		cfg.Synth.Waveform = flags.waveform
	}
	if flags.noMIDI {
		cfg.MIDI.Enabled = false
	}
	if flags.audio {
		cfg.Synth.AutoStart = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	if flags.debug || flags.debugPath != "" {
		if err := debug.Enable(flags.debugPath); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}
	log := debug.Logger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	wave, err := audio.ParseWaveform(cfg.Synth.Waveform)
	if err != nil {
		return err
	}

	if flags.saveConfig {
		if flags.configPath != "" {
			err = cfg.SaveTo(flags.configPath)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("config saved")
		return nil
	}

	// Theme
	th := theme.New(nil)
	if cfg.UI.Palette != "" {
		palette, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			return err
		}
		th = theme.New(palette)
	}

	// Engine starts without output; audio attaches on tab or --audio
	engine := synth.NewEngine(
		synth.WithLogger(log.Named("engine")),
		synth.WithRelease(cfg.Synth.Release.Std()),
	)
	defer engine.Close()

	out := audio.New(audio.Options{
		SampleRate: cfg.Synth.SampleRate,
		Buffer:     cfg.Synth.Buffer.Std(),
		Waveform:   wave,
		Gain:       cfg.Synth.Gain,
		Logger:     log.Named("audio"),
	})
	defer out.Close()
	if cfg.Synth.AutoStart {
		if err := out.Start(); err != nil {
			return err
		}
		engine.SetOutput(out)
	}

	k := cfg.Keyboard
	listener := input.NewListener()
	defer listener.Close()
	keyboard := synth.NewKeyboard(listener, engine,
		keymap.NewOctave(k.StartOctave, k.MinOctave, k.MaxOctave),
		synth.WithOctaveKeys(k.OctaveDownKey, k.OctaveUpKey),
		synth.WithVelocity(uint8(k.Velocity)),
	)
	defer keyboard.Close()

	// MIDI device manager (handles hot-plug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.Enabled {
		deviceMgr = midi.NewDeviceManager(
			midi.WithPollRate(cfg.MIDI.PollInterval.Std()),
			midi.WithPreferred(cfg.MIDI.Preferred),
			midi.WithExcluded(cfg.MIDI.Excluded),
			midi.WithLogger(log.Named("midi")),
		)
		go deviceMgr.Run(ctx)
	}

	log.Info("starting",
		zap.Int("octave", k.StartOctave),
		zap.Stringer("waveform", wave),
		zap.Bool("midi", cfg.MIDI.Enabled))

	m := tui.NewModel(tui.Options{
		Engine:         engine,
		Listener:       listener,
		Keyboard:       keyboard,
		Audio:          out,
		DeviceMgr:      deviceMgr,
		Theme:          th,
		ReleaseTimeout: k.ReleaseTimeout.Std(),
		LowOctave:      cfg.UI.LowOctave,
		Octaves:        cfg.UI.Octaves,
		Waveform:       wave.String(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
