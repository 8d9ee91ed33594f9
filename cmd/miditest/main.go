package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"jonika/audio"
	"jonika/midi"
	"jonika/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pattern := ""
	if len(os.Args) > 2 {
		pattern = os.Args[2]
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "monitor":
		err = monitor(ctx, pattern, nil)
	case "play":
		err = play(ctx, pattern)
	case "poll":
		pollDevices(ctx)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list              - List all MIDI input ports")
	fmt.Println("  monitor [name]    - Print decoded messages from an input")
	fmt.Println("  play [name]       - Play an input through the synth")
	fmt.Println("  poll              - Watch controllers connect and disconnect")
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, err := midi.ListInputs()
	if errors.Is(err, midi.ErrScanTimeout) {
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
		fmt.Println("Fix (macOS): sudo killall coreaudiod midiserver")
		return nil
	}
	if err != nil {
		return err
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	return nil
}

// findInput returns the first input whose name contains pattern (any input when empty)
func findInput(pattern string) (drivers.In, error) {
	for _, p := range gomidi.GetInPorts() {
		if pattern == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(pattern)) {
			return p, nil
		}
	}
	if pattern == "" {
		return nil, errors.New("no MIDI inputs")
	}
	return nil, fmt.Errorf("no MIDI input matching %q", pattern)
}

// monitor prints every decoded message from the matching input, handing each
// to handle when it is set
func monitor(ctx context.Context, pattern string, handle func(midi.Message)) error {
	in, err := findInput(pattern)
	if err != nil {
		return err
	}
	kb, err := midi.NewKeyboardController(in.String(), in, zap.NewNop())
	if err != nil {
		return err
	}
	defer kb.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", kb.ID())
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-kb.Messages():
			if !ok {
				return nil
			}
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), msg)
			if handle != nil {
				handle(msg)
			}
		}
	}
}

func play(ctx context.Context, pattern string) error {
	out := audio.New(audio.Options{Waveform: audio.Triangle, Gain: audio.DefaultGain})
	if err := out.Start(); err != nil {
		return err
	}
	defer out.Close()

	engine := synth.NewEngine(synth.WithOutput(out))
	defer engine.Close()

	return monitor(ctx, pattern, engine.HandleMIDI)
}

func pollDevices(ctx context.Context) {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a MIDI keyboard to test. Ctrl+C to exit.")

	dm := midi.NewDeviceManager(midi.WithPollRate(2 * time.Second))
	go dm.Run(ctx)

	for ev := range dm.Events() {
		fmt.Printf("\n[%s] %s %s\n", time.Now().Format("15:04:05"), ev.ID, ev.Type)
		fmt.Printf("  Connected: %v\n", dm.Names())
	}
}
