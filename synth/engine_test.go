package synth

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"jonika/midi"
)

// fakeOutput records every command scheduled on its voices
type fakeOutput struct {
	mu     sync.Mutex
	now    float64
	voices []*fakeVoice
}

func (f *fakeOutput) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeOutput) NewVoice(frequency float64) VoiceNode {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := &fakeVoice{frequency: frequency}
	f.voices = append(f.voices, v)
	return v
}

func (f *fakeOutput) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d.Seconds()
}

type fakeVoice struct {
	frequency float64
	started   bool
	commands  []string
	stopAt    float64
}

func (v *fakeVoice) Start() {
	v.started = true
}

func (v *fakeVoice) SetGainAt(value, at float64) {
	v.commands = append(v.commands, fmt.Sprintf("set %g@%.3f", value, at))
}

func (v *fakeVoice) ExponentialRampTo(value, at float64) {
	v.commands = append(v.commands, fmt.Sprintf("ramp %g@%.3f", value, at))
}

func (v *fakeVoice) Stop(at float64) {
	v.stopAt = at
	v.commands = append(v.commands, fmt.Sprintf("stop@%.3f", at))
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
	}
	for _, tt := range tests {
		if got := Frequency(tt.note); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Frequency(%d) = %f, want %f", tt.note, got, tt.want)
		}
	}
}

func TestNoteOnTwiceKeepsOneVoice(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out))

	e.NoteOn(60, 100)
	e.NoteOn(60, 100)

	if got := e.Active(); !reflect.DeepEqual(got, []int{60}) {
		t.Fatalf("Active() = %v, want [60]", got)
	}
	if len(out.voices) != 1 {
		t.Fatalf("created %d voices, want 1", len(out.voices))
	}
	v := out.voices[0]
	if !v.started {
		t.Fatal("voice not started")
	}
	if want := []string{"set 1@0.000"}; !reflect.DeepEqual(v.commands, want) {
		t.Fatalf("commands = %v, want %v", v.commands, want)
	}
}

func TestNoteOffUnknownIsNoop(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out))
	e.NoteOn(64, 90)

	e.NoteOff(60)
	if got := e.Active(); !reflect.DeepEqual(got, []int{64}) {
		t.Fatalf("Active() = %v, want [64]", got)
	}
	if len(out.voices[0].commands) != 1 {
		t.Fatalf("unrelated voice touched: %v", out.voices[0].commands)
	}
}

func TestNoteOffSchedulesRelease(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out))

	e.NoteOn(60, 100)
	out.advance(time.Second)
	e.NoteOff(60)

	if e.IsActive(60) {
		t.Fatal("note still active after note off")
	}
	want := []string{"set 1@0.000", "set 1@1.000", "ramp 0.0001@1.030", "stop@1.040"}
	if got := out.voices[0].commands; !reflect.DeepEqual(got, want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
}

func TestRetriggerDuringReleaseCreatesNewVoice(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out))

	e.NoteOn(60, 100)
	e.NoteOff(60)
	e.NoteOn(60, 100)

	if len(out.voices) != 2 {
		t.Fatalf("created %d voices, want 2", len(out.voices))
	}
	if out.voices[1].stopAt != 0 || len(out.voices[1].commands) != 1 {
		t.Fatalf("new voice inherited release: %v", out.voices[1].commands)
	}
	if !e.IsActive(60) {
		t.Fatal("retriggered note not active")
	}
}

func TestStopAll(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out), WithRelease(50*time.Millisecond))

	for _, n := range []int{60, 64, 67} {
		e.NoteOn(n, 100)
	}
	e.StopAll()

	if got := e.Active(); len(got) != 0 {
		t.Fatalf("Active() = %v after StopAll", got)
	}
	for i, v := range out.voices {
		if math.Abs(v.stopAt-0.06) > 1e-9 {
			t.Errorf("voice %d stop at %f, want 0.06", i, v.stopAt)
		}
	}

	// Empty stop-all is harmless
	e.StopAll()
}

func TestNoOutputIsQuiescent(t *testing.T) {
	e := NewEngine()
	e.NoteOn(60, 100)
	if !e.IsActive(60) {
		t.Fatal("state should update without an output")
	}
	v, ok := e.Voice(60)
	if !ok || v.Node != nil {
		t.Fatalf("Voice(60) = %+v, %v", v, ok)
	}
	e.NoteOff(60)
	if e.IsActive(60) {
		t.Fatal("note still active")
	}
}

func TestSetOutputKeepsVoiceOnOriginalOutput(t *testing.T) {
	first := &fakeOutput{}
	e := NewEngine(WithOutput(first))
	e.NoteOn(60, 100)

	e.SetOutput(nil)
	e.NoteOn(62, 100)
	e.NoteOff(60)

	if len(first.voices) != 1 || first.voices[0].stopAt == 0 {
		t.Fatal("voice on detached output was not released")
	}

	second := &fakeOutput{}
	e.SetOutput(second)
	e.NoteOn(64, 100)
	if len(second.voices) != 1 {
		t.Fatalf("new output got %d voices, want 1", len(second.voices))
	}
}

func TestHandleMIDI(t *testing.T) {
	e := NewEngine()
	e.HandleMIDI(midi.Decode([]byte{0x90, 60, 100}))
	e.HandleMIDI(midi.Decode([]byte{0x91, 64, 0})) // velocity 0 stays note on
	e.HandleMIDI(midi.Decode([]byte{0xB0, 7, 100}))
	if got := e.Active(); !reflect.DeepEqual(got, []int{60, 64}) {
		t.Fatalf("Active() = %v", got)
	}

	e.HandleMIDI(midi.Decode([]byte{0x80, 60, 0}))
	if e.IsActive(60) {
		t.Fatal("note off not applied")
	}

	e.HandleMIDI(midi.Decode([]byte{0xFC}))
	if got := e.Active(); len(got) != 0 {
		t.Fatalf("Active() = %v after stop", got)
	}
}

func TestActiveIsACopy(t *testing.T) {
	e := NewEngine()
	e.NoteOn(62, 100)
	e.NoteOn(60, 100)

	got := e.Active()
	if !reflect.DeepEqual(got, []int{60, 62}) {
		t.Fatalf("Active() = %v", got)
	}
	got[0] = 99
	if e.IsActive(99) || !e.IsActive(60) {
		t.Fatal("mutating the snapshot changed engine state")
	}
	if e.IsActive(-5) || e.IsActive(500) {
		t.Fatal("out of range notes must be inactive")
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	a, b := NewEngine(), NewEngine()
	a.NoteOn(60, 100)
	if b.IsActive(60) {
		t.Fatal("engines share state")
	}
}

func TestClose(t *testing.T) {
	out := &fakeOutput{}
	e := NewEngine(WithOutput(out))
	e.NoteOn(60, 100)
	e.Close()

	if len(e.Active()) != 0 {
		t.Fatal("Close left notes active")
	}
	e.NoteOn(61, 100)
	if len(out.voices) != 1 {
		t.Fatal("engine still uses output after Close")
	}
}

func TestConcurrentSources(t *testing.T) {
	e := NewEngine(WithOutput(&fakeOutput{}))
	var wg sync.WaitGroup
	for src := 0; src < 4; src++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				n := 48 + i%24
				e.NoteOn(n, 100)
				e.NoteOff(n)
			}
		}()
	}
	wg.Wait()
	e.StopAll()
	if len(e.Active()) != 0 {
		t.Fatal("notes left active")
	}
}
