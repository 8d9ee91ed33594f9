package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("midi", "connected %s", "Keystation")
	for i := 0; i < 4; i++ {
		LogEvery(2, "tick", "expired %d keys", i)
	}
	Disable()

	// Ignored once disabled
	Log("midi", "after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Debug logging started", "connected Keystation", "every 2, count=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "after disable") {
		t.Error("logged after Disable")
	}
	if strings.Contains(out, "count=1") || strings.Contains(out, "count=3") {
		t.Error("LogEvery logged on an off count")
	}
}

func TestLoggerIsNopByDefault(t *testing.T) {
	if Enabled() {
		t.Fatal("logging enabled without Enable")
	}
	// Must be safe to use without Enable
	Logger().Info("dropped")
}
