package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// capture swaps the package logger for one writing JSON to a buffer and
// returns the buffer plus a restore function.
func capture(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &buf, func() { defaultLogger = old }
}

func TestInitLogger(t *testing.T) {
	defer InitLogger(LevelInfo, FormatText)

	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, Level(99)}
	formats := []Format{FormatJSON, FormatText}
	for _, level := range levels {
		for _, format := range formats {
			InitLogger(level, format)
			if GetLogger() == nil {
				t.Fatalf("GetLogger() is nil after InitLogger(%v, %v)", level, format)
			}
		}
	}
}

func TestLogHelpers(t *testing.T) {
	buf, restore := capture(t)
	defer restore()

	Debug("debug msg", "k", "v")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestImportEvent(t *testing.T) {
	buf, restore := capture(t)
	defer restore()

	ImportEvent("run-1", "dex.sql", 42, "table", "pokemon_species")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "import_event" {
		t.Errorf("msg = %v, want import_event", entry["msg"])
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if entry["statements"] != float64(42) {
		t.Errorf("statements = %v", entry["statements"])
	}
	if entry["table"] != "pokemon_species" {
		t.Errorf("extra arg missing: %v", entry)
	}
}

func TestArtifactIngest(t *testing.T) {
	buf, restore := capture(t)
	defer restore()

	ArtifactIngest("saves/block.pkm.xz", "deadbeef", 136)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "artifact_ingest" {
		t.Errorf("msg = %v, want artifact_ingest", entry["msg"])
	}
	if entry["blake3"] != "deadbeef" {
		t.Errorf("blake3 = %v", entry["blake3"])
	}
	if entry["size_bytes"] != float64(136) {
		t.Errorf("size_bytes = %v", entry["size_bytes"])
	}
}
