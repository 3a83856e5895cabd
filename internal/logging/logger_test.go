package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "oulpan.log")
	if err := Init(path, "debug"); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Info("Test info message", "key", "value")
	Debug("Test debug message", "count", 42)
	Warn("Test warning message", "source", "test")
	Error("Test error message", "error", "test error")
	WithPrefix("session").Info("prefixed")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"Test info message", "count=42", "session:", "prefixed", "oulpan shutting down"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oulpan.log")
	if err := Init(path, "warn"); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debug("hidden debug")
	Warn("shown warning")
	Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden debug") {
		t.Error("debug line written at warn level")
	}
	if !strings.Contains(string(data), "shown warning") {
		t.Error("warning line missing")
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Close()
	Info("dropped")
	if WithPrefix("x") != nil {
		t.Error("expected nil logger before Init")
	}
}

func TestInitBadLevel(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
