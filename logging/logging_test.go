package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fastfolder.log")
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitNop()

	Info("search finished", String("query", "proj"), Int("results", 3))
	Debug("visible at debug")
	SetLevel("warn")
	Info("hidden at warn")
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"search finished"`, `"query":"proj"`, "visible at debug"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden at warn") {
		t.Errorf("info message logged after raising level to warn:\n%s", out)
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := Init(Config{Level: "loud", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitNop()

	Debug("debug line")
	Info("info line")
	_ = Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "debug line") || !strings.Contains(string(data), "info line") {
		t.Errorf("unexpected output:\n%s", data)
	}
}
