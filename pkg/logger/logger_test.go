package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat("json", &buf); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Get().Info(context.Background(), "upload processed",
		String("upload_id", "u-1"),
		Int("rows", 3),
		Bool("duplicate", false),
		Duration("took", time.Millisecond),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a json log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "upload processed" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["upload_id"] != "u-1" {
		t.Errorf("unexpected upload_id: %v", entry["upload_id"])
	}
	source, _ := entry["source"].(string)
	if !strings.Contains(source, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", source)
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := InitWithFormat("xml", nil); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat("text", &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("worker").Error(context.Background(), "boom", Error(errors.New("bad row")))

	out := buf.String()
	if !strings.Contains(out, "logger=worker") {
		t.Errorf("named logger should tag its lines, got %q", out)
	}
	if !strings.Contains(out, "bad row") {
		t.Errorf("error field missing, got %q", out)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat("text", &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("level %q should be accepted: %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}

	_ = SetLevelString("error")
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info lines should be filtered at error level, got %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "dropped", String("k", "v"))
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
