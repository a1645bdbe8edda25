package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
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

	if err := InitWithFormat("json"); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if err := InitWithFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatJSON)
	SetLevel(slog.LevelInfo)

	l.Named("engine").With(String("application_id", "app-1")).Info(context.Background(), "scored", Float64("score", 81.5))

	out := buf.String()
	for _, want := range []string{`"msg":"scored"`, `"application_id":"app-1"`, `"score":81.5`, `"source"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatText)

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	defer SetLevel(slog.LevelInfo)

	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
	OrNop(nil).Error(context.Background(), "discarded", Error(context.Canceled))
}
