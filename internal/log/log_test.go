package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	defer SetLevel(LevelInfo)

	Debug("hidden", "k", 1)
	Info("shown", "date", "2025-03-10", "events", 3)
	Error("failed", errors.New("boom"), "entry", "e1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[INFO] shown date=2025-03-10 events=3") {
		t.Errorf("expected info line with key/values, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom entry=e1") {
		t.Errorf("expected error line with err first, got %q", out)
	}
}

func TestOddKeyValuesDropTrailing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetLevel(LevelInfo)

	Debug("odd", "a", 1, "dangling")
	if strings.Contains(buf.String(), "dangling") {
		t.Errorf("expected dangling key to be dropped, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" ERROR ": LevelError,
		"info":    LevelInfo,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
