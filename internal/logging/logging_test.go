package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "error"} {
		if _, err := NewWithOutput(level, &bytes.Buffer{}); err != nil {
			t.Errorf("NewWithOutput(%q) error = %v", level, err)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	for _, level := range []string{"", "warn", "trace", "INFO"} {
		if _, err := NewWithOutput(level, &bytes.Buffer{}); err == nil {
			t.Errorf("NewWithOutput(%q) should fail", level)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput("error", &buf)
	if err != nil {
		t.Fatalf("NewWithOutput() error = %v", err)
	}

	log.Info("should be dropped")
	log.Error("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Error("info record logged at error level")
	}
	if !strings.Contains(out, "should be kept") {
		t.Error("error record missing")
	}
}
