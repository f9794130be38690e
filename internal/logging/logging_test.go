package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDebug_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.DebugLevel)

	appLogger := &AppLogger{
		logger: logger,
		debug:  false, // Production mode
	}

	appLogger.Debug("debug message that should not appear")

	output := buf.String()
	if strings.Contains(output, "debug message that should not appear") {
		t.Errorf("Expected debug message to be suppressed in production mode, got: %s", output)
	}
}

func TestTestLogger_WritesAllLevels(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Debug("debug line", "path", "/a")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	output := buf.String()
	for _, want := range []string{"debug line", "path=/a", "info line", "warn line", "error line"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestLogPerformance(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogPerformance("save", time.Now().Add(-10*time.Millisecond))

	output := buf.String()
	if !strings.Contains(output, "Performance") || !strings.Contains(output, "operation=save") {
		t.Errorf("Expected performance entry, got: %s", output)
	}
}

func TestNewLeveledLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug level", "debug", true, true},
		{"info level", "info", false, true},
		{"warn level", "WARN", false, false},
		{"unknown falls back to warn", "chatty", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLeveledLogger(&buf, tt.level)

			logger.Debug("dbg-entry")
			logger.Info("info-entry")
			logger.Warn("warn-entry")

			output := buf.String()
			if got := strings.Contains(output, "dbg-entry"); got != tt.wantDebug {
				t.Errorf("debug entry present = %v, want %v (output: %s)", got, tt.wantDebug, output)
			}
			if got := strings.Contains(output, "info-entry"); got != tt.wantInfo {
				t.Errorf("info entry present = %v, want %v (output: %s)", got, tt.wantInfo, output)
			}
			if !strings.Contains(output, "warn-entry") {
				t.Errorf("warn entry missing: %s", output)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	logger, buf := NewTestLogger()
	SetDefault(logger)

	Info("routed through default", "key", "value")

	if !strings.Contains(buf.String(), "routed through default") {
		t.Errorf("Expected package-level Info to use the installed logger, got: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	logger, buf := NewTestLogger()

	child := logger.With("cmd", "save")
	child.Info("saved")
	logger.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "cmd=save") {
		t.Errorf("Expected child entry to carry cmd=save, got: %s", lines[0])
	}
	if strings.Contains(lines[1], "cmd=save") {
		t.Errorf("Expected parent entry without cmd, got: %s", lines[1])
	}
}

func TestNewAppLoggerProduction(t *testing.T) {
	t.Setenv("DEBUG", "")

	logger := NewAppLogger()
	if logger.debug {
		t.Error("Expected debug to be off without DEBUG")
	}
}
