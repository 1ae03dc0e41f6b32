package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_LevelFromConfig(t *testing.T) {
	logger, err := New(Config{Level: "WARN", Format: "json"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be enabled")
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "chatty"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled by the info fallback")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be enabled")
	}
}
