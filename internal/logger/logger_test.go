package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	if err := Initialize("verbose", false); err == nil {
		t.Fatal("expected error for unknown level")
	}

	if err := Initialize("WARNING", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if zap.L().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !zap.L().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}
