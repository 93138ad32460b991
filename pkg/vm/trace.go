package vm

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug; enable it to see every executed opcode.
const LevelTrace slog.Level = slog.LevelDebug - 4

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
