package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// VerbosityToLevel maps a numeric verbosity (0 = silent .. 5 = trace) to a
// slog level. Values outside the range are clamped. Level 0 maps above
// Error so nothing is emitted.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	case v == 4:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// LevelFromString parses a level name. The match is case-insensitive and
// accepts "warning" for warn and "trace" for the level below debug.
func LevelFromString(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return slog.LevelDebug - 4, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "silent":
		return slog.LevelError + 4, nil
	}
	return slog.LevelInfo, fmt.Errorf("log: unknown level %q", s)
}
