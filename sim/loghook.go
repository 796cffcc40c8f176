package sim

import (
	"io"
	"log/slog"
	"strings"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*slog.Logger
}

// ParseLogLevel converts "debug", "info", "warn" or "error" into a slog
// level. Unknown names fall back to info.
func ParseLogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a text logger that writes to w and tags every line with
// the module name.
func NewLogger(w io.Writer, level string, module string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	})

	return slog.New(handler).With("module", module)
}
