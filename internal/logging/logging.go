// Package logging hands every netcopy component a named sub-logger,
// backed by github.com/tliron/commonlog with the commonlog/simple
// backend registered via blank import.
package logging

import (
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Logger is the per-component handle every netcopy package logs
// through; it is exactly commonlog's own Logger so callers never need
// an adapter.
type Logger = commonlog.Logger

// For returns a named logger scoped to one component, e.g.
// logging.For("session.server") or logging.For("transfer.client").
func For(name string) Logger {
	return commonlog.GetLogger(name)
}

// Configure sets the process-wide maximum log level once at startup,
// from a [logging] log_level config value (empty for the default).
// verbose forces Debug regardless of levelStr, matching -verbose on
// both executables.
func Configure(levelStr string, verbose bool) {
	level := commonlog.Info
	if levelStr != "" {
		level = levelFromString(levelStr)
	}
	if verbose {
		level = commonlog.Debug
	}
	commonlog.SetMaxLevel(level)
}

func levelFromString(s string) commonlog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return commonlog.Debug
	case "notice":
		return commonlog.Notice
	case "warning", "warn":
		return commonlog.Warning
	case "error":
		return commonlog.Error
	case "critical":
		return commonlog.Critical
	default:
		return commonlog.Info
	}
}
