package gxm

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so the dispatcher's
// per-command Debug calls cost one atomic load when logging is off.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})

	// current is read on the consumer goroutine for every command and may
	// be swapped from the producer side at any time.
	current atomic.Pointer[slog.Logger]
)

func init() { current.Store(silent) }

// SetLogger routes log output of the dispatcher, the protection tracker
// and the bundled backends to l. A nil logger silences them again, which
// is also the state a program starts in.
//
// Levels:
//   - [slog.LevelDebug]: every handled command, repeated missing features,
//     surface dump failures
//   - [slog.LevelInfo]: dispatcher creation and queue shutdown
//   - [slog.LevelWarn]: the first use of a feature the backend lacks
//   - [slog.LevelError]: failed commands and protection transitions the
//     pager refused
//
// The gxmreplay command installs a text handler on stderr:
//
//	gxm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}
