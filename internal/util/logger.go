package util

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// App is the process logger. It discards everything until Init is called,
// so library packages can log unconditionally.
var App = zerolog.Nop()

// Init points App at a console writer on stderr filtered at level
// (trace, debug, info, warn, error).
func Init(level string) error {
	return InitWriter(os.Stderr, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	App = zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "cfgcheck").Logger()
	return nil
}
