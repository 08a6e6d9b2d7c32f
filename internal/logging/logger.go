// Package logging wraps a process-wide zerolog logger.
//
// Logs always go to stderr by default: the stdio MCP transport owns stdout.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Int("triples", n).Msg("Graph loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Tool failed")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error, disabled. Default info.
	Level string
	// Format is json or console. Default json.
	Format string
	// Caller adds file:line to every entry.
	Caller bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu  sync.RWMutex
	log zerolog.Logger
)

func init() {
	configure(Config{})
}

// Init reconfigures the global logger. Safe to call more than once.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	configure(cfg)
}

func configure(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	zctx := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	log = zctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	default:
		parsed, err := zerolog.ParseLevel(l)
		if err != nil || parsed == zerolog.NoLevel {
			return zerolog.InfoLevel
		}
		return parsed
	}
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug starts a debug entry on the global logger. Info, Warn and Error
// follow the same pattern.
func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}
