package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config holds logger configuration. A nil Config means JSON output to
// stdout at info level, which is what both binaries run in production.
type Config struct {
	Level   zerolog.Level
	Output  io.Writer
	Service string
	// Pretty switches to the human-readable console writer for local runs.
	Pretty bool
}

// Logger wraps zerolog with variadic key/value fields so callers do not
// build event chains by hand.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: zerolog.InfoLevel, Output: os.Stdout}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	builder := zerolog.New(out).Level(cfg.Level).With().Timestamp()
	if cfg.Service != "" {
		builder = builder.Str("service", cfg.Service)
	}

	return &Logger{zl: builder.Logger()}
}

// With returns a child logger carrying the given key/value pairs on every
// subsequent line.
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(pairs(fields)).Logger()}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(pairs(fields)).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(pairs(fields)).Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(pairs(fields)).Msg(msg)
}

func (l *Logger) Error(err error, msg string, fields ...interface{}) {
	l.zl.Error().Err(err).Fields(pairs(fields)).Msg(msg)
}

func (l *Logger) Fatal(err error, msg string, fields ...interface{}) {
	l.zl.Fatal().Err(err).Fields(pairs(fields)).Msg(msg)
}

// pairs folds a variadic key/value list into the map zerolog expects. An
// odd trailing value is dropped rather than panicking mid-request.
func pairs(fields []interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}
