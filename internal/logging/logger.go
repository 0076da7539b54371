package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

// requestIDKey carries the per-request id set by the request middleware.
const requestIDKey contextKey = "request_id"

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// Logger wraps zerolog for application logging.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger. Unknown levels fall back to info; "text" selects the
// human-readable console writer, anything else emits JSON.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return &Logger{
		logger: zerolog.New(output).Level(level).With().Timestamp().Str("service", "tunebox").Logger(),
	}
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.logger
}

// SetGlobalLogger installs logger as the zerolog global.
func SetGlobalLogger(logger *Logger) {
	log.Logger = logger.logger
}

// ContextWithRequestID returns ctx annotated with a request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext returns the global logger enriched with the request id in ctx.
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logger = logger.Str("request_id", requestID)
	}
	contextLogger := logger.Logger()
	return &contextLogger
}

// Info logs an info message using the global logger.
func Info(msg string) {
	log.Info().Msg(msg)
}

// Warn logs a warning using the global logger.
func Warn(msg string) {
	log.Warn().Msg(msg)
}

// Error logs err with msg using the global logger.
func Error(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}

// Fatal logs err with msg and exits.
func Fatal(err error, msg string) {
	log.Fatal().Err(err).Msg(msg)
}
