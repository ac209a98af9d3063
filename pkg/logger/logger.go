package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
	)
}

// LogReservationCreated logs a successful booking
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID string, concertID uint, quantity int, googleAuth bool) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("reservation_id", reservationID),
		slog.Uint64("concert_id", uint64(concertID)),
		slog.Int("quantity", quantity),
		slog.Bool("google_auth", googleAuth),
	)
}

// LogReservationStatusChanged logs admin status transitions and their inventory effect
func (l *Logger) LogReservationStatusChanged(ctx context.Context, reservationID, from, to string, ticketsReturned int) {
	l.Logger.InfoContext(ctx,
		"Reservation Status Changed",
		slog.String("reservation_id", reservationID),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("tickets_returned", ticketsReturned),
	)
}

// LogConcertUpdated logs admin capacity/status edits
func (l *Logger) LogConcertUpdated(ctx context.Context, concertID uint, totalTickets, availableTickets int) {
	l.Logger.InfoContext(ctx,
		"Concert Updated",
		slog.Uint64("concert_id", uint64(concertID)),
		slog.Int("total_tickets", totalTickets),
		slog.Int("available_tickets", availableTickets),
	)
}

// LogLockWait logs how long a request waited on a concert's lock
func (l *Logger) LogLockWait(ctx context.Context, key string, waited time.Duration) {
	l.Logger.DebugContext(ctx,
		"Lock Acquired",
		slog.String("key", key),
		slog.Duration("waited", waited),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogSideEffectFailure logs a best-effort side effect (notification, broadcast)
// that failed. These never affect the request outcome.
func (l *Logger) LogSideEffectFailure(ctx context.Context, effect string, err error) {
	l.Logger.WarnContext(ctx,
		"Side Effect Failed",
		slog.String("effect", effect),
		slog.String("error", err.Error()),
	)
}

// Global logger instance
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
