// Package logger provides structured logging capabilities for the chat claim service.
// It supports multiple log levels, JSON formatting, and integration with OpenTelemetry for distributed tracing.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/chatclaim/pkg/constants"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, message string, fields ...Field)

	// Info logs an informational message
	Info(ctx context.Context, message string, fields ...Field)

	// Warn logs a warning message
	Warn(ctx context.Context, message string, fields ...Field)

	// Error logs an error message
	Error(ctx context.Context, message string, err error, fields ...Field)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithFields creates a new logger with additional fields
	WithFields(fields ...Field) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger
}

// ================================================================================
// Field Type for Structured Logging
// ================================================================================

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with any type
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ================================================================================
// Logger Implementation
// ================================================================================

type logger struct {
	level      constants.LogLevel
	output     io.Writer
	mu         *sync.Mutex
	component  string
	baseFields []Field
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// NewLogger creates a new Logger instance
func NewLogger(level constants.LogLevel, output io.Writer) Logger {
	if output == nil {
		output = os.Stdout
	}

	return &logger{
		level:      level,
		output:     output,
		mu:         &sync.Mutex{},
		baseFields: make([]Field, 0),
	}
}

// NewDefaultLogger creates a logger with default settings (stdout, Info level)
func NewDefaultLogger() Logger {
	return NewLogger(constants.LogLevelInfo, os.Stdout)
}

func (l *logger) Debug(ctx context.Context, message string, fields ...Field) {
	if l.level > constants.LogLevelDebug {
		return
	}
	l.log(ctx, constants.LogLevelDebug, message, fields...)
}

func (l *logger) Info(ctx context.Context, message string, fields ...Field) {
	if l.level > constants.LogLevelInfo {
		return
	}
	l.log(ctx, constants.LogLevelInfo, message, fields...)
}

func (l *logger) Warn(ctx context.Context, message string, fields ...Field) {
	if l.level > constants.LogLevelWarn {
		return
	}
	l.log(ctx, constants.LogLevelWarn, message, fields...)
}

func (l *logger) Error(ctx context.Context, message string, err error, fields ...Field) {
	if l.level > constants.LogLevelError {
		return
	}
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.log(ctx, constants.LogLevelError, message, fields...)
}

// Fatal logs regardless of level and exits
func (l *logger) Fatal(ctx context.Context, message string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.log(ctx, constants.LogLevelFatal, message, fields...)
	os.Exit(1)
}

func (l *logger) WithFields(fields ...Field) Logger {
	newLogger := &logger{
		level:      l.level,
		output:     l.output,
		mu:         l.mu,
		component:  l.component,
		baseFields: make([]Field, len(l.baseFields)+len(fields)),
	}

	copy(newLogger.baseFields, l.baseFields)
	copy(newLogger.baseFields[len(l.baseFields):], fields)

	return newLogger
}

func (l *logger) WithComponent(component string) Logger {
	newLogger := &logger{
		level:      l.level,
		output:     l.output,
		mu:         l.mu,
		component:  component,
		baseFields: make([]Field, len(l.baseFields)),
	}

	copy(newLogger.baseFields, l.baseFields)

	return newLogger
}

func (l *logger) log(ctx context.Context, level constants.LogLevel, message string, fields ...Field) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     levelToString(level),
		Component: l.component,
		Message:   message,
		Fields:    make(map[string]interface{}),
	}

	if ctx != nil {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			entry.TraceID = span.SpanContext().TraceID().String()
			entry.SpanID = span.SpanContext().SpanID().String()
		}

		if requestID := ctx.Value(constants.ContextKeyRequestID); requestID != nil {
			entry.Fields["request_id"] = requestID
		}
		if tenantID := ctx.Value(constants.ContextKeyTenantID); tenantID != nil {
			entry.Fields["tenant_id"] = tenantID
		}
	}

	if level >= constants.LogLevelError {
		entry.Caller = getCaller(3)
	}

	for _, field := range l.baseFields {
		entry.Fields[field.Key] = SanitizeValue(field.Key, field.Value)
	}
	for _, field := range fields {
		entry.Fields[field.Key] = SanitizeValue(field.Key, field.Value)
	}

	jsonData, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if marshalErr != nil {
		fmt.Fprintf(l.output, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, message, marshalErr)
		return
	}
	fmt.Fprintln(l.output, string(jsonData))
}

// ================================================================================
// Utility Functions
// ================================================================================

func levelToString(level constants.LogLevel) string {
	switch level {
	case constants.LogLevelDebug:
		return "DEBUG"
	case constants.LogLevelInfo:
		return "INFO"
	case constants.LogLevelWarn:
		return "WARN"
	case constants.LogLevelError:
		return "ERROR"
	case constants.LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a textual level to a LogLevel, defaulting to Info
func ParseLevel(level string) constants.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return constants.LogLevelDebug
	case "warn", "warning":
		return constants.LogLevelWarn
	case "error":
		return constants.LogLevelError
	case "fatal":
		return constants.LogLevelFatal
	default:
		return constants.LogLevelInfo
	}
}

func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}

	parts := strings.Split(file, "/")
	if len(parts) > 0 {
		file = parts[len(parts)-1]
	}

	return fmt.Sprintf("%s:%d", file, line)
}

var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"authorization",
	"private_key",
	"session_token",
	"access_key",
	"payload",
}

// SanitizeValue masks values whose key looks sensitive.
// Keys ending in "_length" or "_count" are metadata about a secret and pass through.
func SanitizeValue(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	if strings.HasSuffix(keyLower, "_length") || strings.HasSuffix(keyLower, "_count") {
		return value
	}
	for _, sensitiveKey := range sensitiveKeys {
		if strings.Contains(keyLower, sensitiveKey) {
			if str, ok := value.(string); ok && len(str) > 0 {
				return maskString(str)
			}
			return "***REDACTED***"
		}
	}

	return value
}

// maskString partially masks a string value
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}

	// Show first 4 and last 4 characters
	return s[:4] + "***" + s[len(s)-4:]
}
