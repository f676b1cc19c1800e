// Package logging provides AURA's operational logging facade. It keeps the
// leveled, component-scoped call-site API troubleshooting sessions expect,
// backed internally by zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LOG LEVELS
// ═══════════════════════════════════════════════════════════════════════════════

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota // Detailed debugging information
	LevelInfo               // General operational information
	LevelWarn               // Warning conditions
	LevelError              // Error conditions
	LevelFatal              // Fatal errors (will exit)
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Color returns the ANSI color code for each level.
func (l Level) Color() string {
	switch l {
	case LevelDebug:
		return "\033[36m" // Cyan
	case LevelInfo:
		return "\033[32m" // Green
	case LevelWarn:
		return "\033[33m" // Yellow
	case LevelError:
		return "\033[31m" // Red
	case LevelFatal:
		return "\033[35m" // Magenta
	default:
		return "\033[0m" // Reset
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel parses a string into a Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGER
// ═══════════════════════════════════════════════════════════════════════════════

// Logger is AURA's logging facade, backed by a zerolog.Logger.
type Logger struct {
	mu         sync.Mutex
	zl         zerolog.Logger
	level      Level
	output     io.Writer
	fileOutput io.Writer
	file       *os.File
	colored    bool
	showCaller bool
	showTime   bool
	component  string
	fields     map[string]interface{}
}

// Config configures the logger behavior.
type Config struct {
	Level      Level  // Minimum level to log
	FilePath   string // Optional file path for persistent logs
	Colored    bool   // Enable colored output
	ShowCaller bool   // Show file:line of caller
	ShowTime   bool   // Show timestamp
	Component  string // Component name prefix
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Colored:    true,
		ShowCaller: false,
		ShowTime:   true,
		Component:  "",
	}
}

// VerboseConfig returns a configuration for verbose troubleshooting.
func VerboseConfig() *Config {
	return &Config{
		Level:      LevelDebug,
		Colored:    true,
		ShowCaller: true,
		ShowTime:   true,
		Component:  "",
	}
}

// New creates a new Logger instance.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{
		level:      cfg.Level,
		output:     os.Stderr,
		colored:    cfg.Colored,
		showCaller: cfg.ShowCaller,
		showTime:   cfg.ShowTime,
		component:  cfg.Component,
		fields:     make(map[string]interface{}),
	}
	l.rebuild()

	if cfg.FilePath != "" {
		if err := l.SetFileOutput(cfg.FilePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		}
	}

	return l
}

// rebuild reconstructs the backing zerolog.Logger from the facade's current
// output, level, and context fields. Must be called with mu held.
func (l *Logger) rebuild() {
	var w io.Writer = l.output
	if l.fileOutput != nil {
		w = zerolog.MultiLevelWriter(l.output, l.fileOutput)
	}

	if l.colored {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05.000", NoColor: false}
		w = cw
	}

	ctx := zerolog.New(w).Level(l.level.zerologLevel()).With()
	if l.showTime {
		ctx = ctx.Timestamp()
	}
	if l.showCaller {
		ctx = ctx.CallerWithSkipFrameCount(4)
	}
	if l.component != "" {
		ctx = ctx.Str("component", l.component)
	}
	for k, v := range l.fields {
		ctx = ctx.Interface(k, v)
	}

	l.zl = ctx.Logger()
}

// ═══════════════════════════════════════════════════════════════════════════════
// GLOBAL LOGGER
// ═══════════════════════════════════════════════════════════════════════════════

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

func init() {
	globalLogger = New(DefaultConfig())
}

// SetGlobal sets the global logger instance.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the global logger instance.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// EnableVerbose enables verbose logging globally.
func EnableVerbose() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.mu.Lock()
	globalLogger.level = LevelDebug
	globalLogger.showCaller = true
	globalLogger.rebuild()
	globalLogger.mu.Unlock()
}

// SetLevel sets the global log level.
func SetLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.mu.Lock()
	globalLogger.level = level
	globalLogger.rebuild()
	globalLogger.mu.Unlock()
}

// DisableConsoleOutput disables console output, logging only to file.
func DisableConsoleOutput() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.mu.Lock()
	globalLogger.output = io.Discard
	globalLogger.rebuild()
	globalLogger.mu.Unlock()
}

// EnableConsoleOutput re-enables console output.
func EnableConsoleOutput() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.mu.Lock()
	globalLogger.output = os.Stderr
	globalLogger.rebuild()
	globalLogger.mu.Unlock()
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGER METHODS
// ═══════════════════════════════════════════════════════════════════════════════

// SetOutput redirects the logger's primary writer. Exposed for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// SetFileOutput sets up file logging.
func (l *Logger) SetFileOutput(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	if l.file != nil {
		l.file.Close()
	}

	l.file = f
	l.fileOutput = f
	l.rebuild()
	return nil
}

// Close closes any open file handles.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.fileOutput = nil
		return err
	}
	return nil
}

// WithComponent returns a new logger with a component prefix.
func (l *Logger) WithComponent(name string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := l.clone()
	newLogger.component = name
	newLogger.rebuild()
	return newLogger
}

// WithField returns a new logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := l.clone()
	newLogger.fields[key] = value
	newLogger.rebuild()
	return newLogger
}

// WithFields returns a new logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := l.clone()
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	newLogger.rebuild()
	return newLogger
}

// clone copies the facade state (but not the zerolog.Logger, which is
// rebuilt by the caller). Must be called with mu held.
func (l *Logger) clone() *Logger {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}

	return &Logger{
		level:      l.level,
		output:     l.output,
		fileOutput: l.fileOutput,
		file:       l.file,
		colored:    l.colored,
		showCaller: l.showCaller,
		showTime:   l.showTime,
		component:  l.component,
		fields:     fields,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOG METHODS
// ═══════════════════════════════════════════════════════════════════════════════

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	zl := l.zl
	l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	zl.WithLevel(level.zerologLevel()).Msg(msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(LevelFatal, format, args...)
	os.Exit(1)
}

// ═══════════════════════════════════════════════════════════════════════════════
// GLOBAL LOG FUNCTIONS
// ═══════════════════════════════════════════════════════════════════════════════

// Debug logs a debug message using the global logger.
func Debug(format string, args ...interface{}) {
	Global().Debug(format, args...)
}

// Info logs an info message using the global logger.
func Info(format string, args ...interface{}) {
	Global().Info(format, args...)
}

// Warn logs a warning message using the global logger.
func Warn(format string, args ...interface{}) {
	Global().Warn(format, args...)
}

// Error logs an error message using the global logger.
func Error(format string, args ...interface{}) {
	Global().Error(format, args...)
}

// Fatal logs a fatal message using the global logger and exits.
func Fatal(format string, args ...interface{}) {
	Global().Fatal(format, args...)
}

// ═══════════════════════════════════════════════════════════════════════════════
// VERBOSE TRACING
// ═══════════════════════════════════════════════════════════════════════════════

// Trace logs entry into a function (for verbose tracing).
func (l *Logger) Trace(funcName string) func() {
	start := time.Now()
	l.Debug("→ ENTER %s", funcName)
	return func() {
		l.Debug("← EXIT  %s (took %v)", funcName, time.Since(start))
	}
}

// TraceWithArgs logs entry with arguments.
func (l *Logger) TraceWithArgs(funcName string, args map[string]interface{}) func() {
	start := time.Now()
	l.WithFields(args).Debug("→ ENTER %s", funcName)
	return func() {
		l.Debug("← EXIT  %s (took %v)", funcName, time.Since(start))
	}
}

// Trace logs entry using global logger.
func Trace(funcName string) func() {
	return Global().Trace(funcName)
}

// ═══════════════════════════════════════════════════════════════════════════════
// SPECIALIZED LOGGING
// ═══════════════════════════════════════════════════════════════════════════════

// Command logs an incoming command dispatch.
func (l *Logger) Command(id string, fields map[string]interface{}) {
	l.WithFields(fields).Info("▶ command %s", id)
}

// CommandResult logs a command's terminal outcome.
func (l *Logger) CommandResult(id string, success bool, duration time.Duration) {
	l.WithFields(map[string]interface{}{
		"success":  success,
		"duration": duration,
	}).Info("◀ command %s", id)
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// stripANSI removes ANSI escape codes from a string.
func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}

	return result.String()
}
