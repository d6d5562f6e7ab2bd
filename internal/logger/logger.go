package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

// Logger provides leveled console output for gwt commands.
//
// Regular output goes to out, warnings and errors go to errOut. Prefix
// symbols are only printed when out is a terminal and color is enabled, so
// piped output (for example `cd "$(gwt cd feature)"`) stays plain.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	fancy   bool
}

// New creates a new logger writing to stdout and stderr.
func New() *Logger {
	return &Logger{
		out:     os.Stdout,
		errOut:  os.Stderr,
		verbose: viper.GetBool("verbose"),
		fancy:   isTerminal(os.Stdout) && !viper.GetBool("no-color"),
	}
}

// NewWithWriters creates a logger that writes to the given writers.
// Prefix symbols are disabled.
func NewWithWriters(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetVerbose sets the verbose flag
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// SetColor enables or disables prefix symbols. They are never shown when
// the output is not a terminal.
func (l *Logger) SetColor(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fancy = enabled && l.out == os.Stdout && isTerminal(os.Stdout)
}

// IsVerbose returns whether verbose logging is enabled
func (l *Logger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Out returns the writer used for regular output.
func (l *Logger) Out() io.Writer {
	return l.out
}

func (l *Logger) write(w io.Writer, symbol, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := ""
	if l.fancy && symbol != "" {
		prefix = symbol + " "
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// Print prints a plain line without any prefix
func (l *Logger) Print(format string, args ...interface{}) {
	l.write(l.out, "", format, args...)
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(l.out, "ℹ️ ", format, args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.write(l.out, "✅", format, args...)
}

// Warning prints a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write(l.errOut, "⚠️ ", "Warning: "+format, args...)
}

// Error prints an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(l.errOut, "❌", format, args...)
}

// Debug prints a debug message (only in verbose mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.IsVerbose() {
		return
	}
	timestamp := time.Now().Format("15:04:05")
	l.write(l.errOut, "🔍", "[%s] "+format, append([]interface{}{timestamp}, args...)...)
}

// Verbose prints a verbose message (only in verbose mode)
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.IsVerbose() {
		l.write(l.errOut, "📝", format, args...)
	}
}

// Command echoes an external command (only in verbose mode)
func (l *Logger) Command(name string, args ...string) {
	if l.IsVerbose() {
		l.write(l.errOut, "", "$ %s %s", name, strings.Join(args, " "))
	}
}

var (
	globalMu     sync.RWMutex
	globalLogger = New()
)

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the global logger and returns the previous one.
func SetLogger(l *Logger) *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := globalLogger
	globalLogger = l
	return prev
}

// UpdateVerbose updates the global logger's verbose and color settings
// from viper.
func UpdateVerbose() {
	l := GetLogger()
	l.SetVerbose(viper.GetBool("verbose"))
	if viper.GetBool("no-color") {
		l.SetColor(false)
	}
}

// Convenience functions for global logger
func Print(format string, args ...interface{}) {
	GetLogger().Print(format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

func Success(format string, args ...interface{}) {
	GetLogger().Success(format, args...)
}

func Warning(format string, args ...interface{}) {
	GetLogger().Warning(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Verbose(format string, args ...interface{}) {
	GetLogger().Verbose(format, args...)
}

func Command(name string, args ...string) {
	GetLogger().Command(name, args...)
}

func IsVerbose() bool {
	return GetLogger().IsVerbose()
}
