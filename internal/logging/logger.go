// Package logging is the ambient leveled logger shared by the client
// and the CLI: every device RPC, startup, and raw-frame dump funnels
// through one Logger so a single log file (the config file's
// logging.log_file) captures all of it.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders verbosity from LogLevelSilent (nothing) up to
// LogLevelDebug (everything, including hex dumps).
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// levelTag is the text prefix written ahead of a message at each level.
var levelTag = map[LogLevel]string{
	LogLevelError:   "ERROR",
	LogLevelInfo:    "INFO",
	LogLevelVerbose: "VERBOSE",
	LogLevelDebug:   "DEBUG",
}

// Logger mirrors every message to an optional log file and, depending
// on level, to stdout/stderr. One mutex guards both the level (mutable
// via SetLevel) and the underlying writers.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	file    *os.File
	fileLog *log.Logger
	stdout  *log.Logger
	stderr  *log.Logger
}

// NewLogger opens logFile (if non-empty, truncating any existing
// content) and returns a Logger at the given level.
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	l := &Logger{
		level:  level,
		stdout: log.New(os.Stdout, "", 0),
		stderr: log.New(os.Stderr, "", 0),
	}

	if logFile == "" {
		return l, nil
	}
	file, err := os.Create(logFile)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	l.file = file
	l.fileLog = log.New(file, "", log.LstdFlags)
	return l, nil
}

// Close flushes and closes the log file, if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// emit writes msg at the given level, gating on the configured level
// and routing errors to stderr (always shown) versus everything else
// to stdout (only at Verbose/Debug, to keep Info-level output quiet).
func (l *Logger) emit(level LogLevel, format string, v ...interface{}) {
	if l.level < level {
		return
	}
	msg := levelTag[level] + ": " + fmt.Sprintf(format, v...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		l.fileLog.Println(msg)
	}
	if level == LogLevelError {
		l.stderr.Println(msg)
	} else if l.level >= LogLevelVerbose {
		l.stdout.Println(msg)
	}
}

func (l *Logger) Error(format string, v ...interface{})   { l.emit(LogLevelError, format, v...) }
func (l *Logger) Info(format string, v ...interface{})    { l.emit(LogLevelInfo, format, v...) }
func (l *Logger) Verbose(format string, v ...interface{}) { l.emit(LogLevelVerbose, format, v...) }
func (l *Logger) Debug(format string, v ...interface{})   { l.emit(LogLevelDebug, format, v...) }

// SetLevel changes the logger's verbosity.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the logger's current verbosity.
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogOperation records one device RPC call: its name, target, outcome,
// round-trip time, and the status code it completed with.
func (l *Logger) LogOperation(operation, target string, success bool, rttMs float64, statusCode string, err error) {
	outcome := "SUCCESS"
	if !success {
		outcome = "FAILED"
	}
	var errSuffix string
	if err != nil {
		errSuffix = fmt.Sprintf(" - error: %v", err)
	}
	msg := fmt.Sprintf("%s %s on %s (status: %s, RTT: %.3fms)%s", outcome, operation, target, statusCode, rttMs, errSuffix)

	if success {
		l.Verbose("%s", msg)
	} else {
		l.Info("%s", msg)
	}
}

// LogStartup records the device endpoint and config path a client run
// started with.
func (l *Logger) LogStartup(deviceHost string, devicePort int, configPath string) {
	l.Info("starting synapse client")
	l.Verbose("  device: %s:%d", deviceHost, devicePort)
	l.Verbose("  config: %s", configPath)
}

// LogHex dumps data as lowercase hex pairs separated by spaces, at
// Debug level only, for inspecting raw NDTP frames.
func (l *Logger) LogHex(label string, data []byte) {
	if l.level < LogLevelDebug {
		return
	}
	pairs := make([]string, len(data))
	for i, b := range data {
		pairs[i] = fmt.Sprintf("%02x", b)
	}
	l.Debug("%s: %s", label, strings.Join(pairs, " "))
}

// MultiWriter fans writes out to every wrapped io.Writer, stopping at
// the first error.
type MultiWriter struct {
	writers []io.Writer
}

// NewMultiWriter wraps the given writers.
func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) Write(p []byte) (int, error) {
	for _, w := range m.writers {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
