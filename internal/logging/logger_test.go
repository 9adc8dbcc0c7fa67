package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		l, err := NewLogger(LogLevelInfo, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer l.Close()
		if l.level != LogLevelInfo {
			t.Errorf("level = %d, want %d", l.level, LogLevelInfo)
		}
		if l.file != nil {
			t.Error("file should be nil when no path given")
		}
	})

	t.Run("with file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		l, err := NewLogger(LogLevelDebug, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer l.Close()
		if l.file == nil {
			t.Error("file should not be nil")
		}
		if l.fileLog == nil {
			t.Error("fileLog should not be nil")
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := NewLogger(LogLevelInfo, "/nonexistent/dir/test.log")
		if err == nil {
			t.Error("expected error for invalid path")
		}
	})
}

func TestLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelInfo, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Error("error msg")
	l.Info("info msg")
	l.Verbose("verbose msg")
	l.Debug("debug msg")

	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "ERROR: error msg") {
		t.Error("log should contain error message")
	}
	if !strings.Contains(content, "INFO: info msg") {
		t.Error("log should contain info message")
	}
	if strings.Contains(content, "VERBOSE: verbose msg") {
		t.Error("log should NOT contain verbose message at Info level")
	}
	if strings.Contains(content, "DEBUG: debug msg") {
		t.Error("log should NOT contain debug message at Info level")
	}
}

func TestLoggerSilentLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelSilent, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Error("should not appear")
	l.Info("should not appear")
	l.Close()

	data, _ := os.ReadFile(path)
	if len(strings.TrimSpace(string(data))) > 0 {
		t.Error("silent logger should produce no output")
	}
}

func TestLoggerDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelDebug, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Error("e")
	l.Info("i")
	l.Verbose("v")
	l.Debug("d")
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)

	for _, want := range []string{"ERROR: e", "INFO: i", "VERBOSE: v", "DEBUG: d"} {
		if !strings.Contains(content, want) {
			t.Errorf("log should contain %q", want)
		}
	}
}

func TestSetGetLevel(t *testing.T) {
	l, _ := NewLogger(LogLevelInfo, "")
	defer l.Close()

	if l.GetLevel() != LogLevelInfo {
		t.Errorf("GetLevel() = %d, want %d", l.GetLevel(), LogLevelInfo)
	}

	l.SetLevel(LogLevelDebug)
	if l.GetLevel() != LogLevelDebug {
		t.Errorf("GetLevel() = %d, want %d", l.GetLevel(), LogLevelDebug)
	}
}

func TestLogOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelVerbose, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.LogOperation("connect", "10.0.0.50:6480", true, 1.234, "ok", nil)
	l.LogOperation("configure", "10.0.0.50:6480", false, 5.678, "unavailable", nil)
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)

	if !strings.Contains(content, "SUCCESS") {
		t.Error("should contain SUCCESS")
	}
	if !strings.Contains(content, "FAILED") {
		t.Error("should contain FAILED")
	}
	if !strings.Contains(content, "10.0.0.50:6480") {
		t.Error("should contain target name")
	}
	if !strings.Contains(content, "1.234ms") {
		t.Error("should contain RTT")
	}
}

func TestLogStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelVerbose, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.LogStartup("10.0.0.50", 6480, "config.yaml")
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)

	if !strings.Contains(content, "starting synapse client") {
		t.Error("should contain startup message")
	}
	if !strings.Contains(content, "10.0.0.50:6480") {
		t.Error("should contain device host:port")
	}
	if !strings.Contains(content, "config.yaml") {
		t.Error("should contain config path")
	}
}

func TestLogHex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelDebug, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.LogHex("packet", []byte{0xDE, 0xAD, 0xBE, 0xEF})
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)

	if !strings.Contains(content, "de ad be ef") {
		t.Errorf("should contain hex dump, got: %s", content)
	}
}

func TestLogHex_SkipsAtLowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LogLevelInfo, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.LogHex("packet", []byte{0xDE, 0xAD})
	l.Close()

	data, _ := os.ReadFile(path)
	if len(strings.TrimSpace(string(data))) > 0 {
		t.Error("LogHex at Info level should produce no output")
	}
}

func TestClose_NilFile(t *testing.T) {
	l, _ := NewLogger(LogLevelInfo, "")
	if err := l.Close(); err != nil {
		t.Errorf("Close with nil file should not error: %v", err)
	}
}

func TestMultiWriter(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	mw := NewMultiWriter(&buf1, &buf2)

	msg := []byte("hello")
	n, err := mw.Write(msg)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(msg) {
		t.Errorf("Write returned %d, want %d", n, len(msg))
	}
	if buf1.String() != "hello" {
		t.Errorf("buf1 = %q, want %q", buf1.String(), "hello")
	}
	if buf2.String() != "hello" {
		t.Errorf("buf2 = %q, want %q", buf2.String(), "hello")
	}
}

type errWriter struct{}

func (e errWriter) Write([]byte) (int, error) {
	return 0, os.ErrClosed
}

func TestMultiWriter_Error(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMultiWriter(&buf, errWriter{})

	_, err := mw.Write([]byte("test"))
	if err == nil {
		t.Error("expected error from failing writer")
	}
}
