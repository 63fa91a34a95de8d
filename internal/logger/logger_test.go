package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileLogger(t *testing.T, level Level, maxSize int64) (Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	l, err := New(&Options{
		LogFilePath: logPath,
		MaxFileSize: maxSize,
		MaxBackups:  3,
		Level:       level,
		Console:     false,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return l, logPath
}

func TestNewCreatesLogFile(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024)
	defer l.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestLogLevels(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024*1024)

	l.Debug("debug message", String("key", "value"))
	l.Info("info message", Int("count", 42))
	l.Warn("warn message", Bool("flag", true))
	l.Error("error message", errors.New("test error"), Float64("rate", 3.14))
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, want := range []string{
		"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]",
		"debug message", "info message", "warn message", "error message",
		"key=value", "count=42", "flag=true", "rate=3.14",
		"test error", "Stack trace:",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("Log output missing %q", want)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	l, logPath := newFileLogger(t, LevelWarn, 1024*1024)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message", nil)
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	if strings.Contains(logContent, "[DEBUG]") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(logContent, "[INFO]") {
		t.Error("Info message should be filtered out")
	}
	if !strings.Contains(logContent, "[WARN]") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(logContent, "[ERROR]") {
		t.Error("Error message should be present")
	}
}

func TestSetLevel(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024*1024)

	l.Debug("debug before")
	l.SetLevel(LevelError)
	l.Debug("debug after")
	l.Warn("warn after")
	l.Error("error after", nil)
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	if !strings.Contains(logContent, "debug before") {
		t.Error("Debug before level change should be present")
	}
	if strings.Contains(logContent, "debug after") {
		t.Error("Debug after level change should be filtered")
	}
	if strings.Contains(logContent, "warn after") {
		t.Error("Warn after level change should be filtered")
	}
	if !strings.Contains(logContent, "error after") {
		t.Error("Error after level change should be present")
	}
}

func TestLogRotation(t *testing.T) {
	// Tiny max size so a handful of lines triggers rotation.
	l, logPath := newFileLogger(t, LevelDebug, 100)

	for i := 0; i < 20; i++ {
		l.Info("This is a test message that should trigger log rotation eventually")
	}
	l.Close()

	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("Backup log file was not created after rotation")
	}
}

func TestFieldTypes(t *testing.T) {
	l, logPath := newFileLogger(t, LevelDebug, 1024*1024)

	l.Info("test fields",
		String("str", "hello"),
		Int("int", 42),
		Int64("int64", 9223372036854775807),
		Float64("float", 3.14159),
		Bool("bool", true),
		Err(errors.New("sample error")),
		Any("any", map[string]int{"a": 1}),
	)
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, want := range []string{
		"str=hello", "int=42", "int64=9223372036854775807",
		"float=3.14159", "bool=true", "error=sample error",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("Field output missing %q", want)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")

	err := Init(&Options{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
		Console:     false,
	})
	if err != nil {
		t.Fatalf("Failed to initialize global logger: %v", err)
	}

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error", errors.New("global test error"))
	Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, want := range []string{"global debug", "global info", "global warn", "global error"} {
		if !strings.Contains(logContent, want) {
			t.Errorf("Global log output missing %q", want)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	SetGlobalLogger(nil)

	// Must not panic before Init.
	Debug("test")
	Info("test")
	Warn("test")
	Error("test", nil)

	if GetLogger() == nil {
		t.Error("GetLogger should return noop logger, not nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{" Info ", LevelInfo},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestErrFieldWithNil(t *testing.T) {
	field := Err(nil)
	if field.Key != "error" {
		t.Errorf("Err(nil).Key = %s, want error", field.Key)
	}
	if field.Value != nil {
		t.Errorf("Err(nil).Value = %v, want nil", field.Value)
	}
}

func TestLogDirectoryCreation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	l, err := New(&Options{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("Failed to create logger with nested directory: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Dir(logPath)); os.IsNotExist(err) {
		t.Error("Nested log directory was not created")
	}
}
