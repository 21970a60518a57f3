package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(LevelString(level))
		if err != nil {
			t.Fatalf("round trip of %v failed: %v", level, err)
		}
		if parsed != level {
			t.Errorf("expected %v, got %v", level, parsed)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %v", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected default output stderr, got %s", cfg.Output)
	}
	if cfg.Component != "wpg" {
		t.Errorf("expected component wpg, got %s", cfg.Component)
	}
	if !strings.HasSuffix(cfg.FilePath, "wpg.log") {
		t.Errorf("unexpected default log path %s", cfg.FilePath)
	}
}

func TestShouldRedact(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"generated_password", true},
		{"secret", true},
		{"api_key", true},
		{"token", true},
		{"alphabet", true},
		{"length", false},
		{"source", false},
		{"caps", false},
		{"extension", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			if result := shouldRedact(test.key); result != test.expected {
				t.Errorf("shouldRedact(%q) = %v, expected %v", test.key, result, test.expected)
			}
		})
	}
}

func TestJSONOutputRedactsAndTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Component: "test",
		Writer:    &buf,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.WithComponent("generator").Info("generated", "password", "hunter2", "length", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if entry["password"] != "[REDACTED]" {
		t.Errorf("password not redacted: %v", entry["password"])
	}
	if entry["length"] != float64(7) {
		t.Errorf("length = %v", entry["length"])
	}
	if strings.Contains(buf.String(), "hunter2") {
		t.Error("secret leaked into output")
	}
	if !strings.Contains(buf.String(), `"component":"generator"`) {
		t.Errorf("component missing: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelWarn, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "wpg.log")
	logger, err := New(&Config{Level: LevelInfo, Output: "file", FilePath: logPath, MaxSize: 1})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("hello file")
	if err := logger.Sync(); err != nil {
		t.Errorf("sync failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("unexpected log contents: %s", data)
	}
}

func TestFileRotatorRotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	chunk := bytes.Repeat([]byte("x"), 700*1024)
	for i := 0; i < 5; i++ {
		if _, err := rotator.Write(chunk); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	files := rotator.Files()
	if files[0] != logPath {
		t.Errorf("expected current log first, got %s", files[0])
	}
	if len(files) != 3 {
		t.Errorf("expected current plus 2 backups, got %v", files)
	}
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("stat current log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Errorf("current log exceeds max size: %d", info.Size())
	}
}

func TestFileRotatorRequiresPath(t *testing.T) {
	if _, err := NewFileRotator(&Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSetDefault(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	l, err := New(&Config{Level: LevelInfo, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	SetDefault(l)
	if Default() != l {
		t.Error("Default did not return the logger passed to SetDefault")
	}
}

func TestRuneAndByteValuesRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelInfo, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("oops", "buf", []rune("s3cr3t"), "raw", []byte("d4t4"), "count", 3)
	out := buf.String()
	if strings.Contains(out, "s3cr3t") || strings.Contains(out, "d4t4") {
		t.Errorf("slice value leaked: %s", out)
	}
	if strings.Count(out, "[REDACTED]") != 2 {
		t.Errorf("expected two redactions: %s", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Errorf("plain attribute missing: %s", out)
	}
}

func TestBothOutputTeesWriterAndFile(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "wpg.log")
	logger, err := New(&Config{Level: LevelInfo, Output: "both", FilePath: logPath, MaxSize: 1, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("tee")
	if err := logger.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	if !strings.Contains(buf.String(), "tee") {
		t.Errorf("console writer missed entry: %s", buf.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "tee") {
		t.Errorf("file missed entry: %s", data)
	}
}
