package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("archiving project", "project", "plant")

		out := buf.String()
		if !strings.Contains(out, "archiving project") || !strings.Contains(out, "project=plant") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "task", "t-1")
		logger.Warn("skipped")

		if !strings.Contains(buf.String(), "task=t-1") {
			t.Errorf("expected task field, got %q", buf.String())
		}
	})

	t.Run("child loggers share the sink", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				child := WithLogger(logger, "task", i)
				for range 10 {
					child.Info("archiving project")
				}
			}()
		}
		wg.Wait()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 160 {
			t.Fatalf("expected 160 log lines, got %d", len(lines))
		}
		for _, line := range lines {
			if strings.Count(line, "archiving project") != 1 {
				t.Errorf("interleaved log line: %q", line)
			}
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger appends to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("first run")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "first run") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tt := map[string]log.Level{
			"debug":   log.DebugLevel,
			" WARN ":  log.WarnLevel,
			"error":   log.ErrorLevel,
			"":        log.InfoLevel,
			"chatty!": log.InfoLevel,
		}
		for in, want := range tt {
			if got := ParseLogLevel(in); got != want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
			}
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected unique non-empty IDs, got %q and %q", a, b)
	}
}
