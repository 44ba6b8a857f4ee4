package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Logf("FAIL: line is not JSON: %q", line)
			return nil
		}
		entries = append(entries, entry)
	}
	return entries
}

// Feature: storefront-catalog, Property 30: Production logs are structured
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("production log entries are JSON with level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := NewWithWriter("production", zapcore.AddSync(&buf))

			switch level {
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			default:
				logger.Error(message)
			}
			_ = logger.Sync()

			entries := decodeLines(t, &buf)
			if len(entries) != 1 {
				return false
			}
			entry := entries[0]

			for _, key := range []string{"level", "timestamp", "message", "service"} {
				if _, ok := entry[key]; !ok {
					t.Logf("FAIL: missing %s in %v", key, entry)
					return false
				}
			}
			return entry["message"] == message && entry["level"] == level
		},
		gen.AlphaString(),
		gen.OneConstOf("info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductionSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", zapcore.AddSync(&buf))

	logger.Debug("noisy")
	_ = logger.Sync()

	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed in production, got %q", buf.String())
	}
}

func TestErrorLogsIncludeContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", zapcore.AddSync(&buf))

	logger.Warn("Image upload failed, continuing without it",
		zap.String("filename", "ring.jpg"),
		zap.String("error", "bucket unavailable"),
	)
	_ = logger.Sync()

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0]["filename"] != "ring.jpg" || entries[0]["error"] != "bucket unavailable" {
		t.Fatalf("context fields missing: %v", entries[0])
	}
}

func TestDevelopmentLoggerWritesConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", zapcore.AddSync(&buf))

	logger.Debug("catalog snapshot rebuilt")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "catalog snapshot rebuilt") {
		t.Fatalf("expected debug line in development output, got %q", buf.String())
	}
}
