package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vetlink-systems/vetlink-triage/internal/middleware"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Logger == nil {
		t.Fatal("expected non-nil underlying logger")
	}
}

func testJSONLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelInfo)

	ctx := middleware.WithRequestID(context.Background(), "test-req-123")
	logger.WithContext(ctx).Info("test message")

	output := buf.String()
	if !strings.Contains(output, "request_id") {
		t.Errorf("expected 'request_id' field in log output, got: %s", output)
	}
	if !strings.Contains(output, "test-req-123") {
		t.Errorf("expected request ID in log output, got: %s", output)
	}

	buf.Reset()
	logger.WithContext(context.Background()).Info("test message")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("did not expect 'request_id' field without one in context, got: %s", buf.String())
	}
}

func TestInfoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelInfo)

	ctx := middleware.WithRequestID(context.Background(), "info-test-123")
	logger.InfoContext(ctx, "case enqueued", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "case enqueued") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "info-test-123") {
		t.Errorf("expected request ID in output, got: %s", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("expected INFO level in output, got: %s", output)
	}
}

func TestErrorContext(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelError)

	logger.ErrorContext(context.Background(), "dispatch failed", Error(errors.New("gateway down")))

	output := buf.String()
	if !strings.Contains(output, "dispatch failed") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "gateway down") {
		t.Errorf("expected error detail in output, got: %s", output)
	}
	if !strings.Contains(output, "ERROR") {
		t.Errorf("expected ERROR level in output, got: %s", output)
	}
}

func TestDebugContext(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelDebug)

	logger.DebugContext(context.Background(), "snapshot published")

	output := buf.String()
	if !strings.Contains(output, "snapshot published") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "DEBUG") {
		t.Errorf("expected DEBUG level in output, got: %s", output)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelInfo)

	enriched := logger.With(Service("triage"), "version", "1.0")
	if enriched == nil {
		t.Fatal("expected non-nil logger from With()")
	}

	enriched.Info("test message")
	output := buf.String()

	if !strings.Contains(output, "triage") {
		t.Errorf("expected service field in output, got: %s", output)
	}
	if !strings.Contains(output, "1.0") {
		t.Errorf("expected version field in output, got: %s", output)
	}
}

func TestFieldHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := testJSONLogger(&buf, slog.LevelInfo)

	logger.Info("case assigned",
		CaseID("case-1"), VetID("vet-1"), Triage("red"), Status("assigned"), Level(2))

	output := buf.String()
	for _, want := range []string{
		FieldCaseID, "case-1",
		FieldVetID, "vet-1",
		FieldTriage, "red",
		FieldStatus, "assigned",
		FieldLevel, "2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{
			name:     "debug level",
			input:    "debug",
			expected: slog.LevelDebug,
		},
		{
			name:     "info level",
			input:    "info",
			expected: slog.LevelInfo,
		},
		{
			name:     "warn level",
			input:    "warn",
			expected: slog.LevelWarn,
		},
		{
			name:     "error level",
			input:    "error",
			expected: slog.LevelError,
		},
		{
			name:     "invalid level defaults to info",
			input:    "invalid",
			expected: slog.LevelInfo,
		},
		{
			name:     "empty string defaults to info",
			input:    "",
			expected: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	originalDefault := slog.Default()
	defer slog.SetDefault(originalDefault)

	logger := New(slog.LevelInfo, "json")
	SetDefault(logger)

	if slog.Default() != logger.Logger {
		t.Error("SetDefault did not update slog.Default()")
	}
}
