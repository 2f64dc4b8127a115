package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recordingReporter struct {
	messages []string
	errs     []error
	extras   []map[string]interface{}
}

func (r *recordingReporter) Report(level slog.Level, msg string, err error, extras map[string]interface{}) {
	r.messages = append(r.messages, msg)
	r.errs = append(r.errs, err)
	r.extras = append(r.extras, extras)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info", Format: "json"})
	logger.Info("ranking_computed", slog.Int("classes", 3))

	if !strings.Contains(buf.String(), `"msg":"ranking_computed"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestReportingHandlerForwardsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingReporter{}
	logger := slog.New(&reportingHandler{
		next:     slog.NewTextHandler(&buf, nil),
		reporter: rec,
	}).With(slog.String("component", "test"))

	logger.Info("routine")
	logger.Error("report_failed", slog.Any("err", errors.New("boom")))

	if len(rec.messages) != 1 {
		t.Fatalf("expected 1 reported record, got %d", len(rec.messages))
	}
	if rec.messages[0] != "report_failed" {
		t.Errorf("reported message = %v, want report_failed", rec.messages[0])
	}
	if rec.errs[0] == nil || rec.errs[0].Error() != "boom" {
		t.Errorf("reported error = %v, want boom", rec.errs[0])
	}
	if rec.extras[0]["component"] != "test" {
		t.Errorf("expected component attr to be forwarded, got %v", rec.extras[0])
	}
	if !strings.Contains(buf.String(), "routine") {
		t.Errorf("expected underlying handler to receive info records")
	}
}
