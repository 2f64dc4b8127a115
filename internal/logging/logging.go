package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/rollbar/rollbar-go"
)

// Options controls how the application logger is built
type Options struct {
	Level        string
	Format       string
	Environment  string
	RollbarToken string
	CodeVersion  string
}

// New builds the application logger. Records at error level and above are
// also forwarded to Rollbar when a token is configured.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var base slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		base = slog.NewJSONHandler(w, handlerOpts)
	} else {
		base = slog.NewTextHandler(w, handlerOpts)
	}

	if opts.RollbarToken == "" {
		return slog.New(base)
	}

	rollbar.SetToken(opts.RollbarToken)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetCodeVersion(opts.CodeVersion)
	return slog.New(&reportingHandler{next: base, reporter: rollbarReporter{}})
}

// Close flushes any queued error reports
func Close() {
	rollbar.Close()
}

// Discard returns a logger that drops everything, for tests and optional components
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ParseLevel maps a textual level to slog, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type reporter interface {
	Report(level slog.Level, msg string, err error, extras map[string]interface{})
}

type rollbarReporter struct{}

func (rollbarReporter) Report(level slog.Level, msg string, err error, extras map[string]interface{}) {
	rbLevel := rollbar.ERR
	if level > slog.LevelError {
		rbLevel = rollbar.CRIT
	}
	if err != nil {
		extras["message"] = msg
		rollbar.ErrorWithExtras(rbLevel, err, extras)
		return
	}
	rollbar.MessageWithExtras(rbLevel, msg, extras)
}

// reportingHandler tees error records to an external reporter
type reportingHandler struct {
	next     slog.Handler
	reporter reporter
	attrs    []slog.Attr
}

func (h *reportingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *reportingHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelError {
		extras := make(map[string]interface{}, len(h.attrs)+record.NumAttrs())
		var reported error
		collect := func(a slog.Attr) bool {
			if e, ok := a.Value.Any().(error); ok && reported == nil {
				reported = e
			}
			extras[a.Key] = a.Value.String()
			return true
		}
		for _, a := range h.attrs {
			collect(a)
		}
		record.Attrs(collect)
		h.reporter.Report(record.Level, record.Message, reported, extras)
	}
	return h.next.Handle(ctx, record)
}

func (h *reportingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &reportingHandler{next: h.next.WithAttrs(attrs), reporter: h.reporter, attrs: merged}
}

func (h *reportingHandler) WithGroup(name string) slog.Handler {
	return &reportingHandler{next: h.next.WithGroup(name), reporter: h.reporter, attrs: h.attrs}
}
