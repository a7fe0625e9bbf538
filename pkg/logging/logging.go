package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Attribute keys the link logs under.
const (
	// AttrOperation carries the operation name of a dispatch or registration.
	AttrOperation = "operation"
	// AttrSubscription carries the ID of a subscription handle.
	AttrSubscription = "subscription"
)

// Config holds logging configuration for a link.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or json).
	Format Format

	// Output is the writer to send logs to. Defaults to os.Stderr.
	Output io.Writer

	// AddSource adds source file and line to log entries.
	AddSource bool

	// OmitTime drops the time attribute, for outputs that stamp lines
	// themselves such as the test log.
	OmitTime bool

	// QuietSubscriptions drops records tagged with AttrSubscription, i.e.
	// the misuse warnings of subscription handles.
	QuietSubscriptions bool
}

// Settings is the serialized form of Config, as written in the log section
// of a fixture file.
type Settings struct {
	Level              string `yaml:"level,omitempty" json:"level,omitempty"`
	Format             string `yaml:"format,omitempty" json:"format,omitempty"`
	Source             bool   `yaml:"source,omitempty" json:"source,omitempty"`
	QuietSubscriptions bool   `yaml:"quietSubscriptions,omitempty" json:"quietSubscriptions,omitempty"`
}

// Config converts the settings into a Config writing to out.
func (s Settings) Config(out io.Writer) Config {
	return Config{
		Level:              ParseLevel(s.Level),
		Format:             ParseFormat(s.Format),
		Output:             out,
		AddSource:          s.Source,
		QuietSubscriptions: s.QuietSubscriptions,
	}
}

// New creates a new slog.Logger with the given configuration.
func New(cfg Config) *slog.Logger {
	return slog.New(NewHandler(cfg))
}

// NewHandler creates the handler behind New, for callers that combine it
// with other handlers.
func NewHandler(cfg Config) slog.Handler {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	if cfg.OmitTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	if cfg.QuietSubscriptions {
		handler = &quietHandler{next: handler}
	}
	return handler
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel parses a log level string, ignoring case.
// Valid values: "debug", "info", "warn", "warning", "error".
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat parses a log format string, ignoring case.
// Valid values: "text", "json".
// Returns FormatText if the string is not recognized.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// quietHandler drops records carrying AttrSubscription, whether attached
// with Logger.With or on the record itself.
type quietHandler struct {
	next   slog.Handler
	tagged bool
}

func (h *quietHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return !h.tagged && h.next.Enabled(ctx, level)
}

func (h *quietHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.tagged {
		return nil
	}
	subscription := false
	r.Attrs(func(a slog.Attr) bool {
		subscription = a.Key == AttrSubscription
		return !subscription
	})
	if subscription {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *quietHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	tagged := h.tagged
	for _, a := range attrs {
		if a.Key == AttrSubscription {
			tagged = true
		}
	}
	return &quietHandler{next: h.next.WithAttrs(attrs), tagged: tagged}
}

func (h *quietHandler) WithGroup(name string) slog.Handler {
	return &quietHandler{next: h.next.WithGroup(name), tagged: h.tagged}
}
