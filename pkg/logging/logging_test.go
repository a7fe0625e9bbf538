package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	logger, rec := NewRecorder()

	logger.Warn("subscription handle has no observer", "subscription", "abc")
	logger.With("component", "registry").Warn("query is client-only")
	logger.WithGroup("op").Info("dispatched", "name", "GetUser")
	logger.Debug("noise")

	records := rec.Records()
	if len(records) != 4 {
		t.Fatalf("len(Records) = %d, want 4", len(records))
	}
	if records[0].Attrs["subscription"] != "abc" {
		t.Errorf("attrs = %v, want subscription=abc", records[0].Attrs)
	}
	if records[1].Attrs["component"] != "registry" {
		t.Errorf("attrs = %v, want component=registry", records[1].Attrs)
	}
	if records[2].Attrs["op.name"] != "GetUser" {
		t.Errorf("attrs = %v, want op.name=GetUser", records[2].Attrs)
	}

	if got := rec.Messages(LevelWarn); len(got) != 2 {
		t.Errorf("Messages(warn) = %v, want 2 entries", got)
	}
	if got := rec.Count(LevelWarn, "no observer"); got != 1 {
		t.Errorf("Count(warn, no observer) = %d, want 1", got)
	}
	if got := rec.Count(LevelError, ""); got != 0 {
		t.Errorf("Count(error) = %d, want 0", got)
	}

	rec.Reset()
	if got := len(rec.Records()); got != 0 {
		t.Errorf("len(Records) after Reset = %d, want 0", got)
	}
}

func TestRecorder_Tee(t *testing.T) {
	rec := &Recorder{level: LevelWarn}

	var buf bytes.Buffer
	text := NewHandler(Config{Level: LevelDebug, Output: &buf, OmitTime: true})

	logger := slog.New(rec.Tee(text)).With(AttrOperation, "GetUser")
	logger.Warn("no handler")
	logger.Debug("dispatched")

	if got := rec.Count(LevelWarn, "no handler"); got != 1 {
		t.Errorf("Count(warn, no handler) = %d, want 1", got)
	}
	if got := len(rec.Records()); got != 1 {
		t.Errorf("len(Records) = %d, want 1, debug is below the recorder level", got)
	}
	if got := rec.Records()[0].Attrs[AttrOperation]; got != "GetUser" {
		t.Errorf("operation attr = %v, want GetUser", got)
	}

	out := buf.String()
	if !strings.Contains(out, "msg=\"no handler\" operation=GetUser") {
		t.Errorf("tee target missing warning: %q", out)
	}
	if !strings.Contains(out, "msg=dispatched") {
		t.Errorf("tee target missing debug record: %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Errorf("OmitTime output has a time attribute: %q", out)
	}
}

func TestQuietSubscriptions(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf, QuietSubscriptions: true})

	logger.Warn("subscription handle is closed", AttrSubscription, "s1")
	logger.With(AttrSubscription, "s2").Warn("subscription handle has no observer")
	logger.Warn("no handler", AttrOperation, "GetUser")

	out := buf.String()
	if strings.Contains(out, "subscription handle") {
		t.Errorf("subscription warnings were not dropped: %q", out)
	}
	if !strings.Contains(out, "no handler") {
		t.Errorf("operation warning was dropped: %q", out)
	}
}

func TestSettings_Config(t *testing.T) {
	var buf bytes.Buffer
	cfg := Settings{Level: "Warning", Format: "JSON", QuietSubscriptions: true}.Config(&buf)

	if cfg.Level != LevelWarn {
		t.Errorf("Level = %v, want %v", cfg.Level, LevelWarn)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %v, want %v", cfg.Format, FormatJSON)
	}
	if !cfg.QuietSubscriptions {
		t.Error("QuietSubscriptions = false, want true")
	}

	New(cfg).Warn("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}

	def := Settings{}.Config(nil)
	if def.Level != LevelInfo || def.Format != FormatText {
		t.Errorf("zero Settings = %+v, want info/text", def)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Warn("discarded")
}
