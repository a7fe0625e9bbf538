package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Record is a log record captured by a Recorder.
type Record struct {
	Time    time.Time
	Level   Level
	Message string
	// Attrs holds the record's attributes, keyed by their group-qualified
	// name ("group.key").
	Attrs map[string]any
}

// Recorder stores log records in memory.
type Recorder struct {
	mu      sync.Mutex
	records []Record
	level   slog.Leveler
}

// NewRecorder returns a logger backed by a new Recorder that captures every
// record at debug level and above.
func NewRecorder() (*slog.Logger, *Recorder) {
	rec := &Recorder{level: LevelDebug}
	return slog.New(rec.Handler()), rec
}

// Handler returns a slog.Handler that writes into the recorder.
func (r *Recorder) Handler() slog.Handler {
	return &recordHandler{rec: r}
}

// Tee returns a handler that records into r and forwards every record to
// next, for example a text handler mirroring diagnostics to the test log.
// A record below r's level still reaches next when next accepts it.
func (r *Recorder) Tee(next slog.Handler) slog.Handler {
	return &recordHandler{rec: r, next: next}
}

// Records returns a copy of all captured records in the order they were logged.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Messages returns the messages of records logged at exactly level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level == level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// Count returns the number of records at level whose message contains substr.
func (r *Recorder) Count(level Level, substr string) int {
	n := 0
	for _, msg := range r.Messages(level) {
		if strings.Contains(msg, substr) {
			n++
		}
	}
	return n
}

// Reset discards all captured records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

func (r *Recorder) add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

type recordHandler struct {
	rec    *Recorder
	next   slog.Handler
	attrs  []slog.Attr
	prefix string
}

func (h *recordHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.records(level) || (h.next != nil && h.next.Enabled(ctx, level))
}

func (h *recordHandler) records(level slog.Level) bool {
	return h.rec.level == nil || level >= h.rec.level.Level()
}

func (h *recordHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.records(r.Level) {
		h.record(r)
	}
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *recordHandler) record(r slog.Record) {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(attrs, h.prefix, a)
		return true
	})

	h.rec.add(Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	flat := make(map[string]any)
	for _, a := range attrs {
		flatten(flat, h.prefix, a)
	}
	out := &recordHandler{rec: h.rec, prefix: h.prefix}
	if h.next != nil {
		out.next = h.next.WithAttrs(attrs)
	}
	out.attrs = append(out.attrs, h.attrs...)
	for k, v := range flat {
		out.attrs = append(out.attrs, slog.Any(k, v))
	}
	return out
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := &recordHandler{rec: h.rec, attrs: h.attrs, prefix: h.prefix + name + "."}
	if h.next != nil {
		out.next = h.next.WithGroup(name)
	}
	return out
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			flatten(dst, p, ga)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}
