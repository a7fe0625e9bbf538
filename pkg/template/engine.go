package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Engine processes templates with variable substitution.
// The {{sequence("name")}} counters belong to the Engine and are shared by
// every fixture response and subscription event it renders. It is safe for
// concurrent use.
type Engine struct {
	mu       sync.Mutex
	counters map[string]int64
}

// New creates a new template engine.
func New() *Engine {
	return &Engine{counters: make(map[string]int64)}
}

// Sequence returns the value the named counter yields next, or 0 if it has
// not been used since the last reset.
func (e *Engine) Sequence(name string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters[name]
}

// ResetSequences restarts the named counters, or every counter when no
// name is given.
func (e *Engine) ResetSequences(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(names) == 0 {
		clear(e.counters)
		return
	}
	for _, name := range names {
		delete(e.counters, name)
	}
}

func (e *Engine) next(name string, start int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	val, ok := e.counters[name]
	if !ok {
		val = start
	}
	e.counters[name] = val + 1
	return val
}

// templateRegex matches {{expression}} patterns with optional whitespace.
var templateRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

var (
	// random.int(min, max)
	randomIntPattern = regexp.MustCompile(`^random\.int\((\d+),\s*(\d+)\)$`)
	// random.string(length)
	randomStringPattern = regexp.MustCompile(`^random\.string\((\d+)\)$`)
	// sequence("name") or sequence("name", start)
	sequencePattern = regexp.MustCompile(`^sequence\("([^"]+)"(?:,\s*(\d+))?\)$`)
	// faker.type
	fakerPattern = regexp.MustCompile(`^faker\.(\w+)$`)
	// upper(value), lower(value), default(value, fallback)
	funcCallPattern = regexp.MustCompile(`^(\w+)\((.+)\)$`)
)

// Process evaluates a template string with the given context.
// Each {{expression}} is replaced by its value; unrecognized expressions
// are left as they are.
func (e *Engine) Process(template string, ctx *Context) (string, error) {
	result := templateRegex.ReplaceAllStringFunc(template, func(match string) string {
		inner := templateRegex.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		value, ok := e.evaluate(strings.TrimSpace(inner[1]), ctx)
		if !ok {
			return match
		}
		return value
	})

	return result, nil
}

// Apply recursively processes every string in data, which is typically a
// value decoded from YAML or JSON. Other values are returned unchanged and
// the input is never modified.
func (e *Engine) Apply(data any, ctx *Context) any {
	switch v := data.(type) {
	case string:
		if value, ok := e.single(v, ctx); ok {
			return value
		}
		result, _ := e.Process(v, ctx)
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = e.Apply(val, ctx)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = e.Apply(val, ctx)
		}
		return result
	default:
		return data
	}
}

// single resolves s when it is exactly one {{vars.*}} or {{args.*}}
// expression, returning the variable's value unconverted.
func (e *Engine) single(s string, ctx *Context) (any, bool) {
	loc := templateRegex.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return nil, false
	}
	path, ok := varPath(strings.TrimSpace(s[loc[2]:loc[3]]))
	if !ok || ctx == nil {
		return nil, false
	}
	value, found := lookup(ctx.Vars, path)
	if !found {
		return nil, false
	}
	return value, true
}

// evaluate processes a single template expression. It reports false for
// expressions it does not recognize.
func (e *Engine) evaluate(expr string, ctx *Context) (string, bool) {
	switch expr {
	case "now":
		return funcNow(), true
	case "uuid":
		return ctx.uuid(), true
	case "uuid.short":
		return ctx.uuid()[:8], true
	case "timestamp", "timestamp.unix":
		return funcTimestamp(), true
	case "timestamp.iso":
		return time.Now().UTC().Format(time.RFC3339Nano), true
	case "timestamp.unix_ms":
		return strconv.FormatInt(time.Now().UnixMilli(), 10), true
	case "random.int":
		return funcRandomInt(ctx, 0, 100), true
	case "random.float":
		return funcRandomFloat(ctx), true
	case "random.string":
		return funcRandomString(ctx, 10), true
	case "operationName":
		if ctx == nil {
			return "", true
		}
		return ctx.OperationName, true
	}

	if path, ok := varPath(expr); ok {
		if ctx == nil {
			return "", true
		}
		value, _ := lookup(ctx.Vars, path)
		return formatValue(value), true
	}

	if matches := fakerPattern.FindStringSubmatch(expr); matches != nil {
		return resolveFaker(ctx, matches[1])
	}

	return e.evaluateCall(expr, ctx)
}

// evaluateCall handles function-call syntax: func(arg1, arg2).
func (e *Engine) evaluateCall(expr string, ctx *Context) (string, bool) {
	if matches := randomIntPattern.FindStringSubmatch(expr); matches != nil {
		min, _ := strconv.Atoi(matches[1])
		max, _ := strconv.Atoi(matches[2])
		return funcRandomInt(ctx, min, max), true
	}

	if matches := randomStringPattern.FindStringSubmatch(expr); matches != nil {
		length, err := strconv.Atoi(matches[1])
		if err != nil || length <= 0 {
			length = 10
		}
		return funcRandomString(ctx, length), true
	}

	if matches := sequencePattern.FindStringSubmatch(expr); matches != nil {
		return e.resolveSequence(matches), true
	}

	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return "", false
	}

	switch matches[1] {
	case "upper":
		return funcUpper(e.resolveValue(matches[2], ctx)), true
	case "lower":
		return funcLower(e.resolveValue(matches[2], ctx)), true
	case "default":
		args := splitFuncArgs(matches[2])
		if len(args) < 2 {
			return "", true
		}
		return funcDefault(e.resolveValue(args[0], ctx), parseStringArg(args[1])), true
	}
	return "", false
}

// resolveValue resolves a function argument. Quoted strings are literals;
// anything the evaluator recognizes is evaluated; the rest is taken as is.
func (e *Engine) resolveValue(ref string, ctx *Context) string {
	ref = strings.TrimSpace(ref)
	if isQuoted(ref) {
		return ref[1 : len(ref)-1]
	}
	if value, ok := e.evaluate(ref, ctx); ok {
		return value
	}
	return ref
}

func (e *Engine) resolveSequence(matches []string) string {
	start := int64(1)
	if matches[2] != "" {
		start, _ = strconv.ParseInt(matches[2], 10, 64)
	}
	return strconv.FormatInt(e.next(matches[1], start), 10)
}

// varPath returns the dotted path of a vars.* or args.* reference.
func varPath(expr string) ([]string, bool) {
	for _, prefix := range []string{"vars.", "args."} {
		if rest, ok := strings.CutPrefix(expr, prefix); ok && rest != "" {
			return strings.Split(rest, "."), true
		}
	}
	return nil, false
}

// lookup walks path through nested maps and slices.
func lookup(vars map[string]any, path []string) (any, bool) {
	var current any = vars
	for _, part := range path {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// formatValue converts an arbitrary value to a string representation.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isQuoted(s string) bool {
	return len(s) >= 2 &&
		((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}

// parseStringArg removes surrounding quotes from a string argument if present.
func parseStringArg(s string) string {
	s = strings.TrimSpace(s)
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// splitFuncArgs splits function arguments separated by commas,
// respecting quoted strings.
func splitFuncArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inQuote:
			current.WriteByte(ch)
			if ch == quoteChar {
				inQuote = false
			}
		case ch == '"' || ch == '\'':
			inQuote = true
			quoteChar = ch
			current.WriteByte(ch)
		case ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}
