package template

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, e *Engine, tmpl string, ctx *Context) string {
	t.Helper()
	out, err := e.Process(tmpl, ctx)
	require.NoError(t, err)
	return out
}

func TestProcess_Vars(t *testing.T) {
	e := New()
	ctx := NewContext("GetUser", map[string]any{
		"id":     "42",
		"count":  float64(3),
		"active": true,
		"input":  map[string]any{"tags": []any{"a", "b"}, "name": "Ada"},
	})

	tests := []struct {
		tmpl string
		want string
	}{
		{"{{vars.id}}", "42"},
		{"user-{{ vars.id }}", "user-42"},
		{"{{args.id}}", "42"},
		{"{{vars.count}}", "3"},
		{"{{vars.active}}", "true"},
		{"{{vars.input.name}}", "Ada"},
		{"{{vars.input.tags.1}}", "b"},
		{"{{vars.input.tags.9}}", ""},
		{"{{vars.missing}}", ""},
		{"{{operationName}}", "GetUser"},
		{"{{upper(vars.input.name)}}", "ADA"},
		{"{{lower(\"MiXeD\")}}", "mixed"},
		{`{{default(vars.missing, "anon")}}`, "anon"},
		{`{{default(vars.id, "anon")}}`, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, process(t, e, tt.tmpl, ctx))
		})
	}
}

func TestProcess_UnknownLeftInPlace(t *testing.T) {
	e := New()
	assert.Equal(t, "{{ request.body.id }}", process(t, e, "{{ request.body.id }}", NewContext("", nil)))
	assert.Equal(t, "a {{mystery(1)}} b", process(t, e, "a {{mystery(1)}} b", nil))
	assert.Equal(t, "no templates", process(t, e, "no templates", nil))
}

func TestProcess_Builtins(t *testing.T) {
	e := New()

	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	assert.Regexp(t, uuidRe, process(t, e, "{{uuid}}", nil))
	assert.Len(t, process(t, e, "{{uuid.short}}", nil), 8)

	_, err := time.Parse(time.RFC3339, process(t, e, "{{now}}", nil))
	assert.NoError(t, err)

	ts, err := strconv.ParseInt(process(t, e, "{{timestamp}}", nil), 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), ts, 5)

	n, err := strconv.Atoi(process(t, e, "{{random.int(5, 7)}}", nil))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 5)
	assert.LessOrEqual(t, n, 7)

	assert.Len(t, process(t, e, "{{random.string(16)}}", nil), 16)
	assert.Contains(t, process(t, e, "{{faker.email}}", nil), "@")
	assert.Len(t, strings.Fields(process(t, e, "{{faker.name}}", nil)), 2)
}

func TestProcess_Sequences(t *testing.T) {
	e := New()
	assert.Equal(t, "1", process(t, e, `{{sequence("msg")}}`, nil))
	assert.Equal(t, "2", process(t, e, `{{sequence("msg")}}`, nil))
	assert.Equal(t, "100", process(t, e, `{{sequence("other", 100)}}`, nil))
	assert.Equal(t, int64(3), e.Sequence("msg"))
	assert.Equal(t, int64(0), e.Sequence("unused"))

	e.ResetSequences("msg")
	assert.Equal(t, "1", process(t, e, `{{sequence("msg")}}`, nil))
	assert.Equal(t, "101", process(t, e, `{{sequence("other", 100)}}`, nil))

	e.ResetSequences()
	assert.Equal(t, int64(0), e.Sequence("other"))
	assert.Equal(t, "100", process(t, e, `{{sequence("other", 100)}}`, nil))
}

func TestProcess_Seeded(t *testing.T) {
	e := New()
	tmpl := "{{uuid}} {{random.int(1, 1000)}} {{faker.name}} {{random.string(8)}}"

	a := process(t, e, tmpl, NewContext("", nil).WithSeed(7))
	b := process(t, e, tmpl, NewContext("", nil).WithSeed(7))
	c := process(t, e, tmpl, NewContext("", nil).WithSeed(8))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	id := strings.Fields(a)[0]
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, id)
}

func TestApply(t *testing.T) {
	e := New()
	ctx := NewContext("GetUser", map[string]any{
		"id":    7,
		"input": map[string]any{"name": "Ada"},
	})

	data := map[string]any{
		"user": map[string]any{
			"id":      "{{vars.id}}",
			"label":   "user-{{vars.id}}",
			"profile": "{{vars.input}}",
			"tags":    []any{"{{upper(vars.input.name)}}", 1, true},
			"missing": "{{vars.nope}}",
		},
		"count": 2,
	}

	got := e.Apply(data, ctx).(map[string]any)
	user := got["user"].(map[string]any)

	assert.Equal(t, 7, user["id"], "single var expressions keep their type")
	assert.Equal(t, "user-7", user["label"])
	assert.Equal(t, map[string]any{"name": "Ada"}, user["profile"])
	assert.Equal(t, []any{"ADA", 1, true}, user["tags"])
	assert.Equal(t, "", user["missing"])
	assert.Equal(t, 2, got["count"])

	// Input is untouched.
	assert.Equal(t, "{{vars.id}}", data["user"].(map[string]any)["id"])
	assert.Nil(t, e.Apply(nil, ctx))
}

func TestSplitFuncArgs(t *testing.T) {
	assert.Equal(t, []string{`vars.x`, `"a, b"`}, splitFuncArgs(`vars.x, "a, b"`))
	assert.Equal(t, []string{`'x'`}, splitFuncArgs(`'x'`))
}
