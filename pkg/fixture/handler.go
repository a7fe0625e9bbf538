package fixture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/getmockd/mocklink/pkg/mocklink"
	"github.com/getmockd/mocklink/pkg/template"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// conditionEnv is the environment conditions are compiled against.
func conditionEnv(operationName string, vars mocklink.Variables) map[string]any {
	if vars == nil {
		vars = mocklink.Variables{}
	}
	return map[string]any{
		"vars":          vars,
		"operationName": operationName,
	}
}

func compileCondition(when string) (*vm.Program, error) {
	return expr.Compile(when, expr.Env(conditionEnv("", nil)), expr.AsBool())
}

type compiledCase struct {
	Case
	program *vm.Program
}

// builder turns fixtures into handlers.
type builder struct {
	link   *mocklink.Link
	engine *template.Engine
}

func (b *builder) handler(f *Fixture, name string) (mocklink.Handler, error) {
	if f.IsStream() {
		return b.streamHandler(f, name), nil
	}

	cases := make([]compiledCase, len(f.Cases))
	for i, c := range f.Cases {
		cases[i] = compiledCase{Case: c}
		if c.When == "" {
			continue
		}
		program, err := compileCondition(c.When)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", c.When, err)
		}
		cases[i].program = program
	}

	return func(ctx context.Context, vars mocklink.Variables) (mocklink.Result, error) {
		tctx := b.templateContext(f, name, vars)

		answer := Case{Delay: f.Delay, Response: f.Response, Error: f.Error}
		for _, c := range cases {
			ok, err := c.matches(name, vars)
			if err != nil {
				return mocklink.Result{}, err
			}
			if ok {
				answer = c.Case
				if answer.Delay == 0 {
					answer.Delay = f.Delay
				}
				break
			}
		}

		if answer.Error != "" {
			msg, _ := b.engine.Process(answer.Error, tctx)
			return mocklink.Later(rejectAfter(answer.Delay, errors.New(msg))), nil
		}
		return mocklink.Later(mocklink.ResolveAfter(answer.Delay, b.render(answer.Response, tctx))), nil
	}, nil
}

func (c compiledCase) matches(operationName string, vars mocklink.Variables) (bool, error) {
	if c.program == nil {
		return true, nil
	}
	out, err := expr.Run(c.program, conditionEnv(operationName, vars))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", c.When, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

func (b *builder) streamHandler(f *Fixture, name string) mocklink.Handler {
	return func(ctx context.Context, vars mocklink.Variables) (mocklink.Result, error) {
		h := b.link.NewSubscriptionHandle()
		go b.play(ctx, f, h, b.templateContext(f, name, vars))
		return mocklink.Stream(h), nil
	}
}

// play emits f's events through h once a subscriber is attached. It stops
// early when ctx is done or the subscriber goes away.
func (b *builder) play(ctx context.Context, f *Fixture, h *mocklink.SubscriptionHandle, tctx *template.Context) {
	select {
	case <-h.Ready():
	case <-ctx.Done():
		return
	}

	for _, ev := range f.Events {
		if ev.Delay > 0 {
			timer := time.NewTimer(ev.Delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
		if h.Closed() {
			return
		}

		if ev.Error != "" {
			msg, _ := b.engine.Process(ev.Error, tctx)
			h.Error(errors.New(msg))
			return
		}
		h.Next(b.render(&Response{Data: ev.Data, Errors: ev.Errors}, tctx))
	}

	if f.Complete && !h.Closed() {
		h.Complete()
	}
}

func (b *builder) templateContext(f *Fixture, name string, vars mocklink.Variables) *template.Context {
	tctx := template.NewContext(name, vars)
	if f.Seed != nil {
		tctx = tctx.WithSeed(*f.Seed)
	}
	return tctx
}

// render builds a response from r with templates applied.
func (b *builder) render(r *Response, tctx *template.Context) *mocklink.Response {
	if r == nil {
		return &mocklink.Response{}
	}

	resp := &mocklink.Response{Data: b.engine.Apply(r.Data, tctx)}
	if r.Extensions != nil {
		resp.Extensions, _ = b.engine.Apply(r.Extensions, tctx).(map[string]any)
	}
	for _, e := range r.Errors {
		msg, _ := b.engine.Process(e.Message, tctx)
		gqlErr := &gqlerror.Error{Message: msg, Path: toPath(e.Path)}
		if e.Extensions != nil {
			gqlErr.Extensions, _ = b.engine.Apply(e.Extensions, tctx).(map[string]any)
		}
		resp.Errors = append(resp.Errors, gqlErr)
	}
	return resp
}

func toPath(elems []any) ast.Path {
	if len(elems) == 0 {
		return nil
	}
	path := make(ast.Path, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			path = append(path, ast.PathName(v))
		case int:
			path = append(path, ast.PathIndex(v))
		case float64:
			path = append(path, ast.PathIndex(int(v)))
		default:
			path = append(path, ast.PathName(fmt.Sprint(v)))
		}
	}
	return path
}

func rejectAfter(delay time.Duration, err error) *mocklink.Deferred {
	d := mocklink.NewDeferred()
	if delay <= 0 {
		d.Reject(err)
		return d
	}
	time.AfterFunc(delay, func() { d.Reject(err) })
	return d
}
