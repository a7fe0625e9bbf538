package mocklink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getmockd/mocklink/pkg/canonical"
	"github.com/getmockd/mocklink/pkg/document"
	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/observable"
	"github.com/getmockd/mocklink/pkg/requestlog"
	"github.com/vektah/gqlparser/v2/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the link's tracer.
const TracerName = "github.com/getmockd/mocklink"

// Link is an in-process GraphQL transport that answers operations from
// registered handlers.
type Link struct {
	cfg      Config
	logger   *slog.Logger
	tracer   trace.Tracer
	tp       trace.TracerProvider
	registry *Registry
	requests requestlog.Store
}

// Option configures a Link.
type Option func(*Link)

// WithConfig replaces the link configuration.
func WithConfig(cfg Config) Option {
	return func(l *Link) {
		l.cfg = cfg
	}
}

// WithMissingHandlerPolicy sets the missing handler policy.
func WithMissingHandlerPolicy(p MissingHandlerPolicy) Option {
	return func(l *Link) {
		l.cfg.MissingHandlerPolicy = p
	}
}

// WithLogger sets the logger for the link, its registry and the handles it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Link) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used
// by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Link) {
		l.tp = tp
	}
}

// WithRequestLog sets the store dispatched operations are recorded in.
func WithRequestLog(store requestlog.Store) Option {
	return func(l *Link) {
		l.requests = store
	}
}

// New creates a Link with an empty registry.
func New(opts ...Option) *Link {
	l := &Link{
		cfg:    DefaultConfig(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.cfg.Validate(); err != nil {
		l.logger.Warn("invalid link configuration, using defaults", "error", err)
		l.cfg = DefaultConfig()
	}
	l.cfg = l.cfg.withDefaults()

	if l.tp == nil {
		l.tp = otel.GetTracerProvider()
	}
	l.tracer = l.tp.Tracer(TracerName)

	if l.requests == nil {
		l.requests = requestlog.NewMemoryStore(l.cfg.RequestLogSize)
	}
	l.registry = NewRegistry(l.logger)
	return l
}

// Config returns the effective configuration.
func (l *Link) Config() Config {
	return l.cfg
}

// Registry returns the link's handler registry.
func (l *Link) Registry() *Registry {
	return l.registry
}

// Requests returns the log of dispatched operations.
func (l *Link) Requests() requestlog.Store {
	return l.requests
}

// Register adds a handler for doc. See Registry.Register.
func (l *Link) Register(doc *ast.QueryDocument, handler Handler, opts ...RegisterOption) error {
	return l.registry.Register(doc, handler, opts...)
}

// RegisterQuery parses query and registers handler for it.
func (l *Link) RegisterQuery(query string, handler Handler, opts ...RegisterOption) error {
	doc, err := document.Parse(query)
	if err != nil {
		return err
	}
	return l.registry.Register(doc, handler, opts...)
}

// NewSubscriptionHandle returns a handle that logs through the link's logger
// and honors Config.DisableSubscriptionLogging. opts are applied after
// those defaults.
func (l *Link) NewSubscriptionHandle(opts ...SubscriptionOption) *SubscriptionHandle {
	base := []SubscriptionOption{WithSubscriptionLogger(l.logger)}
	if l.cfg.DisableSubscriptionLogging {
		base = append(base, WithoutLogging())
	}
	return NewSubscriptionHandle(append(base, opts...)...)
}

// Request parses query and dispatches it with vars.
func (l *Link) Request(ctx context.Context, query string, vars Variables) (*observable.Observable[*Response], error) {
	op, err := NewOperation(query, vars)
	if err != nil {
		return nil, err
	}
	return l.Dispatch(ctx, op)
}

// Dispatch looks up the handler for op and returns the stream of its
// responses.
//
// When no handler matches, the configured MissingHandlerPolicy applies:
// PolicyThrowError returns a *MissingHandlerError and a nil stream, while
// the other policies return a stream that fails once subscribed.
//
// The handler runs each time the returned stream is subscribed. Errors it
// returns, panics, and results of the wrong shape are delivered through the
// stream's error channel. Unsubscribing does not cancel handler work.
func (l *Link) Dispatch(ctx context.Context, op Operation) (*observable.Observable[*Response], error) {
	key := canonical.Canonicalize(op.Query)
	handler, found := l.registry.Lookup(key)

	entry := &requestlog.Entry{
		OperationType: string(op.Type()),
		OperationName: op.Name(),
		Key:           key.String(),
		Query:         document.Print(op.Query),
		Variables:     op.Variables,
		Matched:       found,
	}

	if !found {
		err := &MissingHandlerError{Key: key, Query: entry.Query, OperationName: entry.OperationName}
		entry.Error = err.Error()
		l.requests.Log(entry)

		switch l.cfg.MissingHandlerPolicy {
		case PolicyWarnAndReturnError:
			l.logger.Warn(err.Error(), logging.AttrOperation, entry.OperationName)
			return observable.Throw[*Response](err), nil
		case PolicyReturnError:
			return observable.Throw[*Response](err), nil
		default:
			return nil, err
		}
	}

	l.requests.Log(entry)
	return observable.New(func(s observable.Subscriber[*Response]) func() {
		l.run(ctx, op, handler, s)
		return nil
	}), nil
}

func (l *Link) run(ctx context.Context, op Operation, handler Handler, s observable.Subscriber[*Response]) {
	ctx, span := l.tracer.Start(ctx, "mocklink.dispatch", trace.WithAttributes(
		attribute.String("graphql.operation.name", op.Name()),
		attribute.String("graphql.operation.type", string(op.Type())),
	))

	result, err := invoke(ctx, handler, op)
	if err != nil {
		fail(span, err)
		span.End()
		s.Error(err)
		return
	}

	span.SetAttributes(attribute.String("mocklink.result", result.Kind().String()))

	switch {
	case result.kind == ResultDeferred && result.deferred != nil:
		go await(result.deferred, s, span)
	case result.kind == ResultStream && result.stream != nil:
		result.stream.attach(s)
		span.AddEvent("subscription attached", trace.WithAttributes(
			attribute.String("mocklink.subscription", result.stream.ID()),
		))
		span.End()
	default:
		err := &InvalidReturnTypeError{OperationName: op.Name(), Received: result.describe()}
		fail(span, err)
		span.End()
		s.Error(err)
	}
}

// await settles s from d, unless s goes away first.
func await(d *Deferred, s observable.Subscriber[*Response], span trace.Span) {
	defer span.End()

	select {
	case <-d.Done():
	case <-s.Done():
		span.AddEvent("unsubscribed")
		return
	}

	value, err := d.Value()
	if err != nil {
		fail(span, err)
		s.Error(err)
		return
	}
	span.SetAttributes(attribute.Int("graphql.error_count", len(value.Errors)))
	s.Next(value)
	s.Complete()
}

// invoke calls handler, converting returned errors and panics into
// *HandlerInvocationError.
func invoke(ctx context.Context, handler Handler, op Operation) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			hie := &HandlerInvocationError{
				OperationName: op.Name(),
				Message:       fmt.Sprint(r),
				Panicked:      true,
			}
			if e, ok := r.(error); ok {
				hie.Err = e
			}
			result, err = Result{}, hie
		}
	}()

	result, err = handler(ctx, op.Variables)
	if err != nil {
		var hie *HandlerInvocationError
		if errors.As(err, &hie) {
			return Result{}, err
		}
		return Result{}, &HandlerInvocationError{OperationName: op.Name(), Message: err.Error(), Err: err}
	}
	return result, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
