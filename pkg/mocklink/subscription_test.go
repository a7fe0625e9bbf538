package mocklink

import (
	"context"
	"errors"
	"testing"

	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/observable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	warnNoObserver = "subscription handle has no observer, this will have no effect"
	warnClosed     = "subscription handle is closed, this will have no effect"
	warnOverride   = "subscription handle observer should probably not be overridden"
)

func TestSubscriptionHandle_Unattached(t *testing.T) {
	logger, rec := logging.NewRecorder()
	h := NewSubscriptionHandle(WithSubscriptionLogger(logger))

	assert.True(t, h.Closed())
	assert.False(t, h.Attached())
	assert.NotEmpty(t, h.ID())

	h.Next(NewResponse(1))
	h.Next(NewResponse(2))
	h.Complete()
	h.Error(errors.New("ignored"))

	assert.Equal(t, 4, rec.Count(logging.LevelWarn, warnNoObserver))
	for _, r := range rec.Records() {
		assert.Equal(t, h.ID(), r.Attrs["subscription"])
	}
}

func TestSubscriptionHandle_WithoutLogging(t *testing.T) {
	logger, rec := logging.NewRecorder()
	h := NewSubscriptionHandle(WithSubscriptionLogger(logger), WithoutLogging())

	h.Next(NewResponse(1))
	h.Complete()

	assert.Empty(t, rec.Records())
}

func TestSubscriptionHandle_ForwardsInOrder(t *testing.T) {
	logger, rec := logging.NewRecorder()
	h := NewSubscriptionHandle(WithSubscriptionLogger(logger))

	c := collect(observable.New(func(s observable.Subscriber[*Response]) func() {
		h.attach(s)
		return nil
	}))

	assert.True(t, h.Attached())
	assert.False(t, h.Closed())

	h.Next(NewResponse("a"))
	h.Next(NewResponse("b"))
	h.Complete()
	c.wait(t)

	values, errs, completes, calls := c.snapshot()
	require.Len(t, values, 2)
	assert.Equal(t, "a", values[0].Data)
	assert.Equal(t, "b", values[1].Data)
	assert.Empty(t, errs)
	assert.Equal(t, 1, completes)
	assert.Equal(t, []string{"next", "next", "complete"}, calls)
	assert.True(t, h.Closed())
	assert.Empty(t, rec.Records())

	h.Next(NewResponse("c"))
	h.Error(errors.New("late"))
	assert.Equal(t, 2, rec.Count(logging.LevelWarn, warnClosed))
}

func TestSubscriptionHandle_ErrorCloses(t *testing.T) {
	h := NewSubscriptionHandle()
	c := collect(observable.New(func(s observable.Subscriber[*Response]) func() {
		h.attach(s)
		return nil
	}))

	boom := errors.New("boom")
	h.Error(boom)
	c.wait(t)

	_, errs, completes, _ := c.snapshot()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Zero(t, completes)
	assert.True(t, h.Closed())
}

func TestSubscriptionHandle_ClosedWhenObserverUnsubscribes(t *testing.T) {
	h := NewSubscriptionHandle()
	c := collect(observable.New(func(s observable.Subscriber[*Response]) func() {
		h.attach(s)
		return nil
	}))

	assert.False(t, h.Closed())
	c.sub.Unsubscribe()
	assert.True(t, h.Closed())
}

func TestSubscriptionHandle_OverrideWarns(t *testing.T) {
	logger, rec := logging.NewRecorder()
	link := New(WithLogger(logger))
	h := link.NewSubscriptionHandle()

	require.NoError(t, link.RegisterQuery(`subscription OnMessage { messageAdded { id } }`,
		func(context.Context, Variables) (Result, error) {
			return Stream(h), nil
		}))

	stream, err := link.Request(context.Background(), `subscription OnMessage { messageAdded { id } }`, nil)
	require.NoError(t, err)

	first := collect(stream)
	second := collect(stream)
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, warnOverride))

	h.Next(NewResponse("x"))
	h.Complete()
	second.wait(t)

	firstValues, _, firstCompletes, _ := first.snapshot()
	secondValues, _, secondCompletes, _ := second.snapshot()
	assert.Empty(t, firstValues)
	assert.Zero(t, firstCompletes)
	require.Len(t, secondValues, 1)
	assert.Equal(t, 1, secondCompletes)
}

func TestLink_NewSubscriptionHandle_HonorsConfig(t *testing.T) {
	logger, rec := logging.NewRecorder()
	link := New(WithLogger(logger), WithConfig(Config{DisableSubscriptionLogging: true}))

	link.NewSubscriptionHandle().Next(NewResponse(nil))
	assert.Empty(t, rec.Records())

	link = New(WithLogger(logger))
	link.NewSubscriptionHandle().Next(NewResponse(nil))
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, warnNoObserver))
}

func TestSubscriptionHandle_Ready(t *testing.T) {
	h := NewSubscriptionHandle()
	select {
	case <-h.Ready():
		t.Fatal("Ready() closed before attach")
	default:
	}

	c := collect(observable.New(func(s observable.Subscriber[*Response]) func() {
		h.attach(s)
		return nil
	}))
	<-h.Ready()

	go func() {
		h.Next(NewResponse("async"))
		h.Complete()
	}()
	c.wait(t)

	values, _, completes, _ := c.snapshot()
	require.Len(t, values, 1)
	assert.Equal(t, 1, completes)
}
