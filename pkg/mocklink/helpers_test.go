package mocklink

import (
	"sync"
	"testing"
	"time"

	"github.com/getmockd/mocklink/pkg/observable"
)

// collector records every signal delivered to one subscription.
type collector struct {
	mu        sync.Mutex
	values    []*Response
	errs      []error
	completes int
	calls     []string
	sub       *observable.Subscription
}

func collect(obs *observable.Observable[*Response]) *collector {
	c := &collector{}
	c.sub = obs.Subscribe(observable.Observer[*Response]{
		Next: func(r *Response) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.values = append(c.values, r)
			c.calls = append(c.calls, "next")
		},
		Error: func(err error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.errs = append(c.errs, err)
			c.calls = append(c.calls, "error")
		},
		Complete: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.completes++
			c.calls = append(c.calls, "complete")
		},
	})
	return c
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to terminate")
	}
}

func (c *collector) snapshot() (values []*Response, errs []error, completes int, calls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Response(nil), c.values...), append([]error(nil), c.errs...), c.completes, append([]string(nil), c.calls...)
}
