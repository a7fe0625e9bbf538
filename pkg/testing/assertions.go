package testing

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/mocklink/pkg/mocklink"
	"github.com/getmockd/mocklink/pkg/observable"
	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/jp"
)

// DefaultWaitTimeout bounds how long assertions wait for a recording to
// terminate.
const DefaultWaitTimeout = 2 * time.Second

// Recording captures the signals of one subscription.
type Recording struct {
	sub *observable.Subscription

	mu        sync.Mutex
	values    []*mocklink.Response
	err       error
	completed bool
}

func (r *Recording) onNext(resp *mocklink.Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, resp)
}

func (r *Recording) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recording) onComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = true
}

// Wait blocks until the subscription terminates or timeout elapses, and
// reports whether it terminated.
func (r *Recording) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.sub.Done():
		return true
	case <-timer.C:
		return false
	}
}

// Unsubscribe stops the recording.
func (r *Recording) Unsubscribe() {
	r.sub.Unsubscribe()
}

// Values returns the responses received so far.
func (r *Recording) Values() []*mocklink.Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mocklink.Response, len(r.values))
	copy(out, r.values)
	return out
}

// Err returns the terminal error, if any.
func (r *Recording) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completed reports whether the subscription completed successfully.
func (r *Recording) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Last returns the most recent response, or nil.
func (r *Recording) Last() *mocklink.Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return nil
	}
	return r.values[len(r.values)-1]
}

// AssertCompleted waits for the subscription and asserts it completed.
func (r *Recording) AssertCompleted(t testing.TB) {
	t.Helper()

	if !r.Wait(DefaultWaitTimeout) {
		t.Fatalf("subscription did not terminate within %s", DefaultWaitTimeout)
	}
	if err := r.Err(); err != nil {
		t.Errorf("expected subscription to complete, but it errored: %v", err)
		return
	}
	if !r.Completed() {
		t.Errorf("expected subscription to complete, but it was unsubscribed")
	}
}

// AssertErrored waits for the subscription and asserts it errored with a
// message containing substr.
func (r *Recording) AssertErrored(t testing.TB, substr string) {
	t.Helper()

	if !r.Wait(DefaultWaitTimeout) {
		t.Fatalf("subscription did not terminate within %s", DefaultWaitTimeout)
	}
	err := r.Err()
	if err == nil {
		t.Errorf("expected subscription to error with %q, but it did not", substr)
		return
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error does not contain %q\nerror: %v", substr, err)
	}
}

// AssertValues asserts that exactly n responses were received.
func (r *Recording) AssertValues(t testing.TB, n int) {
	t.Helper()

	if got := len(r.Values()); got != n {
		t.Errorf("expected %d responses, got %d", n, got)
	}
}

// AssertData asserts that the last response's data equals expected once
// both are JSON encoded. expected may be a JSON string, []byte or any value.
func (r *Recording) AssertData(t testing.TB, expected any) {
	t.Helper()

	last := r.Last()
	if last == nil {
		t.Errorf("expected data, but no response was received")
		return
	}

	want, err := parseExpected(expected)
	if err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return
	}
	got, err := normalize(last.Data)
	if err != nil {
		t.Errorf("response data is not JSON encodable: %v", err)
		return
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response data mismatch (-want +got):\n%s", diff)
	}
}

// AssertJSONPath asserts that path selects expected in the last response.
// The path is evaluated against the encoded response, so it starts at
// $.data, $.errors or $.extensions.
func (r *Recording) AssertJSONPath(t testing.TB, path string, expected any) {
	t.Helper()

	expr, err := jp.ParseString(path)
	if err != nil {
		t.Fatalf("invalid JSONPath %q: %v", path, err)
	}

	last := r.Last()
	if last == nil {
		t.Errorf("JSONPath %q: no response was received", path)
		return
	}
	doc, err := normalize(last)
	if err != nil {
		t.Errorf("response is not JSON encodable: %v", err)
		return
	}
	want, err := normalize(expected)
	if err != nil {
		t.Errorf("failed to encode expected value: %v", err)
		return
	}

	results := expr.Get(doc)
	if len(results) == 0 {
		t.Errorf("JSONPath %q matched nothing in %v", path, doc)
		return
	}
	for _, got := range results {
		if reflect.DeepEqual(got, want) {
			return
		}
	}
	t.Errorf("JSONPath %q mismatch\nexpected: %v\nactual: %v", path, want, results)
}

// normalize converts v to its generic JSON form so numbers and maps compare
// the same regardless of their Go types.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseExpected is normalize, except that strings and byte slices are
// taken to be JSON documents.
func parseExpected(v any) (any, error) {
	var data []byte
	switch val := v.(type) {
	case string:
		data = []byte(val)
	case []byte:
		data = val
	default:
		return normalize(v)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
