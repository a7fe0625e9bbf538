package mocklink

import (
	"context"
	"fmt"
	"testing"

	"github.com/getmockd/mocklink/pkg/requestlog"
)

// =============================================================================
// Dispatch Benchmarks
// =============================================================================

const benchQuery = `
	query GetUser($id: ID!) {
		user(id: $id) {
			__typename
			id
			name
			selected @client
			posts(first: 10) @connection(key: "posts") { __typename id title }
		}
	}`

// benchLink returns a link with n registered handlers plus one for benchQuery.
func benchLink(b *testing.B, n int) *Link {
	b.Helper()

	link := New(WithRequestLog(requestlog.NewMemoryStore(16)))
	for i := 0; i < n; i++ {
		query := fmt.Sprintf(`query Q%d { field%d { id } }`, i, i)
		if err := link.RegisterQuery(query, resolving(nil)); err != nil {
			b.Fatalf("register: %v", err)
		}
	}
	if err := link.RegisterQuery(benchQuery, resolving(map[string]any{"user": nil})); err != nil {
		b.Fatalf("register: %v", err)
	}
	return link
}

func BenchmarkDispatch(b *testing.B) {
	for _, handlers := range []int{1, 100, 1000} {
		b.Run(fmt.Sprintf("handlers=%d", handlers), func(b *testing.B) {
			link := benchLink(b, handlers)
			op, err := NewOperation(benchQuery, Variables{"id": "1"})
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := link.Dispatch(context.Background(), op); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDispatch_Subscribe(b *testing.B) {
	link := benchLink(b, 10)
	op, err := NewOperation(benchQuery, Variables{"id": "1"})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream, err := link.Dispatch(context.Background(), op)
		if err != nil {
			b.Fatal(err)
		}
		<-collect(stream).sub.Done()
	}
}

func BenchmarkDispatch_Parallel(b *testing.B) {
	link := benchLink(b, 100)
	op, err := NewOperation(benchQuery, Variables{"id": "1"})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			stream, err := link.Dispatch(context.Background(), op)
			if err != nil {
				b.Error(err)
				return
			}
			<-collect(stream).sub.Done()
		}
	})
}
