// Package requestlog records the operations dispatched through a mock link
// so that tests can inspect what was requested and whether it matched.
//
// It is distinct from operational logging, which uses log/slog. Every
// dispatch produces one Entry, matched or not.
//
//	store := requestlog.NewMemoryStore(100)
//	link := mocklink.New(mocklink.WithRequestLog(store))
//	// ... dispatch operations ...
//	unmatched := store.List(&requestlog.Filter{Matched: requestlog.Bool(false)})
//
// This is a leaf package with no internal dependencies.
package requestlog
