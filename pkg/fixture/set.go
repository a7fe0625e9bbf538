package fixture

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/mocklink"
	"github.com/getmockd/mocklink/pkg/template"
)

// Set is a collection of fixtures with the link configuration they expect.
type Set struct {
	Config mocklink.Config
	// Log configures the link's logger when set.
	Log      *logging.Settings
	Fixtures []Fixture
}

// Merge appends other's fixtures to s. Non-zero configuration fields of
// other take precedence.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	if other.Config.MissingHandlerPolicy != "" {
		s.Config.MissingHandlerPolicy = other.Config.MissingHandlerPolicy
	}
	if other.Config.DisableSubscriptionLogging {
		s.Config.DisableSubscriptionLogging = true
	}
	if other.Config.RequestLogSize != 0 {
		s.Config.RequestLogSize = other.Config.RequestLogSize
	}
	if other.Log != nil {
		s.Log = other.Log
	}
	s.Fixtures = append(s.Fixtures, other.Fixtures...)
}

// Register adds a handler for every fixture to link. Fixtures share one
// template engine, so named sequences count across the whole set.
func (s *Set) Register(link *mocklink.Link) error {
	b := &builder{link: link, engine: template.New()}

	for i := range s.Fixtures {
		f := &s.Fixtures[i]
		name := f.DisplayName(i)

		handler, err := b.handler(f, name)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", name, err)
		}

		var opts []mocklink.RegisterOption
		if f.Replace {
			opts = append(opts, mocklink.Replace())
		}
		if err := link.RegisterQuery(f.Query, handler, opts...); err != nil {
			if f.Source != "" {
				return fmt.Errorf("fixture %q (%s): %w", name, f.Source, err)
			}
			return fmt.Errorf("fixture %q: %w", name, err)
		}
	}
	return nil
}

// Logger returns a logger writing to out as the set's log section
// describes, or nil when the set has none.
func (s *Set) Logger(out io.Writer) *slog.Logger {
	if s.Log == nil {
		return nil
	}
	return logging.New(s.Log.Config(out))
}

// NewLink creates a link configured from the set and registers its
// fixtures. A log section sends the link's diagnostics to stderr. opts are
// applied after the set's configuration.
func NewLink(set *Set, opts ...mocklink.Option) (*mocklink.Link, error) {
	all := []mocklink.Option{mocklink.WithConfig(set.Config)}
	if logger := set.Logger(os.Stderr); logger != nil {
		all = append(all, mocklink.WithLogger(logger))
	}
	all = append(all, opts...)
	link := mocklink.New(all...)
	if err := set.Register(link); err != nil {
		return nil, err
	}
	return link, nil
}
