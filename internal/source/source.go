// Package source holds the per-site adapters that discover and parse
// hackathon listing pages. Variants differ only in selectors and URL
// conventions; all fetching goes through the shared fetch.Client and all
// parsed output is a model.RawHackathon for the normalizer.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hackseek/scraper/internal/model"
)

// Source is implemented by each external listing site adapter.
type Source interface {
	// Name returns the stable platform identifier (e.g. "devpost"), used
	// as the record's source_platform and the adapter's log tag.
	Name() string

	// Discover returns the candidate item-page URLs for the current run,
	// deduplicated. It returns an error only when the mandatory entry
	// listing page cannot be fetched; secondary listing pages are
	// best-effort and an unreachable one just yields fewer URLs.
	Discover(ctx context.Context) ([]string, error)

	// ParseItem fetches and parses one item page. A (nil, nil) return is a
	// soft skip: the page was fetched but lacks the structural anchors
	// (title) needed to produce a record.
	ParseItem(ctx context.Context, url string) (*model.RawHackathon, error)
}

// Registry maps source names to their adapters, preserving registration
// order for deterministic runs.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	name := s.Name()
	if _, exists := r.sources[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sources[name] = s
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("source: unknown source %q", name)
	}
	return s, nil
}

// Select returns the named sources in the given order, or every registered
// source in registration order when names is empty.
func (r *Registry) Select(names []string) ([]Source, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	result := make([]Source, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// All returns every registered source in registration order.
func (r *Registry) All() []Source {
	result := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.sources[name])
	}
	return result
}

// Names returns the registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
