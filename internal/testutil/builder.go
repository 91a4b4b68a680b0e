// Package testutil provides builders and recorders for assembling small
// reactive graphs in tests.
package testutil

import (
	"testing"

	"github.com/Edward-Lombe/besix/internal/aggregate"
	"github.com/Edward-Lombe/besix/internal/emitter"
	"github.com/Edward-Lombe/besix/internal/store"
)

// Builder accumulates named stores and hands back a graph to test against.
type Builder struct {
	t      *testing.T
	stores map[string]*store.Store
	order  []string
}

// NewBuilder creates a builder bound to the test.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, stores: make(map[string]*store.Store)}
}

// WithStore adds a named store seeded from alternating key/value pairs.
func (b *Builder) WithStore(name string, kv ...any) *Builder {
	b.t.Helper()
	if len(kv)%2 != 0 {
		b.t.Fatalf("WithStore %q: odd number of key/value arguments", name)
	}
	s := store.New(nil, nil)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			b.t.Fatalf("WithStore %q: key %d is %T, want string", name, i, kv[i])
		}
		if err := s.Set(key, kv[i+1]); err != nil {
			b.t.Fatalf("WithStore %q: %v", name, err)
		}
	}
	if _, exists := b.stores[name]; !exists {
		b.order = append(b.order, name)
	}
	b.stores[name] = s
	return b
}

// Store returns the named store, failing the test if it was never added.
func (b *Builder) Store(name string) *store.Store {
	b.t.Helper()
	s, ok := b.stores[name]
	if !ok {
		b.t.Fatalf("no store named %q", name)
	}
	return s
}

// BuildAggregate returns an aggregate over every added store, in the order
// they were added.
func (b *Builder) BuildAggregate() *aggregate.Aggregate {
	b.t.Helper()
	items := make([]*store.Store, 0, len(b.order))
	for _, name := range b.order {
		items = append(items, b.stores[name])
	}
	return aggregate.New(items...)
}

// Recorder captures the argument lists of every dispatch it handles.
type Recorder struct {
	Calls [][]any
	// Err, when non-nil, is returned from the handler to exercise the
	// fail-fast path.
	Err error
}

// Handler returns the recording handler to register on an emitter.
func (r *Recorder) Handler() emitter.Handler {
	return func(args ...any) error {
		captured := make([]any, len(args))
		copy(captured, args)
		r.Calls = append(r.Calls, captured)
		return r.Err
	}
}

// Len returns the number of recorded dispatches.
func (r *Recorder) Len() int { return len(r.Calls) }

// Last returns the most recent argument list, nil when nothing fired.
func (r *Recorder) Last() []any {
	if len(r.Calls) == 0 {
		return nil
	}
	return r.Calls[len(r.Calls)-1]
}
