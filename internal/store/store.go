// Package store provides the reactive keyed property bag ("Model"). Every
// key write raises the generic Changed event followed by a key-named event,
// synchronously, so listeners always observe writes in order.
package store

import (
	"context"
	"errors"
	"iter"
	"sort"

	"github.com/Edward-Lombe/besix/internal/emitter"
	"github.com/Edward-Lombe/besix/internal/log"
)

// Changed is the generic change event. It fires with (key, value) on every
// write, before the key-named event fires with (value).
var Changed = emitter.NewSymbol("store.changed")

// ErrNoFetcher is returned by Fetch when no fetcher has been injected.
var ErrNoFetcher = errors.New("store: no fetcher configured")

// Response is the raw result of a network read. The store does not classify
// statuses; a non-2xx response is still a successful transport and mapping
// it to an application-level failure is the caller's concern.
type Response struct {
	Status int
	Body   []byte
}

// Fetcher is the injected network-read capability used by Fetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Store is a keyed property bag on top of an Emitter. Keys iterate in
// insertion order. There is no key deletion.
type Store struct {
	*emitter.Emitter

	values  map[string]any
	order   []string
	fetcher Fetcher
}

// New creates a store from defaults merged with data; data wins on key
// conflict. Every resulting key goes through Set, so the construction
// cascade dispatches change events — inertly, since no listeners can exist
// yet. Within each map, keys are applied in sorted order (Go maps carry no
// insertion order); defaults first, then data-only keys.
func New(defaults, data map[string]any) *Store {
	s := &Store{
		Emitter: emitter.New(),
		values:  make(map[string]any, len(defaults)+len(data)),
	}
	merged := make(map[string]any, len(defaults)+len(data))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	for _, k := range sortedKeys(defaults) {
		_ = s.Set(k, merged[k])
	}
	for _, k := range sortedKeys(data) {
		if _, isDefault := defaults[k]; !isDefault {
			_ = s.Set(k, merged[k])
		}
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key, then dispatches Changed with (key, value) and
// the key-named event with (value), in that order. A handler error halts
// the remaining dispatch sequence and is returned; the value is stored
// regardless. Set is the only reactive write path: there is no way to
// update a key without raising both events.
func (s *Store) Set(key string, value any) error {
	if _, exists := s.values[key]; !exists {
		s.order = append(s.order, key)
	}
	s.values[key] = value
	log.Debug(log.CatStore, "set", "key", key)
	if err := s.DispatchEvent(Changed, key, value); err != nil {
		return err
	}
	return s.DispatchEvent(key, value)
}

// Get returns the current value for key and whether the key is present.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int { return len(s.order) }

// Values yields the current value of every key in insertion order. The
// sequence is lazy, finite, and restartable: each iteration reads live
// state at yield time, not a snapshot.
func (s *Store) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, k := range s.order {
			if !yield(s.values[k]) {
				return
			}
		}
	}
}

// All yields (key, value) pairs in insertion order, live like Values.
func (s *Store) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range s.order {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

// SetFetcher injects the network-read capability used by Fetch.
func (s *Store) SetFetcher(f Fetcher) { s.fetcher = f }

// Fetch issues an asynchronous network read and returns the raw response.
// It never populates store keys; parsing and assignment belong to the
// caller. With an empty url the store's "url" key is used instead.
func (s *Store) Fetch(ctx context.Context, url string) (*Response, error) {
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}
	if url == "" {
		v, ok := s.values["url"]
		su, isString := v.(string)
		if !ok || !isString || su == "" {
			return nil, errors.New("store: no url given and no url key set")
		}
		url = su
	}
	return s.fetcher.Fetch(ctx, url)
}
