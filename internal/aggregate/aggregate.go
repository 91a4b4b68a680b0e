// Package aggregate provides the reactive ordered sequence of stores
// ("Collection"). Member change events are forwarded as the aggregate's own
// Changed event carrying (index, key, value); every operation that can
// change the length dispatches LengthChanged and rebuilds the forwarding
// subscriptions for the current members.
package aggregate

import (
	"iter"

	"github.com/Edward-Lombe/besix/internal/emitter"
	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/store"
)

// Changed fires with (index, key, value) whenever a member store's key
// changes. LengthChanged fires with no arguments whenever the sequence is
// constructed, replaced, or positionally mutated — even when the length
// did not actually change (pop on empty still notifies).
var (
	Changed       = emitter.NewSymbol("aggregate.changed")
	LengthChanged = emitter.NewSymbol("aggregate.length-changed")
)

// forward records one member subscription so it can be detached on rebuild.
type forward struct {
	src      *store.Store
	listener *emitter.Listener
}

// Aggregate is an ordered sequence of stores. Members are shared, not
// owned: the same store may appear in several aggregates or be referenced
// elsewhere.
type Aggregate struct {
	*emitter.Emitter

	items    []*store.Store
	forwards []forward
}

// New creates an aggregate over items (the slice is used directly, not
// copied). The rebuild handler subscribes to LengthChanged first, so on any
// structural dispatch the forwarders are rebuilt before user listeners run.
func New(items ...*store.Store) *Aggregate {
	a := &Aggregate{Emitter: emitter.New(), items: items}
	a.AddEventListener(LengthChanged, func(args ...any) error {
		a.rebuild()
		return nil
	})
	_ = a.DispatchEvent(LengthChanged)
	return a
}

// rebuild detaches every tracked forwarding subscription and attaches a
// fresh one per current member, so each member change is forwarded exactly
// once with its current index. Detaching also keeps removed members from
// leaking subscriptions when they are shared externally.
func (a *Aggregate) rebuild() {
	for _, f := range a.forwards {
		f.src.RemoveEventListener(f.listener)
	}
	a.forwards = a.forwards[:0]
	for i, st := range a.items {
		l := st.AddEventListener(store.Changed, func(args ...any) error {
			forwarded := make([]any, 0, len(args)+1)
			forwarded = append(forwarded, i)
			forwarded = append(forwarded, args...)
			return a.DispatchEvent(Changed, forwarded...)
		})
		a.forwards = append(a.forwards, forward{src: st, listener: l})
	}
	log.Debug(log.CatAggregate, "rebuilt forwarders", "len", len(a.items))
}

// Get returns the live backing slice for positional mutation. Callers that
// mutate it directly must dispatch LengthChanged themselves; the method
// wrappers below do this.
func (a *Aggregate) Get() []*store.Store { return a.items }

// Set atomically replaces the backing sequence and dispatches
// LengthChanged.
func (a *Aggregate) Set(items []*store.Store) error {
	a.items = items
	return a.DispatchEvent(LengthChanged)
}

// Len returns the current number of members.
func (a *Aggregate) Len() int { return len(a.items) }

// At returns the member at index i, with ok reporting whether i is in
// range.
func (a *Aggregate) At(i int) (*store.Store, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// SetAt replaces the member at index i and dispatches LengthChanged so the
// forwarders pick up the new member. It reports whether i was in range.
func (a *Aggregate) SetAt(i int, st *store.Store) (bool, error) {
	if i < 0 || i >= len(a.items) {
		return false, nil
	}
	a.items[i] = st
	return true, a.DispatchEvent(LengthChanged)
}

// Push appends items and returns the new length.
func (a *Aggregate) Push(items ...*store.Store) (int, error) {
	a.items = append(a.items, items...)
	return len(a.items), a.DispatchEvent(LengthChanged)
}

// Pop removes and returns the last member, nil when empty. LengthChanged is
// dispatched either way.
func (a *Aggregate) Pop() (*store.Store, error) {
	var removed *store.Store
	if n := len(a.items); n > 0 {
		removed = a.items[n-1]
		a.items = a.items[:n-1]
	}
	return removed, a.DispatchEvent(LengthChanged)
}

// Shift removes and returns the first member, nil when empty. LengthChanged
// is dispatched either way.
func (a *Aggregate) Shift() (*store.Store, error) {
	var removed *store.Store
	if len(a.items) > 0 {
		removed = a.items[0]
		a.items = a.items[1:]
	}
	return removed, a.DispatchEvent(LengthChanged)
}

// Unshift prepends items and returns the new length.
func (a *Aggregate) Unshift(items ...*store.Store) (int, error) {
	a.items = append(items, a.items...)
	return len(a.items), a.DispatchEvent(LengthChanged)
}

// Splice removes deleteCount members starting at start, inserts items in
// their place, and returns the removed members. A negative start counts
// from the end; start and deleteCount are clamped to the valid range.
func (a *Aggregate) Splice(start, deleteCount int, items ...*store.Store) ([]*store.Store, error) {
	n := len(a.items)
	if start < 0 {
		start += n
	}
	start = min(max(start, 0), n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := make([]*store.Store, deleteCount)
	copy(removed, a.items[start:start+deleteCount])

	rest := a.items[start+deleteCount:]
	next := make([]*store.Store, 0, n-deleteCount+len(items))
	next = append(next, a.items[:start]...)
	next = append(next, items...)
	next = append(next, rest...)
	a.items = next

	return removed, a.DispatchEvent(LengthChanged)
}

// All yields (index, member) pairs. The sequence is lazy, finite, and
// restartable against live state.
func (a *Aggregate) All() iter.Seq2[int, *store.Store] {
	return func(yield func(int, *store.Store) bool) {
		for i := 0; i < len(a.items); i++ {
			if !yield(i, a.items[i]) {
				return
			}
		}
	}
}

// Elements yields the members in order, live like All.
func (a *Aggregate) Elements() iter.Seq[*store.Store] {
	return func(yield func(*store.Store) bool) {
		for i := 0; i < len(a.items); i++ {
			if !yield(a.items[i]) {
				return
			}
		}
	}
}
