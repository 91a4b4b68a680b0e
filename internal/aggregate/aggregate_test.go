package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Edward-Lombe/besix/internal/aggregate"
	"github.com/Edward-Lombe/besix/internal/store"
)

func newStore(kv ...any) *store.Store {
	s := store.New(nil, nil)
	for i := 0; i+1 < len(kv); i += 2 {
		_ = s.Set(kv[i].(string), kv[i+1])
	}
	return s
}

func TestAggregate_ForwardsMemberChanges(t *testing.T) {
	storeA := newStore("x", 1)
	storeB := newStore("x", 2)
	agg := aggregate.New(storeA, storeB)

	var got []any
	agg.AddEventListener(aggregate.Changed, func(args ...any) error {
		got = args
		return nil
	})

	require.NoError(t, storeA.Set("x", 9))
	assert.Equal(t, []any{0, "x", 9}, got, "member change forwards as (index, key, value)")

	require.NoError(t, storeB.Set("x", 7))
	assert.Equal(t, []any{1, "x", 7}, got)
}

func TestAggregate_PushDispatchesOnceAndReturnsLength(t *testing.T) {
	agg := aggregate.New()
	fired := 0
	agg.AddEventListener(aggregate.LengthChanged, func(args ...any) error {
		fired++
		return nil
	})

	n, err := agg.Push(newStore())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, 1, fired, "push dispatches exactly one length-changed event")
}

func TestAggregate_PopReturnsRemoved(t *testing.T) {
	first := newStore("id", 1)
	last := newStore("id", 2)
	agg := aggregate.New(first, last)

	removed, err := agg.Pop()
	require.NoError(t, err)
	assert.Same(t, last, removed)
	assert.Equal(t, 1, agg.Len())
}

func TestAggregate_PopOnEmptyStillDispatches(t *testing.T) {
	agg := aggregate.New()
	fired := 0
	agg.AddEventListener(aggregate.LengthChanged, func(args ...any) error {
		fired++
		return nil
	})

	removed, err := agg.Pop()
	require.NoError(t, err)
	assert.Nil(t, removed, "pop on empty returns the empty sentinel without raising")
	assert.Equal(t, 1, fired, "dispatch-always is preserved even for a no-op pop")
}

func TestAggregate_ShiftUnshift(t *testing.T) {
	first := newStore("id", 1)
	agg := aggregate.New(first, newStore("id", 2))

	removed, err := agg.Shift()
	require.NoError(t, err)
	assert.Same(t, first, removed)

	n, err := agg.Unshift(newStore("id", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, ok := agg.At(0)
	require.True(t, ok)
	v, _ := st.Get("id")
	assert.Equal(t, 0, v)
}

func TestAggregate_Splice(t *testing.T) {
	a, b, c := newStore("id", "a"), newStore("id", "b"), newStore("id", "c")
	agg := aggregate.New(a, b, c)

	replacement := newStore("id", "x")
	removed, err := agg.Splice(1, 1, replacement)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Same(t, b, removed[0])

	var ids []any
	for st := range agg.Elements() {
		v, _ := st.Get("id")
		ids = append(ids, v)
	}
	assert.Equal(t, []any{"a", "x", "c"}, ids)
}

func TestAggregate_SpliceClamping(t *testing.T) {
	a, b := newStore("id", "a"), newStore("id", "b")
	agg := aggregate.New(a, b)

	// Negative start counts from the end; oversized deleteCount clamps.
	removed, err := agg.Splice(-1, 10)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Same(t, b, removed[0])
	assert.Equal(t, 1, agg.Len())

	// Start past the end inserts at the end and removes nothing.
	removed, err = agg.Splice(99, 1, newStore("id", "z"))
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 2, agg.Len())
}

func TestAggregate_NoDuplicateForwardsAfterMutations(t *testing.T) {
	shared := newStore("x", 0)
	agg := aggregate.New(shared)

	// Several structural dispatches must not stack forwarding
	// subscriptions for surviving members.
	_, err := agg.Push(newStore())
	require.NoError(t, err)
	_, err = agg.Pop()
	require.NoError(t, err)

	fired := 0
	agg.AddEventListener(aggregate.Changed, func(args ...any) error {
		fired++
		return nil
	})
	require.NoError(t, shared.Set("x", 1))
	assert.Equal(t, 1, fired, "member change must forward exactly once per aggregate")
}

func TestAggregate_RemovedMemberStopsForwarding(t *testing.T) {
	dropped := newStore("x", 0)
	agg := aggregate.New(dropped)
	_, err := agg.Pop()
	require.NoError(t, err)

	fired := 0
	agg.AddEventListener(aggregate.Changed, func(args ...any) error {
		fired++
		return nil
	})
	require.NoError(t, dropped.Set("x", 1))
	assert.Equal(t, 0, fired, "a removed member must not keep a forwarding subscription")
	assert.Equal(t, 0, dropped.ListenerCount(store.Changed))
}

func TestAggregate_SetReplacesSequenceWholesale(t *testing.T) {
	old := newStore("x", 0)
	agg := aggregate.New(old)

	fired := 0
	agg.AddEventListener(aggregate.LengthChanged, func(args ...any) error {
		fired++
		return nil
	})

	fresh := newStore("x", 1)
	require.NoError(t, agg.Set([]*store.Store{fresh}))
	assert.Equal(t, 1, fired)

	var got []any
	agg.AddEventListener(aggregate.Changed, func(args ...any) error {
		got = args
		return nil
	})
	require.NoError(t, old.Set("x", 5))
	assert.Nil(t, got, "forwarders for the replaced sequence must be gone")
	require.NoError(t, fresh.Set("x", 6))
	assert.Equal(t, []any{0, "x", 6}, got)
}

func TestAggregate_GetReturnsLiveBackingSlice(t *testing.T) {
	a := newStore("id", "a")
	agg := aggregate.New(a)
	live := agg.Get()
	require.Len(t, live, 1)
	assert.Same(t, a, live[0])
}

func TestAggregate_IndexedAccess(t *testing.T) {
	agg := aggregate.New(newStore("id", "a"))

	_, ok := agg.At(1)
	assert.False(t, ok)
	_, ok = agg.At(-1)
	assert.False(t, ok)

	swapped := newStore("id", "b")
	ok, err := agg.SetAt(0, swapped)
	require.NoError(t, err)
	require.True(t, ok)

	var got []any
	agg.AddEventListener(aggregate.Changed, func(args ...any) error {
		got = args
		return nil
	})
	require.NoError(t, swapped.Set("id", "c"))
	assert.Equal(t, []any{0, "id", "c"}, got, "SetAt must rebind the forwarder to the new member")
}

func TestAggregate_IterationIsLiveAndRestartable(t *testing.T) {
	agg := aggregate.New(newStore("id", 1), newStore("id", 2))

	count := 0
	for range agg.Elements() {
		count++
	}
	assert.Equal(t, 2, count)

	_, err := agg.Pop()
	require.NoError(t, err)
	count = 0
	for i, st := range agg.All() {
		require.NotNil(t, st)
		require.Equal(t, count, i)
		count++
	}
	assert.Equal(t, 1, count)
}

// TestProperty_LengthMatchesModel drives a random mutation sequence against
// a plain-slice model and checks length, structural-event count, and
// single-forwarding after every step.
func TestProperty_LengthMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agg := aggregate.New()
		model := 0
		fired := 0
		agg.AddEventListener(aggregate.LengthChanged, func(args ...any) error {
			fired++
			return nil
		})

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			before := fired
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				n, err := agg.Push(newStore())
				require.NoError(t, err)
				model++
				require.Equal(t, model, n)
			case 1:
				removed, err := agg.Pop()
				require.NoError(t, err)
				if model > 0 {
					model--
					require.NotNil(t, removed)
				} else {
					require.Nil(t, removed)
				}
			case 2:
				n, err := agg.Unshift(newStore())
				require.NoError(t, err)
				model++
				require.Equal(t, model, n)
			case 3:
				removed, err := agg.Shift()
				require.NoError(t, err)
				if model > 0 {
					model--
					require.NotNil(t, removed)
				} else {
					require.Nil(t, removed)
				}
			}
			require.Equal(t, model, agg.Len())
			require.Equal(t, before+1, fired, "every mutation dispatches exactly one length-changed event")
		}

		// Exactly one forwarding subscription per surviving member.
		for _, st := range agg.Get() {
			require.Equal(t, 1, st.ListenerCount(store.Changed))
		}
	})
}
