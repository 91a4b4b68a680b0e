package binding_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edward-Lombe/besix/internal/binding"
	"github.com/Edward-Lombe/besix/internal/emitter"
	"github.com/Edward-Lombe/besix/internal/store"
)

func TestBinding_PipelineDeterminism(t *testing.T) {
	src := store.New(nil, map[string]any{"a": 1, "b": 2})
	dst1 := store.New(nil, nil)
	dst2 := store.New(nil, nil)
	trigger := emitter.New()

	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "fire"}},
		Sources: []binding.Source{
			binding.Prop(src, "a"),
			binding.Prop(src, "b"),
		},
		Modifiers: []binding.Modifier{
			func(v any) any {
				in := v.([]any)
				out := make([]any, len(in))
				for i, n := range in {
					out[i] = n.(int) * 2
				}
				return out
			},
			func(v any) any {
				sum := 0
				for _, n := range v.([]any) {
					sum += n.(int)
				}
				return sum
			},
		},
		Destinations: []binding.Destination{
			binding.Assign(dst1, "total"),
			binding.Assign(dst2, "total"),
		},
	})
	defer b.Unbind()

	for range 3 {
		require.NoError(t, trigger.DispatchEvent("fire"))
		v, _ := dst1.Get("total")
		assert.Equal(t, 6, v, "fixed sources and modifiers must write a fixed result")
		v, _ = dst2.Get("total")
		assert.Equal(t, 6, v, "every destination receives the final value")
	}
}

func TestBinding_CallableSourceAndInvokeDestination(t *testing.T) {
	trigger := emitter.New()
	dst := store.New(nil, nil)

	add := func(args ...any) any {
		return args[0].(int) + args[1].(int)
	}

	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "click"}},
		Sources:  []binding.Source{binding.Call(add, 1, 2)},
		Modifiers: []binding.Modifier{
			func(v any) any { return v.([]any)[0].(int) * 10 },
		},
		Destinations: []binding.Destination{
			binding.Invoke(func(v any) error { return dst.Set("value", v) }),
		},
	})
	defer b.Unbind()

	require.NoError(t, trigger.DispatchEvent("click"))
	v, _ := dst.Get("value")
	assert.Equal(t, 30, v)
}

func TestBinding_TriggerArgsAreDiscarded(t *testing.T) {
	src := store.New(nil, map[string]any{"x": "fresh"})
	dst := store.New(nil, nil)
	trigger := emitter.New()

	b := binding.New(binding.Descriptor{
		Triggers:     []binding.Trigger{{Target: trigger, Event: "fire"}},
		Sources:      []binding.Source{binding.Prop(src, "x")},
		Destinations: []binding.Destination{binding.Assign(dst, "x")},
	})
	defer b.Unbind()

	require.NoError(t, trigger.DispatchEvent("fire", "stale-payload", 42))
	v, _ := dst.Get("x")
	assert.Equal(t, []any{"fresh"}, v, "sources are re-read fresh, not taken from the event payload")
}

func TestBinding_EmptySourceListStillRuns(t *testing.T) {
	trigger := emitter.New()
	dst := store.New(nil, nil)

	modifierRan := false
	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "fire"}},
		Modifiers: []binding.Modifier{
			func(v any) any {
				modifierRan = true
				assert.Equal(t, []any{}, v)
				return "constant"
			},
		},
		Destinations: []binding.Destination{binding.Assign(dst, "out")},
	})
	defer b.Unbind()

	require.NoError(t, trigger.DispatchEvent("fire"))
	assert.True(t, modifierRan)
	v, _ := dst.Get("out")
	assert.Equal(t, "constant", v)
}

func TestBinding_NoModifiersWritesSampledValues(t *testing.T) {
	src := store.New(nil, map[string]any{"a": 1})
	dst := store.New(nil, nil)
	trigger := emitter.New()

	b := binding.New(binding.Descriptor{
		Triggers:     []binding.Trigger{{Target: trigger, Event: "fire"}},
		Sources:      []binding.Source{binding.Prop(src, "a"), binding.Prop(src, "missing")},
		Destinations: []binding.Destination{binding.Assign(dst, "out")},
	})
	defer b.Unbind()

	require.NoError(t, trigger.DispatchEvent("fire"))
	v, _ := dst.Get("out")
	assert.Equal(t, []any{1, nil}, v, "a missing source key samples as nil")
}

func TestBinding_StoreKeyEventAsTrigger(t *testing.T) {
	// A store is itself a Notifier: binding to its key-named event makes
	// one store's writes drive another.
	src := store.New(nil, map[string]any{"celsius": 0})
	dst := store.New(nil, nil)

	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: src, Event: "celsius"}},
		Sources:  []binding.Source{binding.Prop(src, "celsius")},
		Modifiers: []binding.Modifier{
			func(v any) any { return v.([]any)[0].(int)*9/5 + 32 },
		},
		Destinations: []binding.Destination{binding.Assign(dst, "fahrenheit")},
	})
	defer b.Unbind()

	require.NoError(t, src.Set("celsius", 100))
	v, _ := dst.Get("fahrenheit")
	assert.Equal(t, 212, v)
}

func TestBinding_NestedDispatchCompletesBeforeOuterResumes(t *testing.T) {
	// Binding A writes to mid; binding B triggers on mid's key event. The
	// write in A's pipeline nests B's whole pipeline before A returns.
	src := store.New(nil, map[string]any{"x": 1})
	mid := store.New(nil, nil)
	final := store.New(nil, nil)
	trigger := emitter.New()

	bindB := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: mid, Event: "x"}},
		Sources:  []binding.Source{binding.Prop(mid, "x")},
		Modifiers: []binding.Modifier{
			func(v any) any { return v.([]any)[0] },
		},
		Destinations: []binding.Destination{binding.Assign(final, "x")},
	})
	defer bindB.Unbind()

	var after any
	bindA := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "fire"}},
		Sources:  []binding.Source{binding.Prop(src, "x")},
		Destinations: []binding.Destination{
			binding.Assign(mid, "x"),
			binding.Invoke(func(v any) error {
				after, _ = final.Get("x")
				return nil
			}),
		},
	})
	defer bindA.Unbind()

	require.NoError(t, trigger.DispatchEvent("fire"))
	assert.Equal(t, []any{1}, after, "the nested pipeline must have completed before the next destination ran")
}

func TestBinding_UnbindStopsFiring(t *testing.T) {
	trigger := emitter.New()
	dst := store.New(nil, nil)

	runs := 0
	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "fire"}},
		Destinations: []binding.Destination{
			binding.Invoke(func(v any) error {
				runs++
				return nil
			}),
		},
	})
	_ = dst

	require.NoError(t, trigger.DispatchEvent("fire"))
	b.Unbind()
	require.NoError(t, trigger.DispatchEvent("fire"))
	assert.Equal(t, 1, runs)

	assert.NotPanics(t, func() { b.Unbind() }, "unbind is idempotent")
}

func TestBinding_MultipleTriggers(t *testing.T) {
	t1, t2 := emitter.New(), emitter.New()
	runs := 0
	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{
			{Target: t1, Event: "fire"},
			{Target: t2, Event: "other"},
		},
		Destinations: []binding.Destination{
			binding.Invoke(func(v any) error {
				runs++
				return nil
			}),
		},
	})
	defer b.Unbind()

	require.NoError(t, t1.DispatchEvent("fire"))
	require.NoError(t, t2.DispatchEvent("other"))
	assert.Equal(t, 2, runs)
}

func TestBinding_DestinationErrorHaltsRemaining(t *testing.T) {
	trigger := emitter.New()
	boom := errors.New("boom")

	secondRan := false
	b := binding.New(binding.Descriptor{
		Triggers: []binding.Trigger{{Target: trigger, Event: "fire"}},
		Destinations: []binding.Destination{
			binding.Invoke(func(v any) error { return boom }),
			binding.Invoke(func(v any) error {
				secondRan = true
				return nil
			}),
		},
	})
	defer b.Unbind()

	err := trigger.DispatchEvent("fire")
	require.ErrorIs(t, err, boom, "pipeline errors propagate to whatever fired the trigger")
	assert.False(t, secondRan)
}

func TestBinding_HasStableID(t *testing.T) {
	a := binding.New(binding.Descriptor{})
	b := binding.New(binding.Descriptor{})
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
