// Package binding wires trigger events to a read/transform/write pipeline
// ("Tie"). A binding subscribes to every trigger at construction; when any
// trigger fires it samples all sources in order, folds the modifier chain
// over the sampled values, and writes the result to every destination.
package binding

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Edward-Lombe/besix/internal/emitter"
	"github.com/Edward-Lombe/besix/internal/log"
)

// Notifier is the listener surface a trigger target must expose. Emitter,
// Store, and Aggregate all satisfy it.
type Notifier interface {
	AddEventListener(event emitter.Name, fn emitter.Handler) *emitter.Listener
	RemoveEventListener(l *emitter.Listener)
}

// Getter is the readable surface of a property source.
type Getter interface {
	Get(key string) (any, bool)
}

// Setter is the writable surface of an assignment destination.
type Setter interface {
	Set(key string, value any) error
}

// Trigger is an event source/name pair whose firing runs the pipeline.
type Trigger struct {
	Target Notifier
	Event  emitter.Name
}

// Modifier is one link of the transform chain. The first modifier receives
// the []any of sampled source values; each output becomes the next
// modifier's sole input. The contract enforces no shape, only single in,
// single out.
type Modifier func(v any) any

// Descriptor is the four-list binding description: triggers, sources,
// modifiers, destinations, each applied in list order.
type Descriptor struct {
	Triggers     []Trigger
	Sources      []Source
	Modifiers    []Modifier
	Destinations []Destination
}

type triggerSub struct {
	target   Notifier
	listener *emitter.Listener
}

// Binding holds a descriptor and its live trigger subscriptions.
type Binding struct {
	id     string
	desc   Descriptor
	subs   []triggerSub
	tracer trace.Tracer
}

// Option configures a Binding at construction.
type Option func(*Binding)

// WithTracer records a span per pipeline run on the given tracer.
func WithTracer(tr trace.Tracer) Option {
	return func(b *Binding) { b.tracer = tr }
}

// New creates a binding and begins listening immediately: the run handler
// is subscribed to every trigger pair before New returns. The descriptor
// is not validated; empty lists are legal and simply contribute nothing.
func New(d Descriptor, opts ...Option) *Binding {
	b := &Binding{id: uuid.NewString(), desc: d}
	for _, opt := range opts {
		opt(b)
	}
	for _, tr := range d.Triggers {
		l := tr.Target.AddEventListener(tr.Event, b.run)
		b.subs = append(b.subs, triggerSub{target: tr.Target, listener: l})
	}
	log.Debug(log.CatBind, "bound",
		"id", b.id,
		"triggers", len(d.Triggers),
		"sources", len(d.Sources),
		"modifiers", len(d.Modifiers),
		"destinations", len(d.Destinations))
	return b
}

// ID returns the binding's identity, used for log correlation.
func (b *Binding) ID() string { return b.id }

// Unbind removes the run handler from every trigger. Idempotent; the
// binding never fires again afterward.
func (b *Binding) Unbind() {
	for _, sub := range b.subs {
		sub.target.RemoveEventListener(sub.listener)
	}
	b.subs = nil
	log.Debug(log.CatBind, "unbound", "id", b.id)
}

// run is the trigger handler. The trigger's own arguments are discarded:
// sources are re-read fresh on every firing, so the pipeline output depends
// only on current source state and the modifier chain. Source order, then
// modifier order, then destination order make the writes deterministic. A
// destination error halts the remaining destinations and propagates to the
// dispatch that fired the trigger.
func (b *Binding) run(_ ...any) error {
	if b.tracer != nil {
		_, span := b.tracer.Start(context.Background(), "binding.run",
			trace.WithAttributes(attribute.String("binding.id", b.id)))
		defer span.End()
	}

	values := make([]any, len(b.desc.Sources))
	for i, src := range b.desc.Sources {
		values[i] = src.read()
	}

	var v any = values
	for _, m := range b.desc.Modifiers {
		v = m(v)
	}

	for _, dst := range b.desc.Destinations {
		if err := dst.write(v); err != nil {
			log.ErrorErr(log.CatBind, "destination write failed", err, "id", b.id)
			return err
		}
	}
	return nil
}
