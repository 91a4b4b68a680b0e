package binding

import (
	"errors"
	"fmt"

	"github.com/Edward-Lombe/besix/internal/emitter"
)

// ErrBadDescriptor is returned by ParseFlat for an element that cannot be
// mapped to a trigger, source, modifier, or destination.
var ErrBadDescriptor = errors.New("binding: unsupported descriptor element")

// FlatDescriptor is the flat wire shape of a binding: four ordered lists,
// with triggers, sources, and destinations logically paired two slots at a
// time.
type FlatDescriptor struct {
	Triggers     []any
	Sources      []any
	Modifiers    []any
	Destinations []any
}

// ParseFlat converts the flat wire shape into a typed Descriptor. Paired
// lists are consumed two elements at a time, stopping when fewer than two
// remain: an odd-length list silently drops its trailing unpaired element.
// That truncation is part of the wire contract and deliberately not
// "fixed" here; the typed Descriptor has no such trap.
//
// Element mapping per pair (first, second):
//   - trigger: (Notifier, event name)
//   - source: (Getter, string key) or (func(...any) any, []any argument
//     list — a non-slice second element is wrapped as a single argument)
//   - destination: (Setter, string key) or (func(any) error, second
//     element ignored)
//
// Modifiers are unpaired; each element must be a Modifier or a
// func(any) any.
func ParseFlat(flat FlatDescriptor) (Descriptor, error) {
	var d Descriptor

	for i := 0; i+1 < len(flat.Triggers); i += 2 {
		target, ok := flat.Triggers[i].(Notifier)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: trigger %d is %T, want Notifier", ErrBadDescriptor, i, flat.Triggers[i])
		}
		d.Triggers = append(d.Triggers, Trigger{Target: target, Event: emitter.Name(flat.Triggers[i+1])})
	}

	for i := 0; i+1 < len(flat.Sources); i += 2 {
		first, second := flat.Sources[i], flat.Sources[i+1]
		switch t := first.(type) {
		case func(args ...any) any:
			args, ok := second.([]any)
			if !ok {
				args = []any{second}
			}
			d.Sources = append(d.Sources, Call(t, args...))
		case Getter:
			key, ok := second.(string)
			if !ok {
				return Descriptor{}, fmt.Errorf("%w: source key %d is %T, want string", ErrBadDescriptor, i+1, second)
			}
			d.Sources = append(d.Sources, Prop(t, key))
		default:
			return Descriptor{}, fmt.Errorf("%w: source %d is %T, want Getter or func", ErrBadDescriptor, i, first)
		}
	}

	for i, m := range flat.Modifiers {
		switch t := m.(type) {
		case Modifier:
			d.Modifiers = append(d.Modifiers, t)
		case func(any) any:
			d.Modifiers = append(d.Modifiers, t)
		default:
			return Descriptor{}, fmt.Errorf("%w: modifier %d is %T, want func(any) any", ErrBadDescriptor, i, m)
		}
	}

	for i := 0; i+1 < len(flat.Destinations); i += 2 {
		first, second := flat.Destinations[i], flat.Destinations[i+1]
		switch t := first.(type) {
		case func(v any) error:
			d.Destinations = append(d.Destinations, Invoke(t))
		case Setter:
			key, ok := second.(string)
			if !ok {
				return Descriptor{}, fmt.Errorf("%w: destination key %d is %T, want string", ErrBadDescriptor, i+1, second)
			}
			d.Destinations = append(d.Destinations, Assign(t, key))
		default:
			return Descriptor{}, fmt.Errorf("%w: destination %d is %T, want Setter or func", ErrBadDescriptor, i, first)
		}
	}

	return d, nil
}
